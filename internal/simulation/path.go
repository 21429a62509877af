package simulation

import (
	"context"
	"math/rand"
	"time"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

// defaultSeed 未指定种子时使用的固定种子，保证默认模拟可复现
const defaultSeed = 42

// GeneratePricePath 用带趋势的随机游走生成模拟价格序列。
// 日涨跌幅服从正态分布，均值是趋势分量，标准差是日波动率；
// 价格被钳制在基准价的 [0.2, 5] 倍之间。
// ctx 被取消时提前返回已生成的部分。
func GeneratePricePath(ctx context.Context, basePrice decimal.Decimal, params models.SimulationParams, startDate time.Time) []models.PricePoint {
	seed := params.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	rng := rand.New(rand.NewSource(seed))

	volatility := params.Volatility.InexactFloat64() / 100
	trendFactor := 0.0
	if params.Days > 0 {
		strength := params.TrendStrength.InexactFloat64() / 100
		switch params.TrendDirection {
		case models.TrendUp:
			trendFactor = strength / float64(params.Days)
		case models.TrendDown:
			trendFactor = -strength / float64(params.Days)
		}
	}

	base := basePrice.InexactFloat64()
	floor := base * 0.2
	ceiling := base * 5.0

	prices := make([]models.PricePoint, 0, params.Days)
	current := base
	for i := 0; i < params.Days; i++ {
		if ctx.Err() != nil {
			return prices
		}
		dailyChange := rng.NormFloat64()*volatility + trendFactor
		current *= 1 + dailyChange
		if current < floor {
			current = floor
		}
		if current > ceiling {
			current = ceiling
		}

		price := decimal.NewFromFloat(current).Round(4)
		highSpread := absFloat(rng.NormFloat64() * volatility / 2)
		lowSpread := absFloat(rng.NormFloat64() * volatility / 2)

		prices = append(prices, models.PricePoint{
			Date:   startDate.AddDate(0, 0, i).Format("2006-01-02"),
			Price:  price,
			High:   decimal.NewFromFloat(current * (1 + highSpread)).Round(4),
			Low:    decimal.NewFromFloat(current * (1 - lowSpread)).Round(4),
			Volume: 10000 + rng.Int63n(90000),
		})
	}
	return prices
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

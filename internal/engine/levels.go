package engine

import (
	"fmt"
	"sort"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ratioSumTolerance 多重网格资金比例之和允许的误差
var ratioSumTolerance = decimal.NewFromFloat(0.01)

// GenerateLevels 根据网格配置计算全部理论网格线。
// 输出按价格升序排列，对相同输入完全可复现。
func GenerateLevels(cfg *models.GridConfig) ([]models.LevelDescriptor, error) {
	var levels []models.LevelDescriptor

	if cfg.Strategy.MultiGrid {
		// 2.3 一网打尽策略 - 多重网格
		multiLevels, err := calculateMultiGridLevels(cfg)
		if err != nil {
			return nil, err
		}
		levels = multiLevels
	} else {
		// 单一网格策略
		singleLevels, err := calculateSingleGridLevels(cfg)
		if err != nil {
			return nil, err
		}
		levels = singleLevels
	}

	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Price.LessThan(levels[j].Price)
	})
	return levels, nil
}

// calculateSingleGridLevels 计算单一网格等级：
// 从基准价向上按 (1+间距) 递推到最高价，向下按 (1-间距) 递推到最低价。
func calculateSingleGridLevels(cfg *models.GridConfig) ([]models.LevelDescriptor, error) {
	interval := cfg.Strategy.GridIntervalPercent
	if interval.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: 网格间距必须大于0, 当前为 %s", models.ErrInvalidConfiguration, interval)
	}
	gridPercent := interval.Div(hundred)

	var levels []models.LevelDescriptor

	// 向上计算
	currentPrice := cfg.BasePrice
	gridIndex := 0
	for currentPrice.LessThanOrEqual(cfg.MaxPrice) {
		levels = append(levels, models.LevelDescriptor{
			Price:            currentPrice,
			InvestmentAmount: investmentForIndex(cfg, gridIndex),
			GridType:         models.GridSingle,
			GridIndex:        gridIndex,
		})
		currentPrice = currentPrice.Mul(one.Add(gridPercent))
		gridIndex++
	}

	// 向下计算
	currentPrice = cfg.BasePrice.Mul(one.Sub(gridPercent))
	gridIndex = -1
	for currentPrice.GreaterThanOrEqual(cfg.MinPrice) {
		levels = append(levels, models.LevelDescriptor{
			Price:            currentPrice,
			InvestmentAmount: investmentForIndex(cfg, -gridIndex),
			GridType:         models.GridSingle,
			GridIndex:        gridIndex,
		})
		currentPrice = currentPrice.Mul(one.Sub(gridPercent))
		gridIndex--
	}

	return levels, nil
}

// calculateMultiGridLevels 计算多重网格等级 (2.3策略)。
// 小中大三套网格各自独立生成，互不共享等级标识。
func calculateMultiGridLevels(cfg *models.GridConfig) ([]models.LevelDescriptor, error) {
	s := cfg.Strategy

	// 三档资金比例之和必须为100
	ratioSum := s.SmallGridRatio.Add(s.MediumGridRatio).Add(s.LargeGridRatio)
	if ratioSum.Sub(hundred).Abs().GreaterThan(ratioSumTolerance) {
		return nil, fmt.Errorf("%w: 多重网格资金比例之和必须为100, 当前为 %s", models.ErrInvalidConfiguration, ratioSum)
	}

	tiers := []struct {
		gridType models.GridType
		percent  decimal.Decimal
		ratio    decimal.Decimal
	}{
		{models.GridSmall, s.SmallGridPercent, s.SmallGridRatio},
		{models.GridMedium, s.MediumGridPercent, s.MediumGridRatio},
		{models.GridLarge, s.LargeGridPercent, s.LargeGridRatio},
	}

	var levels []models.LevelDescriptor
	for _, tier := range tiers {
		if tier.percent.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: %s 网格间距必须大于0", models.ErrInvalidConfiguration, tier.gridType)
		}
		tierInvestment := cfg.BaseInvestment.Mul(tier.ratio).Div(hundred).Round(2)
		levels = append(levels, calculateGridForType(cfg, tier.gridType, tier.percent.Div(hundred), tierInvestment)...)
	}
	return levels, nil
}

// calculateGridForType 为特定类型网格计算等级，每条等级预先算好对应的卖出价
func calculateGridForType(cfg *models.GridConfig, gridType models.GridType, percent, investment decimal.Decimal) []models.LevelDescriptor {
	var levels []models.LevelDescriptor

	// 向上计算
	currentPrice := cfg.BasePrice
	gridIndex := 0
	for currentPrice.LessThanOrEqual(cfg.MaxPrice) {
		sellPrice := currentPrice.Mul(one.Add(percent))
		levels = append(levels, models.LevelDescriptor{
			Price:            currentPrice,
			InvestmentAmount: investment,
			GridType:         gridType,
			GridIndex:        gridIndex,
			SellPrice:        &sellPrice,
		})
		currentPrice = currentPrice.Mul(one.Add(percent))
		gridIndex++
	}

	// 向下计算
	currentPrice = cfg.BasePrice.Mul(one.Sub(percent))
	gridIndex = -1
	for currentPrice.GreaterThanOrEqual(cfg.MinPrice) {
		sellPrice := currentPrice.Mul(one.Add(percent))
		levels = append(levels, models.LevelDescriptor{
			Price:            currentPrice,
			InvestmentAmount: investment,
			GridType:         gridType,
			GridIndex:        gridIndex,
			SellPrice:        &sellPrice,
		})
		currentPrice = currentPrice.Mul(one.Sub(percent))
		gridIndex--
	}

	return levels
}

// investmentForIndex 计算第 gridIndex 格的投资金额 (支持2.2逐格加码策略)。
// gridIndex 取绝对序号，向上向下两个方向独立加码。
func investmentForIndex(cfg *models.GridConfig, gridIndex int) decimal.Decimal {
	s := cfg.Strategy
	amount := cfg.BaseInvestment

	if s.ProgressiveInvestment && gridIndex >= s.StartIncreaseFromGrid-1 {
		increaseTimes := gridIndex - (s.StartIncreaseFromGrid - 1)
		multiplier := one.Add(s.InvestmentIncreasePercent.Div(hundred))
		for i := 0; i < increaseTimes; i++ {
			amount = amount.Mul(multiplier)
		}
	}

	return amount.Round(2)
}

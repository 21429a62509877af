package engine

import (
	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

// RunPressureTest 压力测试：假设价格从基准价下跌 maxDrawdownPercent，
// 统计跌到压力价位前所有会被触发的网格需要的总买入资金，
// 判断最大投资额能否覆盖。基于理论网格线计算，不依赖运行时状态。
func RunPressureTest(cfg *models.GridConfig, maxDrawdownPercent decimal.Decimal) (*models.PressureResult, error) {
	levels, err := GenerateLevels(cfg)
	if err != nil {
		return nil, err
	}

	stressPrice := cfg.BasePrice.Mul(one.Sub(maxDrawdownPercent.Div(hundred)))

	// 价格一路下跌时，压力价位之上的每一条网格线都会触发买入
	var buyLevels []models.LevelDescriptor
	totalInvestment := decimal.Zero
	for _, level := range levels {
		if level.Price.GreaterThanOrEqual(stressPrice) {
			buyLevels = append(buyLevels, level)
			totalInvestment = totalInvestment.Add(level.InvestmentAmount)
		}
	}

	utilization := decimal.Zero
	if cfg.MaxInvestment.GreaterThan(decimal.Zero) {
		utilization = totalInvestment.Div(cfg.MaxInvestment).Mul(hundred)
	}

	return &models.PressureResult{
		StressPrice:           stressPrice,
		TotalInvestmentNeeded: totalInvestment,
		AvailableFunds:        cfg.MaxInvestment,
		IsFeasible:            totalInvestment.LessThanOrEqual(cfg.MaxInvestment),
		FundUtilizationRate:   utilization,
		BuyLevelsCount:        len(buyLevels),
		BuyLevels:             buyLevels,
	}, nil
}

package engine

import (
	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

var stressPriceFactor = decimal.NewFromFloat(1.1)

// PreviewConfig 预览网格配置：在内存中生成买卖等级、资金分配、
// 风险分析和可视化数据，不落库、不产生任何实体。
func PreviewConfig(cfg *models.GridConfig) *models.PreviewResult {
	interval := cfg.Strategy.GridIntervalPercent.Div(hundred)

	// 买入等级：从基准价向下递推到最低价，序号从0向下递增
	var buyLevels []models.PreviewLevel
	currentPrice := cfg.BasePrice
	levelIndex := 0
	for currentPrice.GreaterThanOrEqual(cfg.MinPrice) {
		sellPrice := currentPrice.Mul(one.Add(interval))
		buyLevels = append(buyLevels, models.PreviewLevel{
			Price:            currentPrice,
			InvestmentAmount: investmentForIndex(cfg, levelIndex),
			LevelIndex:       levelIndex,
			DistanceFromBase: distancePercent(currentPrice, cfg.BasePrice),
			SellPrice:        &sellPrice,
			GridType:         models.GridSingle,
		})
		currentPrice = currentPrice.Mul(one.Sub(interval))
		levelIndex++
	}

	// 卖出等级：基准价以上，不占用投资资金
	var sellLevels []models.PreviewLevel
	currentPrice = cfg.BasePrice.Mul(one.Add(interval))
	levelIndex = 1
	for currentPrice.LessThanOrEqual(cfg.MaxPrice) {
		sellLevels = append(sellLevels, models.PreviewLevel{
			Price:            currentPrice,
			InvestmentAmount: decimal.Zero,
			LevelIndex:       levelIndex,
			DistanceFromBase: distancePercent(currentPrice, cfg.BasePrice),
			GridType:         models.GridSingle,
		})
		currentPrice = currentPrice.Mul(one.Add(interval))
		levelIndex++
	}

	allLevels := make([]models.PreviewLevel, 0, len(buyLevels)+len(sellLevels))
	allLevels = append(allLevels, buyLevels...)
	allLevels = append(allLevels, sellLevels...)

	totalBuyInvestment := decimal.Zero
	for _, level := range buyLevels {
		totalBuyInvestment = totalBuyInvestment.Add(level.InvestmentAmount)
	}
	utilization := 0.0
	if cfg.MaxInvestment.GreaterThan(decimal.Zero) {
		utilization = totalBuyInvestment.Div(cfg.MaxInvestment).Mul(hundred).InexactFloat64()
	}

	distribution := models.InvestmentDistribution{
		TotalBuyInvestment: totalBuyInvestment,
		MaxInvestment:      cfg.MaxInvestment,
		UtilizationRate:    utilization,
		RemainingFunds:     cfg.MaxInvestment.Sub(totalBuyInvestment),
		BuyLevelsCount:     len(buyLevels),
	}

	return &models.PreviewResult{
		Levels:                 allLevels,
		TotalLevels:            len(allLevels),
		BuyLevels:              buyLevels,
		SellLevels:             sellLevels,
		InvestmentDistribution: distribution,
		RiskAnalysis:           analyzeConfigurationRisk(cfg, buyLevels),
		VisualData:             buildVisualData(cfg, allLevels, buyLevels),
	}
}

// analyzeConfigurationRisk 对预览配置做风险分析。
// 压力测试只统计接近最低价的等级（价格不超过最低价的1.1倍）。
func analyzeConfigurationRisk(cfg *models.GridConfig, buyLevels []models.PreviewLevel) models.RiskAnalysis {
	maxDrawdown := 0.0
	if cfg.BasePrice.GreaterThan(decimal.Zero) {
		maxDrawdown = cfg.BasePrice.Sub(cfg.MinPrice).Div(cfg.BasePrice).Mul(hundred).InexactFloat64()
	}

	stressBoundary := cfg.MinPrice.Mul(stressPriceFactor)
	stressInvestment := decimal.Zero
	for _, level := range buyLevels {
		if level.Price.LessThanOrEqual(stressBoundary) {
			stressInvestment = stressInvestment.Add(level.InvestmentAmount)
		}
	}
	stressFundRatio := 0.0
	if cfg.MaxInvestment.GreaterThan(decimal.Zero) {
		stressFundRatio = stressInvestment.Div(cfg.MaxInvestment).Mul(hundred).InexactFloat64()
	}

	profitPotential := decimal.NewFromInt(int64(len(buyLevels))).Mul(cfg.Strategy.GridIntervalPercent).InexactFloat64()

	return models.RiskAnalysis{
		MaxDrawdownPercent:     maxDrawdown,
		StressInvestmentNeeded: stressInvestment.InexactFloat64(),
		StressFundRatio:        stressFundRatio,
		ProfitPotentialPercent: profitPotential,
		RiskLevel:              calculateRiskLevel(maxDrawdown, stressFundRatio),
		Recommendations:        riskRecommendations(cfg, buyLevels, maxDrawdown),
	}
}

func calculateRiskLevel(maxDrawdown, stressFundRatio float64) models.RiskLevel {
	switch {
	case maxDrawdown > 50 || stressFundRatio > 80:
		return models.RiskHigh
	case maxDrawdown > 30 || stressFundRatio > 60:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func riskRecommendations(cfg *models.GridConfig, buyLevels []models.PreviewLevel, maxDrawdown float64) []string {
	var recommendations []string

	if maxDrawdown > 50 {
		recommendations = append(recommendations, "最大下跌幅度超过50%，建议适当提高最低价格或增加资金")
	}

	totalInvestment := decimal.Zero
	for _, level := range buyLevels {
		totalInvestment = totalInvestment.Add(level.InvestmentAmount)
	}
	if totalInvestment.GreaterThan(cfg.MaxInvestment.Mul(decimal.NewFromFloat(0.9))) {
		recommendations = append(recommendations, "资金利用率过高，建议增加最大投资金额")
	}

	if len(buyLevels) > 20 {
		recommendations = append(recommendations, "网格等级过多，建议适当增大网格间距")
	} else if len(buyLevels) < 5 {
		recommendations = append(recommendations, "网格等级过少，建议适当减小网格间距")
	}

	return recommendations
}

// buildVisualData 组装画图数据：价格边界、网格线、投资柱状图和风险区间
func buildVisualData(cfg *models.GridConfig, allLevels, buyLevels []models.PreviewLevel) models.VisualData {
	gridLines := make([]float64, 0, len(allLevels))
	for _, level := range allLevels {
		gridLines = append(gridLines, level.Price.InexactFloat64())
	}

	bars := make([]models.InvestmentBar, 0, len(buyLevels))
	for _, level := range buyLevels {
		bars = append(bars, models.InvestmentBar{
			Price:      level.Price.InexactFloat64(),
			Investment: level.InvestmentAmount.InexactFloat64(),
		})
	}

	return models.VisualData{
		PriceRange: models.PriceRange{
			Min:  cfg.MinPrice.InexactFloat64(),
			Max:  cfg.MaxPrice.InexactFloat64(),
			Base: cfg.BasePrice.InexactFloat64(),
		},
		GridLines:      gridLines,
		InvestmentBars: bars,
		RiskZones:      calculateRiskZones(cfg),
	}
}

// calculateRiskZones 以基准价为锚划分安全/警戒/危险三个价格区间
func calculateRiskZones(cfg *models.GridConfig) []models.RiskZone {
	base := cfg.BasePrice
	return []models.RiskZone{
		{
			Name:        "安全区域",
			MinPrice:    base.Mul(decimal.NewFromFloat(0.95)).InexactFloat64(),
			MaxPrice:    base.Mul(decimal.NewFromFloat(1.05)).InexactFloat64(),
			Color:       "green",
			Description: "价格波动较小，风险可控",
		},
		{
			Name:        "警戒区域",
			MinPrice:    base.Mul(decimal.NewFromFloat(0.8)).InexactFloat64(),
			MaxPrice:    base.Mul(decimal.NewFromFloat(0.95)).InexactFloat64(),
			Color:       "yellow",
			Description: "需要密切关注，准备加仓",
		},
		{
			Name:        "危险区域",
			MinPrice:    cfg.MinPrice.InexactFloat64(),
			MaxPrice:    base.Mul(decimal.NewFromFloat(0.8)).InexactFloat64(),
			Color:       "red",
			Description: "高风险区域，需要充足资金准备",
		},
	}
}

// ValidateConfig 验证网格配置的合理性并打分 (0-100)。
// 硬性错误使配置不可用；警告和建议不影响有效性，只影响评分。
func ValidateConfig(cfg *models.GridConfig) *models.ValidationResult {
	errors := []string{}
	warnings := []string{}
	suggestions := []string{}

	interval := cfg.Strategy.GridIntervalPercent

	// 非正的基准价或负的最低价会让向下递推永远走不到终点
	if cfg.BasePrice.LessThanOrEqual(decimal.Zero) {
		errors = append(errors, "基准价格必须大于0")
	}
	if cfg.MinPrice.LessThan(decimal.Zero) {
		errors = append(errors, "最低价格不能为负数")
	}
	if cfg.MinPrice.GreaterThanOrEqual(cfg.BasePrice) {
		errors = append(errors, "最低价格必须小于基准价格")
	}
	if cfg.MaxPrice.LessThanOrEqual(cfg.BasePrice) {
		errors = append(errors, "最高价格必须大于基准价格")
	}
	if interval.LessThanOrEqual(decimal.Zero) {
		errors = append(errors, "网格间距必须大于0")
	}
	if cfg.Strategy.MultiGrid {
		ratioSum := cfg.Strategy.SmallGridRatio.Add(cfg.Strategy.MediumGridRatio).Add(cfg.Strategy.LargeGridRatio)
		if ratioSum.Sub(hundred).Abs().GreaterThan(ratioSumTolerance) {
			errors = append(errors, "多重网格资金比例之和必须为100")
		}
	}

	if interval.GreaterThan(decimal.Zero) {
		if interval.LessThan(one) {
			warnings = append(warnings, "网格间距过小，可能导致频繁交易和高手续费")
		} else if interval.GreaterThan(decimal.NewFromInt(20)) {
			warnings = append(warnings, "网格间距过大，可能错失较好的交易机会")
		}
	}

	if cfg.BasePrice.GreaterThan(decimal.Zero) {
		priceRangeRatio := cfg.MaxPrice.Sub(cfg.MinPrice).Div(cfg.BasePrice).Mul(hundred)
		if priceRangeRatio.GreaterThan(decimal.NewFromInt(200)) {
			warnings = append(warnings, "价格范围过大，建议缩小范围或增加资金")
		}
	}

	// 基础校验通过后，用预览结果做进一步验证
	if len(errors) == 0 {
		preview := PreviewConfig(cfg)

		utilization := preview.InvestmentDistribution.UtilizationRate
		if utilization > 95 {
			warnings = append(warnings, "资金利用率过高，建议增加最大投资金额")
		} else if utilization < 50 {
			suggestions = append(suggestions, "资金利用率较低，可以考虑增加网格密度或调整投资策略")
		}

		if preview.RiskAnalysis.RiskLevel == models.RiskHigh {
			warnings = append(warnings, "当前配置为高风险，请确保有足够的风险承受能力")
		}

		if len(warnings) == 0 {
			if utilization < 70 {
				suggestions = append(suggestions, "可以考虑适当增加网格密度或调整投资金额分配")
			}
			if preview.RiskAnalysis.ProfitPotentialPercent < 20 {
				suggestions = append(suggestions, "当前配置的盈利潜力较低，建议优化网格间距或价格范围")
			}
		}
	}

	return &models.ValidationResult{
		IsValid:     len(errors) == 0,
		Errors:      errors,
		Warnings:    warnings,
		Suggestions: suggestions,
		Score:       configScore(cfg, errors, warnings),
	}
}

// configScore 配置评分：满分100，每个错误扣20，每个警告扣5，
// 间距和价格范围落在合理区间各加5，最终截断到 [0, 100]。
func configScore(cfg *models.GridConfig, errors, warnings []string) float64 {
	score := 100.0
	score -= float64(len(errors)) * 20
	score -= float64(len(warnings)) * 5

	interval := cfg.Strategy.GridIntervalPercent
	if interval.GreaterThanOrEqual(decimal.NewFromInt(3)) && interval.LessThanOrEqual(decimal.NewFromInt(10)) {
		score += 5
	}

	if cfg.BasePrice.GreaterThan(decimal.Zero) {
		drawdown := cfg.BasePrice.Sub(cfg.MinPrice).Div(cfg.BasePrice).Mul(hundred)
		if drawdown.GreaterThanOrEqual(decimal.NewFromInt(20)) && drawdown.LessThanOrEqual(decimal.NewFromInt(40)) {
			score += 5
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func distancePercent(price, base decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	return price.Sub(base).Div(base).Mul(hundred).InexactFloat64()
}

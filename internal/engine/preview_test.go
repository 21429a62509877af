package engine

import (
	"testing"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPreviewConfigLevels verifies the preview ladder for a 5% grid at base
// 100 in [80, 120]: five buy levels walking down, three sell levels above.
func TestPreviewConfigLevels(t *testing.T) {
	preview := PreviewConfig(singleGridConfig())

	require.Len(t, preview.BuyLevels, 5)
	require.Len(t, preview.SellLevels, 3)
	assert.Equal(t, 8, preview.TotalLevels)

	expectedBuys := []string{"100", "95", "90.25", "85.7375", "81.450625"}
	for i, level := range preview.BuyLevels {
		assert.True(t, level.Price.Equal(decimal.RequireFromString(expectedBuys[i])),
			"buy level %d: expected %s, got %s", i, expectedBuys[i], level.Price)
		assert.Equal(t, i, level.LevelIndex)
		require.NotNil(t, level.SellPrice)
		assert.True(t, level.SellPrice.Equal(level.Price.Mul(decimal.RequireFromString("1.05"))))
	}

	expectedSells := []string{"105", "110.25", "115.7625"}
	for i, level := range preview.SellLevels {
		assert.True(t, level.Price.Equal(decimal.RequireFromString(expectedSells[i])))
		assert.Equal(t, i+1, level.LevelIndex)
		assert.True(t, level.InvestmentAmount.IsZero(), "sell levels must not allocate funds")
	}
}

// TestPreviewConfigInvestmentDistribution verifies the fund split of the
// worked example: 5 levels of 1000 against a 10000 cap.
func TestPreviewConfigInvestmentDistribution(t *testing.T) {
	preview := PreviewConfig(singleGridConfig())

	dist := preview.InvestmentDistribution
	assert.True(t, dist.TotalBuyInvestment.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 5, dist.BuyLevelsCount)
	assert.InDelta(t, 50.0, dist.UtilizationRate, 1e-9)
	assert.True(t, dist.RemainingFunds.Equal(decimal.NewFromInt(5000)))
}

// TestPreviewConfigRiskAnalysis verifies drawdown, stress funding and the
// derived risk level for the worked example.
func TestPreviewConfigRiskAnalysis(t *testing.T) {
	preview := PreviewConfig(singleGridConfig())

	risk := preview.RiskAnalysis
	assert.InDelta(t, 20.0, risk.MaxDrawdownPercent, 1e-9)
	// Stress zone is min*1.1 = 88: levels 85.7375 and 81.450625 fall inside.
	assert.InDelta(t, 2000.0, risk.StressInvestmentNeeded, 1e-9)
	assert.InDelta(t, 20.0, risk.StressFundRatio, 1e-9)
	assert.InDelta(t, 25.0, risk.ProfitPotentialPercent, 1e-9)
	assert.Equal(t, models.RiskLow, risk.RiskLevel)
}

// TestPreviewConfigRiskLevelThresholds verifies the drawdown cutoffs for the
// qualitative risk level.
func TestPreviewConfigRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, models.RiskLow, calculateRiskLevel(20, 10))
	assert.Equal(t, models.RiskMedium, calculateRiskLevel(35, 10))
	assert.Equal(t, models.RiskMedium, calculateRiskLevel(20, 65))
	assert.Equal(t, models.RiskHigh, calculateRiskLevel(55, 10))
	assert.Equal(t, models.RiskHigh, calculateRiskLevel(20, 85))
}

// TestPreviewConfigRiskZones verifies the three fixed zones around the base price.
func TestPreviewConfigRiskZones(t *testing.T) {
	preview := PreviewConfig(singleGridConfig())

	zones := preview.VisualData.RiskZones
	require.Len(t, zones, 3)
	assert.Equal(t, "green", zones[0].Color)
	assert.InDelta(t, 95.0, zones[0].MinPrice, 1e-9)
	assert.InDelta(t, 105.0, zones[0].MaxPrice, 1e-9)
	assert.Equal(t, "yellow", zones[1].Color)
	assert.Equal(t, "red", zones[2].Color)
	assert.InDelta(t, 80.0, zones[2].MinPrice, 1e-9)
}

// TestValidateConfigValid verifies that a sane configuration passes with a
// perfect score: interval and drawdown both land in the bonus ranges.
func TestValidateConfigValid(t *testing.T) {
	result := ValidateConfig(singleGridConfig())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 100.0, result.Score)
}

// TestValidateConfigPriceErrors verifies the hard price-ordering errors.
func TestValidateConfigPriceErrors(t *testing.T) {
	cfg := singleGridConfig()
	cfg.MinPrice = decimal.NewFromInt(120)
	cfg.MaxPrice = decimal.NewFromInt(90)

	result := ValidateConfig(cfg)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "最低价格必须小于基准价格")
	assert.Contains(t, result.Errors[1], "最高价格必须大于基准价格")
	// Two errors cost 40 points, the 5-point interval bonus still applies.
	assert.Equal(t, 65.0, result.Score)
}

// TestValidateConfigIntervalWarnings verifies the small/large interval warnings.
func TestValidateConfigIntervalWarnings(t *testing.T) {
	small := singleGridConfig()
	small.Strategy.GridIntervalPercent = decimal.RequireFromString("0.5")
	result := ValidateConfig(small)
	assert.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "网格间距过小")

	large := singleGridConfig()
	large.Strategy.GridIntervalPercent = decimal.NewFromInt(25)
	result = ValidateConfig(large)
	assert.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "网格间距过大")
}

// TestValidateConfigZeroIntervalIsError verifies that a zero interval is a
// hard error, not just a warning.
func TestValidateConfigZeroIntervalIsError(t *testing.T) {
	cfg := singleGridConfig()
	cfg.Strategy.GridIntervalPercent = decimal.Zero

	result := ValidateConfig(cfg)
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "网格间距必须大于0")
}

// TestValidateConfigWideRangeWarning verifies the price range width warning.
func TestValidateConfigWideRangeWarning(t *testing.T) {
	cfg := singleGridConfig()
	cfg.MinPrice = decimal.NewFromInt(10)
	cfg.MaxPrice = decimal.NewFromInt(260)

	result := ValidateConfig(cfg)
	assert.True(t, result.IsValid)

	found := false
	for _, warning := range result.Warnings {
		if warning == "价格范围过大，建议缩小范围或增加资金" {
			found = true
		}
	}
	assert.True(t, found, "expected the wide price range warning, got %v", result.Warnings)
}

// TestValidateConfigRejectsDegeneratePrices verifies that a non-positive base
// price or a negative min price is a hard error: the downward level walk could
// never terminate on such a configuration.
func TestValidateConfigRejectsDegeneratePrices(t *testing.T) {
	cfg := singleGridConfig()
	cfg.BasePrice = decimal.Zero
	cfg.MinPrice = decimal.NewFromInt(-10)

	result := ValidateConfig(cfg)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "基准价格必须大于0")
	assert.Contains(t, result.Errors, "最低价格不能为负数")
}

// TestValidateConfigMultiGridRatioSum verifies that multi-grid fund ratios not
// summing to 100 fail validation outright, not only at level generation.
func TestValidateConfigMultiGridRatioSum(t *testing.T) {
	cfg := multiGridConfig()
	require.True(t, ValidateConfig(cfg).IsValid)

	cfg.Strategy.SmallGridRatio = decimal.NewFromInt(20)
	result := ValidateConfig(cfg)
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "多重网格资金比例之和必须为100")
}

// TestValidateConfigScoreFloor verifies that the score never drops below zero.
func TestValidateConfigScoreFloor(t *testing.T) {
	cfg := singleGridConfig()
	cfg.MinPrice = decimal.NewFromInt(200)
	cfg.MaxPrice = decimal.NewFromInt(50)
	cfg.Strategy.GridIntervalPercent = decimal.NewFromInt(-1)

	result := ValidateConfig(cfg)
	assert.False(t, result.IsValid)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
}

package simulation

import (
	"context"
	"testing"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replayConfig() *models.GridConfig {
	return &models.GridConfig{
		Strategy: models.StrategyConfig{
			Version:             models.VersionBasic,
			GridIntervalPercent: decimal.NewFromInt(5),
		},
		BasePrice:      decimal.NewFromInt(100),
		MinPrice:       decimal.NewFromInt(80),
		MaxPrice:       decimal.NewFromInt(120),
		BaseInvestment: decimal.NewFromInt(1000),
		MaxInvestment:  decimal.NewFromInt(10000),
	}
}

func pricePoints(values ...string) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(values))
	for i, v := range values {
		price := decimal.RequireFromString(v)
		points = append(points, models.PricePoint{
			Date:  "2026-08-0" + string(rune('1'+i)),
			Price: price,
			High:  price,
			Low:   price,
		})
	}
	return points
}

// TestReplayFlatPathNoTrades verifies that a path flat at the base price
// produces zero trades and leaves the account untouched.
func TestReplayFlatPathNoTrades(t *testing.T) {
	prices := pricePoints("100", "100", "100")
	results := ReplayStrategy(context.Background(), replayConfig(), prices)

	assert.Empty(t, results.Trades)
	assert.Equal(t, 0, results.TotalTrades)
	assert.True(t, results.FinalPosition.IsZero())
	assert.True(t, results.FinalCash.Equal(decimal.NewFromInt(10000)))
	assert.True(t, results.RealizedProfit.IsZero())
	assert.True(t, results.TotalReturn.IsZero())
}

// TestReplayBuyThenSellCycle verifies one full cycle: the price dips below a
// buy level, recovers past the derived sell level and the profit is exact.
func TestReplayBuyThenSellCycle(t *testing.T) {
	// Day 1 at 95 drops below the 100 level only (the 95 line needs a price
	// strictly below it). Day 2 at 101 clears the 95*1.05=99.75 sell line.
	prices := pricePoints("95", "101")
	results := ReplayStrategy(context.Background(), replayConfig(), prices)

	assert.Equal(t, 1, results.BuyTrades)
	assert.Equal(t, 1, results.SellTrades)
	assert.True(t, results.FinalPosition.IsZero())

	// The buy invests 1000 at 95; the sell returns quantity*101.
	quantity := decimal.NewFromInt(1000).Div(decimal.NewFromInt(95))
	expectedTotal := decimal.NewFromInt(101).Mul(quantity).Sub(decimal.NewFromInt(95).Mul(quantity))
	assert.True(t, results.RealizedProfit.Equal(expectedTotal),
		"expected realized profit %s, got %s", expectedTotal, results.RealizedProfit)
	assert.True(t, results.TotalValue.Equal(results.FinalCash))
	assert.True(t, results.TotalReturn.Equal(results.FinalCash.Sub(results.InitialCapital)))
	// The return matches the realized profit up to the division precision of
	// the position size.
	assert.True(t, results.TotalReturn.Sub(results.RealizedProfit).Abs().LessThan(decimal.RequireFromString("0.0001")))
}

// TestReplayRespectsCash verifies that buys stop when cash runs out.
func TestReplayRespectsCash(t *testing.T) {
	cfg := replayConfig()
	cfg.MaxInvestment = decimal.NewFromInt(1500)

	// At 81 every buy level triggers, but the cash only covers one.
	prices := pricePoints("81")
	results := ReplayStrategy(context.Background(), cfg, prices)

	assert.Equal(t, 1, results.BuyTrades)
	assert.True(t, results.FinalCash.Equal(decimal.NewFromInt(500)))
}

// TestReplayLevelRecycling verifies that a sold level is re-armed and can
// trade again on the next oscillation.
func TestReplayLevelRecycling(t *testing.T) {
	// 95 buys the 100 level, 101 sells and re-arms a 95 line; 94 buys both
	// the re-armed line and the original 95 level, 101 sells them again.
	prices := pricePoints("95", "101", "94", "101")
	results := ReplayStrategy(context.Background(), replayConfig(), prices)

	assert.Equal(t, 3, results.BuyTrades)
	assert.Equal(t, 3, results.SellTrades)
	assert.True(t, results.FinalPosition.IsZero())
	assert.True(t, results.RealizedProfit.GreaterThan(decimal.Zero))
}

// TestReplayUnrealizedPnl verifies the open position valuation when the path
// ends below the buy levels.
func TestReplayUnrealizedPnl(t *testing.T) {
	prices := pricePoints("95", "90")
	results := ReplayStrategy(context.Background(), replayConfig(), prices)

	require.NotEmpty(t, results.Trades)
	assert.True(t, results.FinalPosition.GreaterThan(decimal.Zero))

	invested := results.InitialCapital.Sub(results.FinalCash)
	expectedUnrealized := results.PositionValue.Sub(invested)
	assert.True(t, results.UnrealizedPnl.Equal(expectedUnrealized))
	assert.True(t, results.UnrealizedPnl.LessThan(decimal.Zero),
		"ending below the entry prices must show a paper loss")
}

// TestReplayStopsOnCancel verifies that a cancelled context stops the replay
// before any trade executes.
func TestReplayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prices := pricePoints("95", "101")
	results := ReplayStrategy(ctx, replayConfig(), prices)

	assert.Empty(t, results.Trades)
	assert.True(t, results.FinalPosition.IsZero())
	assert.True(t, results.FinalCash.Equal(decimal.NewFromInt(10000)))
}

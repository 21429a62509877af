package engine

import (
	"testing"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keepProfitConfig(ratio int64) *models.GridConfig {
	cfg := singleGridConfig()
	cfg.Strategy.Version = models.VersionKeepProfit
	cfg.Strategy.KeepProfit = true
	cfg.Strategy.ProfitKeepRatio = decimal.NewFromInt(ratio)
	return cfg
}

// runCycle triggers one level at the given price, fills the buy and then fills
// the derived sell at sellPrice. Returns the sell fill result.
func runCycle(t *testing.T, state *models.PlanState, buyPrice, sellPrice decimal.Decimal) *models.FillResult {
	t.Helper()

	orders := TriggerLevels(state, buyPrice)
	require.NotEmpty(t, orders)
	buyOrder := orders[0]

	buyResult, err := FillOrder(state, buyOrder.ID, buyPrice, buyOrder.Quantity)
	require.NoError(t, err)
	require.NotNil(t, buyResult.SellOrder)

	sellResult, err := FillOrder(state, buyResult.SellOrder.ID, sellPrice, buyResult.SellOrder.Quantity)
	require.NoError(t, err)
	return sellResult
}

// TestProfitKeepingFullRatio verifies that with a 100% keep ratio the whole
// profit is converted into shares at the sell fill price.
func TestProfitKeepingFullRatio(t *testing.T) {
	state := newTestState(t, keepProfitConfig(100))

	buyPrice := decimal.NewFromInt(95)
	sellPrice := decimal.RequireFromString("99.75")
	result := runCycle(t, state, buyPrice, sellPrice)

	pair := result.TradePair
	require.NotNil(t, pair)
	require.True(t, pair.ProfitAmount.GreaterThan(decimal.Zero))

	expectedShares := pair.ProfitAmount.Div(sellPrice)
	assert.True(t, result.KeptProfitShares.Equal(expectedShares),
		"expected %s kept shares, got %s", expectedShares, result.KeptProfitShares)
	assert.True(t, result.KeptProfitValue.Equal(pair.ProfitAmount))

	assert.True(t, pair.KeptProfitShares.Equal(expectedShares))
	assert.True(t, state.Plan.KeptProfitShares.Equal(expectedShares))
}

// TestProfitKeepingHalfRatio verifies the 50% keep ratio arithmetic.
func TestProfitKeepingHalfRatio(t *testing.T) {
	state := newTestState(t, keepProfitConfig(50))

	sellPrice := decimal.RequireFromString("99.75")
	result := runCycle(t, state, decimal.NewFromInt(95), sellPrice)

	pair := result.TradePair
	require.NotNil(t, pair)

	expectedValue := pair.ProfitAmount.Mul(decimal.RequireFromString("0.5"))
	expectedShares := expectedValue.Div(sellPrice)
	assert.True(t, result.KeptProfitValue.Equal(expectedValue))
	assert.True(t, result.KeptProfitShares.Equal(expectedShares))
}

// TestNoProfitKeepingOnLoss verifies that a losing pair never retains shares.
func TestNoProfitKeepingOnLoss(t *testing.T) {
	state := newTestState(t, keepProfitConfig(100))

	// Sell below the buy price: the pair closes at a loss.
	result := runCycle(t, state, decimal.NewFromInt(95), decimal.NewFromInt(90))

	pair := result.TradePair
	require.NotNil(t, pair)
	assert.True(t, pair.ProfitAmount.LessThan(decimal.Zero))

	assert.True(t, result.KeptProfitShares.IsZero())
	assert.True(t, result.KeptProfitValue.IsZero())
	assert.True(t, state.Plan.KeptProfitShares.IsZero())
}

// TestNoProfitKeepingWhenDisabled verifies that the 1.0 strategy keeps nothing
// even on profitable pairs.
func TestNoProfitKeepingWhenDisabled(t *testing.T) {
	state := newTestState(t, singleGridConfig())

	result := runCycle(t, state, decimal.NewFromInt(95), decimal.RequireFromString("99.75"))

	require.NotNil(t, result.TradePair)
	assert.True(t, result.TradePair.ProfitAmount.GreaterThan(decimal.Zero))
	assert.True(t, result.KeptProfitShares.IsZero())
	assert.True(t, state.Plan.KeptProfitShares.IsZero())
}

// TestFindOpenPairRejectsDoubleClose verifies that a sell order referenced by
// an already completed pair cannot close it again.
func TestFindOpenPairRejectsDoubleClose(t *testing.T) {
	state := newTestState(t, singleGridConfig())

	result := runCycle(t, state, decimal.NewFromInt(95), decimal.RequireFromString("99.75"))
	require.NotNil(t, result.TradePair)
	require.True(t, result.TradePair.IsCompleted)

	_, err := findOpenPair(state, result.Order)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTradePairAlreadyComplete)
}

// TestSellWithoutPairIsNoop verifies that a sell fill with no matching pair
// still records the trade but closes nothing.
func TestSellWithoutPairIsNoop(t *testing.T) {
	state := newTestState(t, singleGridConfig())

	// Hand-craft a pending sell order that never had a buy side.
	order := &models.Order{
		ID:       models.NewID("order"),
		PlanID:   state.Plan.ID,
		LevelID:  "level-gone",
		Price:    decimal.NewFromInt(100),
		Quantity: decimal.NewFromInt(1),
		Amount:   decimal.NewFromInt(100),
		Side:     models.Sell,
		Status:   models.OrderPending,
	}
	state.Orders[order.ID] = order

	result, err := FillOrder(state, order.ID, decimal.NewFromInt(100), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Nil(t, result.TradePair)
	assert.Equal(t, models.OrderFilled, result.Order.Status)
	assert.Equal(t, 1, state.Plan.SellTrades)
	assert.True(t, state.Plan.RealizedProfit.IsZero())
}

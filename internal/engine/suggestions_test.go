package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetTradingSuggestionsBuyBand verifies that only untriggered levels
// within the 2% band around the current price are suggested.
func TestGetTradingSuggestionsBuyBand(t *testing.T) {
	state := newTestState(t, singleGridConfig())

	// Levels: 81.450625, 85.7375, 90.25, 95, 100, ... With the price at 95
	// only the 95 level falls inside [93.1, 96.9].
	suggestions := GetTradingSuggestions(state, decimal.NewFromInt(95))

	require.Len(t, suggestions.BuySuggestions, 1)
	buy := suggestions.BuySuggestions[0]
	assert.True(t, buy.TriggerPrice.Equal(decimal.NewFromInt(95)))
	assert.True(t, buy.DistancePercent.IsZero())
	assert.True(t, buy.InvestmentAmount.Equal(decimal.NewFromInt(1000)))
}

// TestGetTradingSuggestionsSkipsTriggered verifies that already triggered
// levels are not re-suggested.
func TestGetTradingSuggestionsSkipsTriggered(t *testing.T) {
	state := newTestState(t, singleGridConfig())
	TriggerLevels(state, decimal.NewFromInt(95))

	suggestions := GetTradingSuggestions(state, decimal.NewFromInt(95))
	assert.Empty(t, suggestions.BuySuggestions)
}

// TestGetTradingSuggestionsPendingSells verifies the sell side: pending sell
// orders appear with their remaining profit at the current price.
func TestGetTradingSuggestionsPendingSells(t *testing.T) {
	state := newTestState(t, singleGridConfig())
	orders := TriggerLevels(state, decimal.NewFromInt(95))
	buyResult, err := FillOrder(state, orders[0].ID, decimal.NewFromInt(95), orders[0].Quantity)
	require.NoError(t, err)
	sellOrder := buyResult.SellOrder

	currentPrice := decimal.NewFromInt(97)
	suggestions := GetTradingSuggestions(state, currentPrice)

	require.Len(t, suggestions.SellSuggestions, 1)
	sell := suggestions.SellSuggestions[0]
	assert.Equal(t, sellOrder.ID, sell.Order.ID)
	assert.True(t, sell.TriggerPrice.Equal(sellOrder.Price))
	expectedProfit := sellOrder.Amount.Sub(sellOrder.Quantity.Mul(currentPrice))
	assert.True(t, sell.PotentialProfit.Equal(expectedProfit))
}

// TestGetTradingSuggestionsAlerts verifies the low price alert near the plan's
// minimum price.
func TestGetTradingSuggestionsAlerts(t *testing.T) {
	state := newTestState(t, singleGridConfig())

	// 85 < 80 * 1.1 = 88 triggers the approaching_min_price alert.
	suggestions := GetTradingSuggestions(state, decimal.NewFromInt(85))

	found := false
	for _, alert := range suggestions.Alerts {
		if alert.Type == "approaching_min_price" {
			found = true
		}
	}
	assert.True(t, found, "expected an approaching_min_price alert")
}

// TestGetTradingSuggestionsUtilizationAlert verifies the high fund utilization alert.
func TestGetTradingSuggestionsUtilizationAlert(t *testing.T) {
	cfg := singleGridConfig()
	cfg.MaxInvestment = decimal.NewFromInt(1100)
	state := newTestState(t, cfg)

	orders := TriggerLevels(state, decimal.NewFromInt(95))
	_, err := FillOrder(state, orders[0].ID, decimal.NewFromInt(95), orders[0].Quantity)
	require.NoError(t, err)

	// 1000 of 1100 invested is > 80% utilization.
	suggestions := GetTradingSuggestions(state, decimal.NewFromInt(95))

	found := false
	for _, alert := range suggestions.Alerts {
		if alert.Type == "high_utilization" {
			found = true
		}
	}
	assert.True(t, found, "expected a high_utilization alert")
}

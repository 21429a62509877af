package engine

import (
	"fmt"
	"sort"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

var (
	buyBandLower = decimal.NewFromFloat(0.98)
	buyBandUpper = decimal.NewFromFloat(1.02)
)

// GetTradingSuggestions 给出当前价位下的操作建议：
// 现价上下2%缓冲带内的未触发买入等级、全部挂单中的卖单，
// 以及资金使用率和价格接近下界的风险提醒。
func GetTradingSuggestions(state *models.PlanState, currentPrice decimal.Decimal) *models.TradingSuggestions {
	suggestions := &models.TradingSuggestions{
		BuySuggestions:  []models.BuySuggestion{},
		SellSuggestions: []models.SellSuggestion{},
		Alerts:          []models.Alert{},
	}

	lower := currentPrice.Mul(buyBandLower)
	upper := currentPrice.Mul(buyBandUpper)
	for _, level := range state.Levels {
		if level.IsTriggered {
			continue
		}
		if level.Price.LessThan(lower) || level.Price.GreaterThan(upper) {
			continue
		}
		distance := decimal.Zero
		if !currentPrice.IsZero() {
			distance = currentPrice.Sub(level.Price).Div(currentPrice).Mul(hundred).Abs()
		}
		suggestions.BuySuggestions = append(suggestions.BuySuggestions, models.BuySuggestion{
			Level:            level,
			TriggerPrice:     level.Price,
			InvestmentAmount: level.InvestmentAmount,
			DistancePercent:  distance,
		})
	}
	sort.SliceStable(suggestions.BuySuggestions, func(i, j int) bool {
		return suggestions.BuySuggestions[i].TriggerPrice.LessThan(suggestions.BuySuggestions[j].TriggerPrice)
	})

	var pendingSells []*models.Order
	for _, order := range state.Orders {
		if order.Side == models.Sell && order.Status == models.OrderPending {
			pendingSells = append(pendingSells, order)
		}
	}
	sort.SliceStable(pendingSells, func(i, j int) bool {
		return pendingSells[i].Price.LessThan(pendingSells[j].Price)
	})
	for _, order := range pendingSells {
		distance := decimal.Zero
		if !currentPrice.IsZero() {
			distance = order.Price.Sub(currentPrice).Div(currentPrice).Mul(hundred)
		}
		suggestions.SellSuggestions = append(suggestions.SellSuggestions, models.SellSuggestion{
			Order:           order,
			TriggerPrice:    order.Price,
			PotentialProfit: order.Amount.Sub(order.Quantity.Mul(currentPrice)),
			DistancePercent: distance,
		})
	}

	perf := ComputePerformance(state, currentPrice)
	if perf.FundUtilization.GreaterThan(decimal.NewFromInt(80)) {
		suggestions.Alerts = append(suggestions.Alerts, models.Alert{
			Type:    "high_utilization",
			Message: fmt.Sprintf("资金使用率达到 %s%%，请注意风险控制", perf.FundUtilization.Round(1)),
		})
	}
	if currentPrice.LessThan(state.Plan.MinPrice.Mul(stressPriceFactor)) {
		suggestions.Alerts = append(suggestions.Alerts, models.Alert{
			Type:    "approaching_min_price",
			Message: fmt.Sprintf("价格接近最低设定价格 %s，请关注风险", state.Plan.MinPrice),
		})
	}

	return suggestions
}

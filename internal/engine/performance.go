package engine

import (
	"time"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

// ComputePerformance 按当前价格计算计划的性能指标。
// 已实现利润只来自已完成的交易对；未实现盈亏来自没有完成配对的
// 已成交买单形成的持仓。纯函数，不修改状态。
func ComputePerformance(state *models.PlanState, currentPrice decimal.Decimal) *models.PerformanceResult {
	plan := state.Plan

	realized := decimal.Zero
	completedPairs := 0
	closedBuyOrders := make(map[string]bool)
	for _, pair := range state.Pairs {
		if pair.IsCompleted {
			realized = realized.Add(pair.ProfitAmount)
			completedPairs++
			closedBuyOrders[pair.BuyOrderID] = true
		}
	}

	// 未平仓持仓 = 已成交但未配对完成的买单
	position := decimal.Zero
	cost := decimal.Zero
	for _, order := range state.Orders {
		if order.Side != models.Buy || order.Status != models.OrderFilled {
			continue
		}
		if closedBuyOrders[order.ID] {
			continue
		}
		position = position.Add(order.FilledQuantity)
		cost = cost.Add(order.FilledAmount)
	}

	currentValue := position.Mul(currentPrice)
	unrealized := currentValue.Sub(cost)
	keptValue := plan.KeptProfitShares.Mul(currentPrice)

	utilization := decimal.Zero
	if plan.MaxInvestment.GreaterThan(decimal.Zero) {
		utilization = plan.TotalInvested.Div(plan.MaxInvestment).Mul(hundred)
	}

	return &models.PerformanceResult{
		RealizedProfit:  realized,
		UnrealizedPnl:   unrealized,
		TotalProfit:     realized.Add(unrealized),
		TotalPosition:   position,
		TotalCost:       cost,
		CurrentValue:    currentValue,
		KeptShares:      plan.KeptProfitShares,
		KeptSharesValue: keptValue,
		CompletedTrades: completedPairs,
		TotalInvested:   plan.TotalInvested,
		AvailableFunds:  plan.MaxInvestment.Sub(plan.TotalInvested),
		FundUtilization: utilization,
	}
}

// BuildSnapshot 把某日的性能结果固化为快照，(plan, date) 为唯一键
func BuildSnapshot(state *models.PlanState, currentPrice decimal.Decimal, date time.Time) *models.PerformanceSnapshot {
	perf := ComputePerformance(state, currentPrice)
	return &models.PerformanceSnapshot{
		PlanID:             state.Plan.ID,
		SnapshotDate:       date.Format("2006-01-02"),
		TotalProfit:        perf.TotalProfit,
		RealizedProfit:     perf.RealizedProfit,
		UnrealizedProfit:   perf.UnrealizedPnl,
		TotalPosition:      perf.TotalPosition,
		KeptProfitPosition: perf.KeptShares,
		TotalTrades:        state.Plan.TotalTrades,
		CompletedPairs:     perf.CompletedTrades,
		InvestedAmount:     perf.TotalInvested,
		AvailableAmount:    perf.AvailableFunds,
		CurrentPrice:       currentPrice,
		CreatedAt:          time.Now(),
	}
}

package engine

import (
	"fmt"
	"sort"
	"time"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

// findOpenPair 为即将成交的卖单定位可关闭的交易对。
// 匹配规则：买单与卖单属于同一等级、尚未挂上卖单、尚未完成。
// 只查找不修改，供 FillOrder 做前置校验。
func findOpenPair(state *models.PlanState, sellOrder *models.Order) (*models.TradePair, error) {
	var candidates []*models.TradePair
	for _, pair := range state.Pairs {
		buyOrder, ok := state.Orders[pair.BuyOrderID]
		if !ok {
			continue
		}
		if buyOrder.LevelID != sellOrder.LevelID {
			continue
		}
		if pair.IsCompleted {
			if pair.SellOrderID == sellOrder.ID {
				return nil, fmt.Errorf("%w: 交易对 %s", models.ErrTradePairAlreadyComplete, pair.ID)
			}
			continue
		}
		if pair.SellOrderID != "" {
			continue
		}
		candidates = append(candidates, pair)
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	// 同一等级存在多个未关闭交易对时取最早创建的
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates[0], nil
}

// closePair 用已成交的卖单关闭交易对，结算利润并回写计划统计。
// 利润 = 卖出成交额 - 买入成交额，精确计算不做舍入。
func closePair(state *models.PlanState, pair *models.TradePair, sellOrder *models.Order, now time.Time) {
	buyOrder := state.Orders[pair.BuyOrderID]

	profit := sellOrder.FilledAmount.Sub(buyOrder.FilledAmount)
	pair.SellOrderID = sellOrder.ID
	pair.ProfitAmount = profit
	if !buyOrder.FilledAmount.IsZero() {
		pair.ProfitRate = profit.Div(buyOrder.FilledAmount).Mul(hundred)
	}
	pair.IsCompleted = true
	pair.CompletedAt = &now

	plan := state.Plan
	plan.TotalProfit = plan.TotalProfit.Add(profit)
	plan.RealizedProfit = plan.RealizedProfit.Add(profit)

	if level := findLevel(state, sellOrder.LevelID); level != nil {
		level.IsCompleted = true
	}
}

// applyProfitKeeping 留利润策略 (2.1)：盈利的一部分不折现，
// 折算成标的份额留在仓位里。亏损的交易对不保留任何份额。
// 返回本次保留的份额数量和按卖出价折算的价值。
func applyProfitKeeping(state *models.PlanState, sellOrder *models.Order, pair *models.TradePair) (decimal.Decimal, decimal.Decimal) {
	strategy := state.Plan.Strategy
	if !strategy.KeepProfit || strategy.ProfitKeepRatio.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	if pair.ProfitAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	if sellOrder.FilledPrice.IsZero() {
		return decimal.Zero, decimal.Zero
	}

	// 先把比例归一再相乘：乘法是精确的，除法会在精度位截断，
	// 100% 比例下保留价值必须恰好等于利润
	keptValue := pair.ProfitAmount.Mul(strategy.ProfitKeepRatio.Div(hundred))
	keptShares := keptValue.Div(sellOrder.FilledPrice)

	sellOrder.ProfitKeptQuantity = sellOrder.ProfitKeptQuantity.Add(keptShares)
	pair.KeptProfitShares = pair.KeptProfitShares.Add(keptShares)
	state.Plan.KeptProfitShares = state.Plan.KeptProfitShares.Add(keptShares)

	return keptShares, keptValue
}

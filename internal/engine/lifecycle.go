package engine

import (
	"fmt"
	"sort"
	"time"

	"grid-trading-engine/internal/logger"
	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

// TriggerLevels 触发网格等级：选出所有未触发且价格不高于现价的等级，
// 按价格升序逐个生成待成交的买入订单并标记等级已触发。
// 重复以相同价格调用不会产生重复订单（已触发的等级被跳过）。
func TriggerLevels(state *models.PlanState, currentPrice decimal.Decimal) []*models.Order {
	var toTrigger []*models.Level
	for _, level := range state.Levels {
		if !level.IsTriggered && level.Price.LessThanOrEqual(currentPrice) {
			toTrigger = append(toTrigger, level)
		}
	}
	// 处理顺序按价格升序，保证结果可复现
	sort.SliceStable(toTrigger, func(i, j int) bool {
		return toTrigger[i].Price.LessThan(toTrigger[j].Price)
	})

	triggered := make([]*models.Order, 0, len(toTrigger))
	for _, level := range toTrigger {
		order := createBuyOrder(state, level, currentPrice)
		level.IsTriggered = true
		triggered = append(triggered, order)
		logger.S().Infof("网格等级触发: plan=%s level=%s 档位价=%s 现价=%s",
			state.Plan.ID, level.ID, level.Price, currentPrice)
	}
	return triggered
}

// createBuyOrder 按等级投资额和现价生成一笔待成交买单
func createBuyOrder(state *models.PlanState, level *models.Level, currentPrice decimal.Decimal) *models.Order {
	order := &models.Order{
		ID:        models.NewID("order"),
		PlanID:    state.Plan.ID,
		LevelID:   level.ID,
		Price:     currentPrice,
		Quantity:  level.InvestmentAmount.Div(currentPrice),
		Amount:    level.InvestmentAmount,
		Side:      models.Buy,
		Status:    models.OrderPending,
		CreatedAt: time.Now(),
	}
	state.Orders[order.ID] = order
	return order
}

// FillOrder 处理一笔订单成交。买单成交会派生对应的卖单并开启交易对；
// 卖单成交会关闭交易对、累计利润并按策略保留利润份额。
// 所有前置校验在任何状态变更之前完成，出错时状态保持原样。
func FillOrder(state *models.PlanState, orderID string, filledPrice, filledQuantity decimal.Decimal) (*models.FillResult, error) {
	order, ok := state.Orders[orderID]
	if !ok {
		return nil, fmt.Errorf("订单 %s 不存在", orderID)
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: 订单 %s 状态为 %s", models.ErrOrderNotPending, order.ID, order.Status)
	}

	// 先校验后执行：买单成交需要能算出卖出价，卖单成交需要有可关闭的交易对
	var sellPrice decimal.Decimal
	var openPair *models.TradePair
	if order.Side == models.Buy {
		var err error
		sellPrice, err = deriveSellPrice(state, order, filledPrice)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		openPair, err = findOpenPair(state, order)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	order.FilledPrice = filledPrice
	order.FilledQuantity = filledQuantity
	order.FilledAmount = filledPrice.Mul(filledQuantity)
	order.Status = models.OrderFilled
	order.FilledAt = &now

	// 更新计划统计
	plan := state.Plan
	plan.TotalTrades++
	if order.Side == models.Buy {
		plan.BuyTrades++
		plan.TotalInvested = plan.TotalInvested.Add(order.FilledAmount)
		plan.AvailableFunds = plan.MaxInvestment.Sub(plan.TotalInvested)
	} else {
		plan.SellTrades++
	}

	result := &models.FillResult{Order: order}

	if order.Side == models.Buy {
		sellOrder := createSellOrder(state, order, sellPrice)
		result.SellOrder = sellOrder

		pair := &models.TradePair{
			ID:         models.NewID("pair"),
			PlanID:     plan.ID,
			BuyOrderID: order.ID,
			CreatedAt:  now,
		}
		state.Pairs[pair.ID] = pair
		result.TradePair = pair
	} else {
		if openPair != nil {
			closePair(state, openPair, order, now)
			result.TradePair = openPair

			shares, value := applyProfitKeeping(state, order, openPair)
			result.KeptProfitShares = shares
			result.KeptProfitValue = value
		} else {
			// 计划重推导后可能找不到配对，记录下来但不阻断成交
			logger.S().Warnf("卖单 %s 成交但找不到对应的交易对", order.ID)
		}
	}

	return result, nil
}

// deriveSellPrice 计算买单对应的卖出价。
// 多重网格用等级上预先算好的卖出价，单一网格按成交价加一个间距。
func deriveSellPrice(state *models.PlanState, buyOrder *models.Order, filledPrice decimal.Decimal) (decimal.Decimal, error) {
	strategy := state.Plan.Strategy
	if strategy.MultiGrid && buyOrder.LevelID != "" {
		level := findLevel(state, buyOrder.LevelID)
		if level != nil {
			if level.SellPrice == nil {
				return decimal.Zero, fmt.Errorf("%w: 等级 %s", models.ErrInsufficientLevelData, level.ID)
			}
			return *level.SellPrice, nil
		}
	}
	gridPercent := strategy.GridIntervalPercent.Div(hundred)
	return filledPrice.Mul(one.Add(gridPercent)), nil
}

// createSellOrder 为已成交的买单创建对应的待成交卖单
func createSellOrder(state *models.PlanState, buyOrder *models.Order, sellPrice decimal.Decimal) *models.Order {
	order := &models.Order{
		ID:        models.NewID("order"),
		PlanID:    buyOrder.PlanID,
		LevelID:   buyOrder.LevelID,
		Price:     sellPrice,
		Quantity:  buyOrder.FilledQuantity,
		Amount:    sellPrice.Mul(buyOrder.FilledQuantity),
		Side:      models.Sell,
		Status:    models.OrderPending,
		CreatedAt: time.Now(),
	}
	state.Orders[order.ID] = order
	return order
}

// CancelOrder 取消一笔待成交订单。对非 pending 订单是被拒绝的空操作。
func CancelOrder(state *models.PlanState, orderID string) error {
	order, ok := state.Orders[orderID]
	if !ok {
		return fmt.Errorf("订单 %s 不存在", orderID)
	}
	if order.Status != models.OrderPending {
		return fmt.Errorf("%w: 订单 %s 状态为 %s", models.ErrOrderNotPending, order.ID, order.Status)
	}
	order.Status = models.OrderCancelled
	return nil
}

// FillOrderPartial 记录一笔部分成交。引擎只登记事实，不自动拆分等级；
// 剩余数量的后续处理由调用方驱动。
func FillOrderPartial(state *models.PlanState, orderID string, filledPrice, filledQuantity decimal.Decimal) (*models.Order, error) {
	order, ok := state.Orders[orderID]
	if !ok {
		return nil, fmt.Errorf("订单 %s 不存在", orderID)
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: 订单 %s 状态为 %s", models.ErrOrderNotPending, order.ID, order.Status)
	}
	order.FilledPrice = filledPrice
	order.FilledQuantity = filledQuantity
	order.FilledAmount = filledPrice.Mul(filledQuantity)
	order.Status = models.OrderPartial
	return order, nil
}

// findLevel 按ID在计划的等级表中查找
func findLevel(state *models.PlanState, levelID string) *models.Level {
	for _, level := range state.Levels {
		if level.ID == levelID {
			return level
		}
	}
	return nil
}

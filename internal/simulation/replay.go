package simulation

import (
	"context"
	"sort"

	"grid-trading-engine/internal/engine"
	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// openBuyLevel 是回放账本里一条待触发的买入线
type openBuyLevel struct {
	price      decimal.Decimal
	investment decimal.Decimal
	levelIndex int
}

// openSellLevel 是买入后动态挂出的卖出线，记住建仓成本以结算利润
type openSellLevel struct {
	price      decimal.Decimal
	quantity   decimal.Decimal
	buyPrice   decimal.Decimal
	levelIndex int
}

// ReplayStrategy 在价格序列上回放网格策略：
// 现金从最大投资额起步，价格跌破买入线且现金足够时买入并挂出
// 对应卖出线；价格升破卖出线时卖出结算利润并恢复原买入线。
// 整个过程只操作这份临时账本，每个交易日检查一次取消标志。
func ReplayStrategy(ctx context.Context, cfg *models.GridConfig, prices []models.PricePoint) *models.SimulationResults {
	initialCapital := cfg.MaxInvestment
	cash := initialCapital
	position := decimal.Zero
	var trades []models.SimulatedTrade

	preview := engine.PreviewConfig(cfg)
	buyLevels := make([]openBuyLevel, 0, len(preview.BuyLevels))
	for _, level := range preview.BuyLevels {
		buyLevels = append(buyLevels, openBuyLevel{
			price:      level.Price,
			investment: level.InvestmentAmount,
			levelIndex: level.LevelIndex,
		})
	}
	var sellLevels []openSellLevel

	gridInterval := cfg.Strategy.GridIntervalPercent.Div(hundred)

	for _, point := range prices {
		if ctx.Err() != nil {
			break
		}
		currentPrice := point.Price

		// 买入触发：现价跌破买入线才成交，持平不触发，高价等级优先
		var triggered []openBuyLevel
		remaining := buyLevels[:0]
		for _, level := range buyLevels {
			if currentPrice.LessThan(level.price) {
				triggered = append(triggered, level)
			} else {
				remaining = append(remaining, level)
			}
		}
		buyLevels = remaining
		sort.SliceStable(triggered, func(i, j int) bool {
			return triggered[i].price.GreaterThan(triggered[j].price)
		})

		for _, level := range triggered {
			// 现金不足的等级保持待触发，等资金回笼后再成交
			if cash.LessThan(level.investment) {
				buyLevels = append(buyLevels, level)
				continue
			}
			quantity := level.investment.Div(currentPrice)
			position = position.Add(quantity)
			cash = cash.Sub(level.investment)

			trades = append(trades, models.SimulatedTrade{
				Date:       point.Date,
				Side:       models.Buy,
				Price:      currentPrice,
				Quantity:   quantity,
				Amount:     level.investment,
				LevelIndex: level.levelIndex,
			})

			sellLevels = append(sellLevels, openSellLevel{
				price:      currentPrice.Mul(one.Add(gridInterval)),
				quantity:   quantity,
				buyPrice:   currentPrice,
				levelIndex: level.levelIndex,
			})
		}

		// 卖出触发：现价不低于卖出线，低价卖出线优先结算
		var triggeredSells []openSellLevel
		remainingSells := sellLevels[:0]
		for _, level := range sellLevels {
			if currentPrice.GreaterThanOrEqual(level.price) {
				triggeredSells = append(triggeredSells, level)
			} else {
				remainingSells = append(remainingSells, level)
			}
		}
		sellLevels = remainingSells
		sort.SliceStable(triggeredSells, func(i, j int) bool {
			return triggeredSells[i].price.LessThan(triggeredSells[j].price)
		})

		for _, level := range triggeredSells {
			sellAmount := currentPrice.Mul(level.quantity)
			position = position.Sub(level.quantity)
			cash = cash.Add(sellAmount)

			cost := level.buyPrice.Mul(level.quantity)
			trades = append(trades, models.SimulatedTrade{
				Date:       point.Date,
				Side:       models.Sell,
				Price:      currentPrice,
				Quantity:   level.quantity,
				Amount:     sellAmount,
				Profit:     sellAmount.Sub(cost),
				LevelIndex: level.levelIndex,
			})

			// 平仓后恢复原买入线，下一轮震荡可以再次建仓
			buyLevels = append(buyLevels, openBuyLevel{
				price:      level.buyPrice,
				investment: cost,
				levelIndex: level.levelIndex,
			})
		}
	}

	results := &models.SimulationResults{
		Trades:         trades,
		TotalTrades:    len(trades),
		FinalPosition:  position,
		FinalCash:      cash,
		InitialCapital: initialCapital,
	}

	if len(prices) > 0 {
		finalPrice := prices[len(prices)-1].Price
		results.PositionValue = position.Mul(finalPrice)
	}
	results.TotalValue = cash.Add(results.PositionValue)

	realized := decimal.Zero
	for _, trade := range trades {
		switch trade.Side {
		case models.Buy:
			results.BuyTrades++
		case models.Sell:
			results.SellTrades++
			realized = realized.Add(trade.Profit)
		}
	}
	results.RealizedProfit = realized

	invested := initialCapital.Sub(cash)
	if invested.GreaterThan(decimal.Zero) {
		results.UnrealizedPnl = results.PositionValue.Sub(invested)
	}

	results.TotalReturn = results.TotalValue.Sub(initialCapital)
	if initialCapital.GreaterThan(decimal.Zero) {
		results.ROIPercent = results.TotalReturn.Div(initialCapital).Mul(hundred).InexactFloat64()
	}

	return results
}

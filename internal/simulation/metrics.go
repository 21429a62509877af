package simulation

import (
	"math"

	"grid-trading-engine/internal/models"
)

// ComputeMetrics 从回放结果和价格序列计算性能指标。
// 最大回撤按价格序列的累计涨跌计算，夏普比率是卖出利润
// 均值与标准差的简化比值。
func ComputeMetrics(results *models.SimulationResults, prices []models.PricePoint) *models.SimulationMetrics {
	metrics := &models.SimulationMetrics{}
	if len(results.Trades) == 0 {
		return metrics
	}

	metrics.TotalReturn = results.TotalReturn.InexactFloat64()
	metrics.ROIPercent = results.ROIPercent
	metrics.TotalTrades = results.TotalTrades

	var sellProfits []float64
	profitable := 0
	for _, trade := range results.Trades {
		if trade.Side != models.Sell {
			continue
		}
		profit := trade.Profit.InexactFloat64()
		sellProfits = append(sellProfits, profit)
		if profit > 0 {
			profitable++
		}
	}
	totalSells := len(sellProfits)
	metrics.ProfitableTrades = profitable
	metrics.LossTrades = totalSells - profitable
	if totalSells > 0 {
		metrics.WinRate = float64(profitable) / float64(totalSells) * 100
		sum := 0.0
		for _, p := range sellProfits {
			sum += p
		}
		metrics.AvgProfitPerTrade = sum / float64(totalSells)
	}

	metrics.MaxDrawdown = maxDrawdownPercent(prices)

	if len(prices) > 0 {
		metrics.TradeFrequency = float64(len(results.Trades)) / float64(len(prices))
	}

	metrics.SharpeRatio = sharpeRatio(sellProfits)

	return metrics
}

// maxDrawdownPercent 在累计日涨跌幅序列上找峰值到谷底的最大落差
func maxDrawdownPercent(prices []models.PricePoint) float64 {
	if len(prices) < 2 {
		return 0
	}
	maxDrawdown := 0.0
	cumulative := 0.0
	peak := 0.0
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Price
		if prev.IsZero() {
			continue
		}
		change := prices[i].Price.Sub(prev).Div(prev).InexactFloat64()
		cumulative += change
		if cumulative > peak {
			peak = cumulative
		}
		if drawdown := peak - cumulative; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown * 100
}

func sharpeRatio(profits []float64) float64 {
	if len(profits) < 2 {
		return 0
	}
	mean := 0.0
	for _, p := range profits {
		mean += p
	}
	mean /= float64(len(profits))

	variance := 0.0
	for _, p := range profits {
		variance += (p - mean) * (p - mean)
	}
	// 样本标准差
	stdev := math.Sqrt(variance / float64(len(profits)-1))
	if stdev == 0 {
		return 0
	}
	return mean / stdev
}

// GenerateRecommendations 根据指标给出模拟结论建议
func GenerateRecommendations(metrics *models.SimulationMetrics) []string {
	var recommendations []string

	if metrics.ROIPercent < 5 {
		recommendations = append(recommendations, "收益率较低，建议优化网格间距或调整价格范围")
	} else if metrics.ROIPercent > 50 {
		recommendations = append(recommendations, "收益率较高，但请注意这是模拟结果，实际交易中可能存在滑点和手续费")
	}

	if metrics.WinRate < 60 {
		recommendations = append(recommendations, "胜率偏低，建议调整网格策略参数")
	}

	if metrics.TradeFrequency > 2 {
		recommendations = append(recommendations, "交易频率较高，请考虑手续费对实际收益的影响")
	} else if metrics.TradeFrequency < 0.1 {
		recommendations = append(recommendations, "交易频率过低，建议减小网格间距增加交易机会")
	}

	if metrics.MaxDrawdown > 20 {
		recommendations = append(recommendations, "最大回撤较大，建议增加风险控制措施")
	}

	return recommendations
}

package engine

import (
	"fmt"
	"sort"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
)

// GenerateOptimizationSuggestions 基于历史快照生成优化建议。
// 输入按日期排好或乱序都可以，函数内部按日期降序取最近30天。
// 少于7天的数据只能返回数据不足提示。
func GenerateOptimizationSuggestions(snapshots []*models.PerformanceSnapshot) []models.OptimizationSuggestion {
	sorted := make([]*models.PerformanceSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SnapshotDate > sorted[j].SnapshotDate
	})
	if len(sorted) > 30 {
		sorted = sorted[:30]
	}

	if len(sorted) < 7 {
		return []models.OptimizationSuggestion{{
			Type:    "insufficient_data",
			Message: "数据不足，无法生成优化建议",
		}}
	}

	var suggestions []models.OptimizationSuggestion

	// 盈利趋势：最近7天与之前7天的均值对比
	if len(sorted) >= 14 {
		recentAvg := averageProfit(sorted[:7])
		olderAvg := averageProfit(sorted[7:14])
		if recentAvg.LessThan(olderAvg) {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type:     "declining_performance",
				Message:  "近期表现下降，建议检查策略参数或市场环境变化",
				Priority: "high",
			})
		}
	}

	// 资金使用效率
	latest := sorted[0]
	if latest.InvestedAmount.GreaterThan(decimal.Zero) {
		roi := latest.TotalProfit.Div(latest.InvestedAmount).Mul(hundred)
		if roi.LessThan(decimal.NewFromInt(5)) {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type:     "low_roi",
				Message:  fmt.Sprintf("投资回报率较低 (%s%%)，建议调整网格间距或选择波动性更大的标的", roi.Round(1)),
				Priority: "medium",
			})
		}
	}

	// 交易频率
	tradesPerWeek := float64(latest.TotalTrades) / float64(len(sorted)) * 7
	if tradesPerWeek < 2 {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     "low_activity",
			Message:  "交易频率较低，建议缩小网格间距或选择波动性更大的标的",
			Priority: "low",
		})
	} else if tradesPerWeek > 20 {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     "high_activity",
			Message:  "交易频率过高，建议扩大网格间距以降低交易成本",
			Priority: "medium",
		})
	}

	return suggestions
}

func averageProfit(snapshots []*models.PerformanceSnapshot) decimal.Decimal {
	if len(snapshots) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range snapshots {
		sum = sum.Add(s.TotalProfit)
	}
	return sum.Div(decimal.NewFromInt(int64(len(snapshots))))
}

package reporter

import (
	"fmt"
	"io"

	"grid-trading-engine/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintPreviewReport 打印配置预览报告：网格等级表、资金分配和风险分析
func PrintPreviewReport(w io.Writer, preview *models.PreviewResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("网格配置预览")
	t.AppendHeader(table.Row{"序号", "类型", "价格", "距基准价", "投资金额", "卖出价"})

	for _, level := range preview.BuyLevels {
		sellPrice := "-"
		if level.SellPrice != nil {
			sellPrice = level.SellPrice.Round(4).String()
		}
		t.AppendRow(table.Row{
			level.LevelIndex,
			"买入",
			level.Price.Round(4),
			formatPercent(level.DistanceFromBase),
			level.InvestmentAmount.Round(2),
			sellPrice,
		})
	}
	t.AppendSeparator()
	for _, level := range preview.SellLevels {
		t.AppendRow(table.Row{
			level.LevelIndex,
			"卖出",
			level.Price.Round(4),
			formatPercent(level.DistanceFromBase),
			"-",
			"-",
		})
	}

	dist := preview.InvestmentDistribution
	t.AppendFooter(table.Row{"", "", "", "买入资金合计", dist.TotalBuyInvestment.Round(2), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("资金与风险")
	summary.AppendRows([]table.Row{
		{"买入等级数", dist.BuyLevelsCount},
		{"最大投资金额", dist.MaxInvestment.Round(2)},
		{"资金利用率", formatPercent(dist.UtilizationRate)},
		{"剩余资金", dist.RemainingFunds.Round(2)},
		{"最大下跌幅度", formatPercent(preview.RiskAnalysis.MaxDrawdownPercent)},
		{"盈利潜力", formatPercent(preview.RiskAnalysis.ProfitPotentialPercent)},
		{"风险等级", string(preview.RiskAnalysis.RiskLevel)},
	})
	for _, recommendation := range preview.RiskAnalysis.Recommendations {
		summary.AppendRow(table.Row{"建议", recommendation})
	}
	summary.Render()
}

// PrintValidationReport 打印配置验证结果和评分
func PrintValidationReport(w io.Writer, result *models.ValidationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("配置验证")

	verdict := "通过"
	if !result.IsValid {
		verdict = "不通过"
	}
	t.AppendRow(table.Row{"结论", verdict})
	t.AppendRow(table.Row{"评分", result.Score})
	t.AppendSeparator()
	for _, e := range result.Errors {
		t.AppendRow(table.Row{"错误", e})
	}
	for _, warning := range result.Warnings {
		t.AppendRow(table.Row{"警告", warning})
	}
	for _, suggestion := range result.Suggestions {
		t.AppendRow(table.Row{"建议", suggestion})
	}
	t.Render()
}

// PrintPressureReport 打印压力测试报告
func PrintPressureReport(w io.Writer, result *models.PressureResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("压力测试")

	verdict := "资金充足"
	if !result.IsFeasible {
		verdict = "资金不足"
	}
	t.AppendRows([]table.Row{
		{"压力价位", result.StressPrice.Round(4)},
		{"需要资金", result.TotalInvestmentNeeded.Round(2)},
		{"可用资金", result.AvailableFunds.Round(2)},
		{"资金利用率", result.FundUtilizationRate.Round(2).String() + "%"},
		{"触发等级数", result.BuyLevelsCount},
		{"结论", verdict},
	})
	t.Render()
}

// PrintSimulationReport 打印模拟结果报告：账户终态、指标和建议
func PrintSimulationReport(w io.Writer, run *models.SimulationRun) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("模拟结果 " + run.ID)

	t.AppendRow(table.Row{"状态", string(run.Status)})
	if run.Error != "" {
		t.AppendRow(table.Row{"错误", run.Error})
	}

	if run.Results != nil {
		r := run.Results
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"初始资金", r.InitialCapital.Round(2)},
			{"期末现金", r.FinalCash.Round(2)},
			{"期末持仓市值", r.PositionValue.Round(2)},
			{"总资产", r.TotalValue.Round(2)},
			{"已实现盈利", r.RealizedProfit.Round(2)},
			{"未实现盈亏", r.UnrealizedPnl.Round(2)},
			{"收益率", formatPercent(r.ROIPercent)},
			{"买入/卖出次数", fmt.Sprintf("%d / %d", r.BuyTrades, r.SellTrades)},
		})
	}

	if run.Metrics != nil {
		m := run.Metrics
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"胜率", formatPercent(m.WinRate)},
			{"平均每笔利润", m.AvgProfitPerTrade},
			{"最大回撤", formatPercent(m.MaxDrawdown)},
			{"夏普比率", m.SharpeRatio},
			{"交易频率(笔/天)", m.TradeFrequency},
		})
	}

	for _, recommendation := range run.Recommendations {
		t.AppendRow(table.Row{"建议", recommendation})
	}
	t.Render()
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

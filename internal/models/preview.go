package models

import "github.com/shopspring/decimal"

// RiskLevel 定义了配置的定性风险档位
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PreviewLevel 是配置预览中的一条网格线，不会被持久化
type PreviewLevel struct {
	Price            decimal.Decimal  `json:"price"`
	InvestmentAmount decimal.Decimal  `json:"investment_amount"`
	LevelIndex       int              `json:"level_index"`
	DistanceFromBase float64          `json:"distance_from_base"` // 距基准价的百分比
	SellPrice        *decimal.Decimal `json:"sell_price,omitempty"`
	GridType         GridType         `json:"grid_type"`
}

// InvestmentDistribution 描述了预览配置的资金分配情况
type InvestmentDistribution struct {
	TotalBuyInvestment decimal.Decimal `json:"total_buy_investment"`
	MaxInvestment      decimal.Decimal `json:"max_investment"`
	UtilizationRate    float64         `json:"utilization_rate"` // 百分比
	RemainingFunds     decimal.Decimal `json:"remaining_funds"`
	BuyLevelsCount     int             `json:"buy_levels_count"`
}

// RiskZone 是一个可视化风险区间，价格相对基准价划分
type RiskZone struct {
	Name        string  `json:"name"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
}

// RiskAnalysis 是配置预览的风险分析结果
type RiskAnalysis struct {
	MaxDrawdownPercent     float64   `json:"max_drawdown_percent"`
	StressInvestmentNeeded float64   `json:"stress_investment_needed"`
	StressFundRatio        float64   `json:"stress_fund_ratio"` // 百分比
	ProfitPotentialPercent float64   `json:"profit_potential_percent"`
	RiskLevel              RiskLevel `json:"risk_level"`
	Recommendations        []string  `json:"recommendations"`
}

// PriceRange 标记预览的价格边界
type PriceRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Base float64 `json:"base"`
}

// InvestmentBar 是 (价格, 投资额) 的可视化数据点
type InvestmentBar struct {
	Price      float64 `json:"price"`
	Investment float64 `json:"investment"`
}

// VisualData 汇总了给前端画图用的数据
type VisualData struct {
	PriceRange     PriceRange      `json:"price_range"`
	GridLines      []float64       `json:"grid_lines"`
	InvestmentBars []InvestmentBar `json:"investment_bars"`
	RiskZones      []RiskZone      `json:"risk_zones"`
}

// PreviewResult 是一次配置预览的完整输出，全部在内存中构建
type PreviewResult struct {
	Levels                 []PreviewLevel         `json:"levels"`
	TotalLevels            int                    `json:"total_levels"`
	BuyLevels              []PreviewLevel         `json:"buy_levels"`
	SellLevels             []PreviewLevel         `json:"sell_levels"`
	InvestmentDistribution InvestmentDistribution `json:"investment_distribution"`
	RiskAnalysis           RiskAnalysis           `json:"risk_analysis"`
	VisualData             VisualData             `json:"visual_data"`
}

// ValidationResult 是配置校验的输出，评分范围 0-100
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	Score       float64  `json:"score"`
}

// BuySuggestion 是接近触发价的买入等级提示
type BuySuggestion struct {
	Level            *Level          `json:"level"`
	TriggerPrice     decimal.Decimal `json:"trigger_price"`
	InvestmentAmount decimal.Decimal `json:"investment_amount"`
	DistancePercent  decimal.Decimal `json:"distance_percent"`
}

// SellSuggestion 是挂单中的卖出订单提示
type SellSuggestion struct {
	Order           *Order          `json:"order"`
	TriggerPrice    decimal.Decimal `json:"trigger_price"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	DistancePercent decimal.Decimal `json:"distance_percent"`
}

// Alert 是一条风险提醒
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TradingSuggestions 汇总了当前价位下的操作建议
type TradingSuggestions struct {
	BuySuggestions  []BuySuggestion  `json:"buy_suggestions"`
	SellSuggestions []SellSuggestion `json:"sell_suggestions"`
	Alerts          []Alert          `json:"alerts"`
}

// OptimizationSuggestion 是基于历史快照的优化建议
type OptimizationSuggestion struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"` // low / medium / high
}

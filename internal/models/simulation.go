package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationStatus 定义了模拟运行的状态
type SimulationStatus string

const (
	SimulationRunning   SimulationStatus = "running"
	SimulationCompleted SimulationStatus = "completed"
	SimulationFailed    SimulationStatus = "failed"
)

// TrendDirection 定义了模拟价格路径的趋势方向
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// SimulationParams 定义了一次模拟的输入参数
type SimulationParams struct {
	Days           int             `json:"days"`            // 模拟天数
	Volatility     decimal.Decimal `json:"volatility"`      // 日波动率百分比, 如2表示2%
	TrendDirection TrendDirection  `json:"trend_direction"` // up / down / neutral
	TrendStrength  decimal.Decimal `json:"trend_strength"`  // 趋势强度百分比
	Seed           int64           `json:"seed,omitempty"`  // 随机种子, 0表示使用默认种子
}

// PricePoint 是模拟价格路径上的一个交易日
type PricePoint struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Price  decimal.Decimal `json:"price"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Volume int64           `json:"volume"`
}

// SimulatedTrade 是模拟回放中的一笔成交记录
type SimulatedTrade struct {
	Date       string          `json:"date"`
	Side       OrderSide       `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
	Profit     decimal.Decimal `json:"profit"` // 仅卖出成交填写
	LevelIndex int             `json:"level"`
}

// SimulationResults 是一次回放结束后的账户终态
type SimulationResults struct {
	Trades         []SimulatedTrade `json:"trades"`
	TotalTrades    int              `json:"total_trades"`
	FinalPosition  decimal.Decimal  `json:"final_position"`
	FinalCash      decimal.Decimal  `json:"final_cash"`
	PositionValue  decimal.Decimal  `json:"position_value"`
	TotalValue     decimal.Decimal  `json:"total_value"`
	InitialCapital decimal.Decimal  `json:"initial_capital"`
	RealizedProfit decimal.Decimal  `json:"realized_profit"`
	UnrealizedPnl  decimal.Decimal  `json:"unrealized_pnl"`
	TotalReturn    decimal.Decimal  `json:"total_return"`
	ROIPercent     float64          `json:"roi_percent"`
	BuyTrades      int              `json:"buy_trades"`
	SellTrades     int              `json:"sell_trades"`
}

// SimulationMetrics 汇总了模拟的性能指标
type SimulationMetrics struct {
	TotalReturn       float64 `json:"total_return"`
	ROIPercent        float64 `json:"roi_percent"`
	WinRate           float64 `json:"win_rate"`             // 百分比
	AvgProfitPerTrade float64 `json:"avg_profit_per_trade"` // 每笔卖出的平均利润
	MaxDrawdown       float64 `json:"max_drawdown"`         // 百分比
	SharpeRatio       float64 `json:"sharpe_ratio"`         // 简化的收益波动比
	TradeFrequency    float64 `json:"trade_frequency"`      // 笔/天
	TotalTrades       int     `json:"total_trades"`
	ProfitableTrades  int     `json:"profitable_trades"`
	LossTrades        int     `json:"loss_trades"`
}

// SimulationRun 是一次模拟的完整记录。它只操作临时状态，
// 不会触碰任何已持久化的计划实体。
type SimulationRun struct {
	ID     string           `json:"id"`
	Config GridConfig       `json:"config"`
	Params SimulationParams `json:"params"`

	Prices          []PricePoint       `json:"prices,omitempty"`
	Results         *SimulationResults `json:"results,omitempty"`
	Metrics         *SimulationMetrics `json:"metrics,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`

	Status SimulationStatus `json:"status"`
	Error  string           `json:"error,omitempty"` // 失败时的错误信息，失败的最终记录

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot 返回运行记录的独立副本。后台写入方和轮询读取方
// 各持有自己的数据，互不可见。
func (run *SimulationRun) Snapshot() *SimulationRun {
	cp := *run
	if run.Prices != nil {
		cp.Prices = append([]PricePoint(nil), run.Prices...)
	}
	if run.Results != nil {
		results := *run.Results
		if run.Results.Trades != nil {
			results.Trades = append([]SimulatedTrade(nil), run.Results.Trades...)
		}
		cp.Results = &results
	}
	if run.Metrics != nil {
		metrics := *run.Metrics
		cp.Metrics = &metrics
	}
	if run.Recommendations != nil {
		cp.Recommendations = append([]string(nil), run.Recommendations...)
	}
	if run.CompletedAt != nil {
		completedAt := *run.CompletedAt
		cp.CompletedAt = &completedAt
	}
	return &cp
}

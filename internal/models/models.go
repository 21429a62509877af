package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config 结构体定义了引擎运行所需的所有配置参数
type Config struct {
	DBPath    string    `json:"db_path"` // 数据库文件路径
	LogConfig LogConfig `json:"log"`     // 日志配置
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level      string `json:"level"`       // 日志级别, e.g., "debug", "info", "warn", "error"
	Output     string `json:"output"`      // 输出模式: "console", "file", "both"
	File       string `json:"file"`        // 日志文件路径
	MaxSize    int    `json:"max_size"`    // 单个日志文件的最大大小 (MB)
	MaxBackups int    `json:"max_backups"` // 保留的旧日志文件最大数量
	MaxAge     int    `json:"max_age"`     // 旧日志文件的最大保留天数
	Compress   bool   `json:"compress"`    // 是否压缩旧日志文件
}

// StrategyVersion 定义了网格策略的版本
type StrategyVersion string

const (
	VersionBasic       StrategyVersion = "1.0" // 基础网格
	VersionAdvanced    StrategyVersion = "2.0" // 进阶网格
	VersionKeepProfit  StrategyVersion = "2.1" // 留利润策略
	VersionProgressive StrategyVersion = "2.2" // 逐格加码策略
	VersionMultiGrid   StrategyVersion = "2.3" // 一网打尽策略（多重网格）
)

// GridType 定义了网格类型
type GridType string

const (
	GridSingle GridType = "single" // 单一网格
	GridSmall  GridType = "small"  // 小网格（多重网格模式）
	GridMedium GridType = "medium" // 中网格（多重网格模式）
	GridLarge  GridType = "large"  // 大网格（多重网格模式）
)

// OrderSide 定义了订单方向
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// OrderStatus 定义了订单状态。状态迁移是单向的:
// pending -> filled / cancelled / partial，filled 和 cancelled 为终态。
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFilled    OrderStatus = "filled"
	OrderCancelled OrderStatus = "cancelled"
	OrderPartial   OrderStatus = "partial"
)

// PlanStatus 定义了网格计划的生命周期状态
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanPaused    PlanStatus = "paused"
	PlanStopped   PlanStatus = "stopped"
	PlanCompleted PlanStatus = "completed"
)

// StrategyConfig 定义了一套网格策略的全部参数，支持1.0-2.3各版本。
// 计划引用后即视为不可变，只有显式的重推导操作会整体重新生成网格。
type StrategyConfig struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Version     StrategyVersion `json:"version"`

	// 网格基本参数
	GridIntervalPercent decimal.Decimal `json:"grid_interval_percent"` // 网格间距百分比, 如5%填5

	// 留利润策略参数 (2.1)
	KeepProfit      bool            `json:"keep_profit"`       // 启用留利润策略
	ProfitKeepRatio decimal.Decimal `json:"profit_keep_ratio"` // 利润保留比例, 100表示全部保留

	// 逐格加码策略参数 (2.2)
	ProgressiveInvestment     bool            `json:"progressive_investment"`      // 启用逐格加码
	InvestmentIncreasePercent decimal.Decimal `json:"investment_increase_percent"` // 每格投入增加的百分比
	StartIncreaseFromGrid     int             `json:"start_increase_from_grid"`    // 从第几格开始加码

	// 一网打尽策略参数 (2.3)
	MultiGrid         bool            `json:"multi_grid"`          // 启用多重网格
	SmallGridPercent  decimal.Decimal `json:"small_grid_percent"`  // 小网格间距
	MediumGridPercent decimal.Decimal `json:"medium_grid_percent"` // 中网格间距
	LargeGridPercent  decimal.Decimal `json:"large_grid_percent"`  // 大网格间距
	SmallGridRatio    decimal.Decimal `json:"small_grid_ratio"`    // 小网格资金比例
	MediumGridRatio   decimal.Decimal `json:"medium_grid_ratio"`   // 中网格资金比例
	LargeGridRatio    decimal.Decimal `json:"large_grid_ratio"`    // 大网格资金比例
}

// GridConfig 是一套完整的、尚未落地为计划的网格配置。
// 预览、验证和模拟都直接消费它；CreatePlan 以它为蓝本建立计划。
type GridConfig struct {
	Strategy StrategyConfig `json:"strategy"`

	BasePrice decimal.Decimal `json:"base_price"` // 基准价格
	MinPrice  decimal.Decimal `json:"min_price"`  // 最低价格（压力测试下界）
	MaxPrice  decimal.Decimal `json:"max_price"`  // 最高价格

	BaseInvestment decimal.Decimal `json:"base_investment"` // 单格基础投资金额
	MaxInvestment  decimal.Decimal `json:"max_investment"`  // 最大投资金额
}

// Plan 代表一个网格交易计划及其运行统计
type Plan struct {
	ID       string `json:"id"`
	PlanName string `json:"plan_name"`
	Symbol   string `json:"symbol"` // 交易标的标识，由外部系统解析

	Strategy StrategyConfig `json:"strategy"`

	// 网格参数
	BasePrice          decimal.Decimal `json:"base_price"`
	MinPrice           decimal.Decimal `json:"min_price"`
	MaxPrice           decimal.Decimal `json:"max_price"`
	MaxDrawdownPercent decimal.Decimal `json:"max_drawdown_percent"` // 压力测试参数, 如50表示50%下跌

	// 交易参数
	BaseInvestment decimal.Decimal `json:"base_investment"`
	MaxInvestment  decimal.Decimal `json:"max_investment"`

	Status PlanStatus `json:"status"`

	// 统计信息
	TotalProfit      decimal.Decimal `json:"total_profit"`       // 总盈利
	RealizedProfit   decimal.Decimal `json:"realized_profit"`    // 已实现盈利
	KeptProfitShares decimal.Decimal `json:"kept_profit_shares"` // 保留利润份额
	TotalTrades      int             `json:"total_trades"`
	BuyTrades        int             `json:"buy_trades"`
	SellTrades       int             `json:"sell_trades"`
	TotalInvested    decimal.Decimal `json:"total_invested"`  // 累计投入资金
	AvailableFunds   decimal.Decimal `json:"available_funds"` // 可用资金

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
}

// GridConfig 把计划的网格参数重新组装成一份配置，供等级生成等纯函数使用。
func (p *Plan) GridConfig() *GridConfig {
	return &GridConfig{
		Strategy:       p.Strategy,
		BasePrice:      p.BasePrice,
		MinPrice:       p.MinPrice,
		MaxPrice:       p.MaxPrice,
		BaseInvestment: p.BaseInvestment,
		MaxInvestment:  p.MaxInvestment,
	}
}

// LevelDescriptor 描述了一条理论网格线，是等级生成器的输出单元。
// 在计划的一个周期内它是不可变的。
type LevelDescriptor struct {
	Price            decimal.Decimal  `json:"price"`
	InvestmentAmount decimal.Decimal  `json:"investment_amount"`
	GridType         GridType         `json:"grid_type"`
	GridIndex        int              `json:"grid_index"`           // 基准价以上 0,1,2..., 以下 -1,-2...
	SellPrice        *decimal.Decimal `json:"sell_price,omitempty"` // 仅多重网格预先计算
}

// Level 是落地到某个计划上的网格等级，携带运行时触发状态。
// (plan, price, grid_type) 在计划内唯一。
type Level struct {
	ID     string `json:"id"`
	PlanID string `json:"plan_id"`

	LevelDescriptor

	IsTriggered bool `json:"is_triggered"` // 触发后不会自动回退，只有计划重推导会重置
	IsCompleted bool `json:"is_completed"`

	CreatedAt time.Time `json:"created_at"`
}

// Order 代表一笔网格订单
type Order struct {
	ID      string `json:"id"`
	PlanID  string `json:"plan_id"`
	LevelID string `json:"level_id,omitempty"` // 计划重推导后可能为空

	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`

	Side   OrderSide   `json:"side"`
	Status OrderStatus `json:"status"`

	// 成交信息
	FilledPrice    decimal.Decimal `json:"filled_price"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	FilledAmount   decimal.Decimal `json:"filled_amount"`

	// 留利润策略 (2.1)
	ProfitKeptQuantity decimal.Decimal `json:"profit_kept_quantity"` // 保留利润份额数量

	CreatedAt time.Time  `json:"created_at"`
	FilledAt  *time.Time `json:"filled_at,omitempty"`
}

// TradePair 记录一次完整的买卖配对，是已实现利润的最小单位。
// 卖出订单成交前 SellOrderID 为空；两侧都成交后才会标记完成。
type TradePair struct {
	ID          string `json:"id"`
	PlanID      string `json:"plan_id"`
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id,omitempty"`

	ProfitAmount     decimal.Decimal `json:"profit_amount"`      // 盈利金额
	ProfitRate       decimal.Decimal `json:"profit_rate"`        // 盈利率（百分比, 5表示5%）
	KeptProfitShares decimal.Decimal `json:"kept_profit_shares"` // 保留利润份额

	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PlanState 持有一个计划的全部运行时状态：计划本身加上等级、订单、
// 交易对的扁平表。引擎的所有状态机操作都以它为作用单元，
// 持久化时整体原子写入，避免半更新状态落库。
type PlanState struct {
	Plan   *Plan                 `json:"plan"`
	Levels []*Level              `json:"levels"`
	Orders map[string]*Order     `json:"orders"`
	Pairs  map[string]*TradePair `json:"pairs"`
}

// NewPlanState 为一个计划建立空的运行时状态容器
func NewPlanState(plan *Plan) *PlanState {
	return &PlanState{
		Plan:   plan,
		Levels: make([]*Level, 0),
		Orders: make(map[string]*Order),
		Pairs:  make(map[string]*TradePair),
	}
}

// FillResult 是一次订单成交处理的完整产物
type FillResult struct {
	Order            *Order          `json:"order"`
	SellOrder        *Order          `json:"sell_order,omitempty"` // 买单成交时派生的卖单
	TradePair        *TradePair      `json:"trade_pair,omitempty"` // 买单成交时开启的交易对
	KeptProfitShares decimal.Decimal `json:"kept_profit_shares"`   // 本次保留的利润份额
	KeptProfitValue  decimal.Decimal `json:"kept_profit_value"`    // 保留份额按成交价折算的价值
}

// PerformanceResult 是某一时刻计划的性能计算结果
type PerformanceResult struct {
	RealizedProfit  decimal.Decimal `json:"realized_profit"`
	UnrealizedPnl   decimal.Decimal `json:"unrealized_pnl"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	TotalPosition   decimal.Decimal `json:"total_position"` // 未平仓持仓数量
	TotalCost       decimal.Decimal `json:"total_cost"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	KeptShares      decimal.Decimal `json:"kept_profit_shares"`
	KeptSharesValue decimal.Decimal `json:"kept_profit_value"`
	CompletedTrades int             `json:"completed_trades"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	AvailableFunds  decimal.Decimal `json:"available_funds"`
	FundUtilization decimal.Decimal `json:"fund_utilization"` // 百分比
}

// PerformanceSnapshot 是计划性能的某日快照，(plan, date) 唯一
type PerformanceSnapshot struct {
	PlanID       string `json:"plan_id"`
	SnapshotDate string `json:"snapshot_date"` // YYYY-MM-DD

	TotalProfit      decimal.Decimal `json:"total_profit"`
	RealizedProfit   decimal.Decimal `json:"realized_profit"`
	UnrealizedProfit decimal.Decimal `json:"unrealized_profit"`

	TotalPosition      decimal.Decimal `json:"total_position"`
	KeptProfitPosition decimal.Decimal `json:"kept_profit_position"`

	TotalTrades    int `json:"total_trades"`
	CompletedPairs int `json:"completed_pairs"`

	InvestedAmount  decimal.Decimal `json:"invested_amount"`
	AvailableAmount decimal.Decimal `json:"available_amount"`

	CurrentPrice decimal.Decimal `json:"current_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PressureResult 是压力测试的输出：跌到压力价位前需要吃下的全部买入资金
type PressureResult struct {
	StressPrice           decimal.Decimal   `json:"stress_price"`
	TotalInvestmentNeeded decimal.Decimal   `json:"total_investment_needed"`
	AvailableFunds        decimal.Decimal   `json:"available_funds"`
	IsFeasible            bool              `json:"is_feasible"`
	FundUtilizationRate   decimal.Decimal   `json:"fund_utilization_rate"` // 百分比
	BuyLevelsCount        int               `json:"buy_levels_count"`
	BuyLevels             []LevelDescriptor `json:"buy_levels"`
}

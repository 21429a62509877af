package models

import "errors"

// 引擎的错误类别。配置和状态前置条件错误都是同步返回的，
// 并且保证不会留下半更新的状态（先校验后执行）。
var (
	// ErrInvalidConfiguration 表示网格配置本身不合法（间距、价格边界、资金比例等）
	ErrInvalidConfiguration = errors.New("invalid grid configuration")

	// ErrOrderNotPending 表示对非 pending 状态的订单执行成交或取消
	ErrOrderNotPending = errors.New("order is not in pending status")

	// ErrTradePairAlreadyComplete 表示交易对已经关闭，不能重复关闭
	ErrTradePairAlreadyComplete = errors.New("trade pair is already completed")

	// ErrInsufficientLevelData 表示多重网格等级缺少必需的卖出价
	ErrInsufficientLevelData = errors.New("grid level is missing required sell price")

	// ErrPlanNotFound 表示请求的网格计划不存在
	ErrPlanNotFound = errors.New("grid plan not found")

	// ErrSimulationNotFound 表示请求的模拟记录不存在
	ErrSimulationNotFound = errors.New("simulation record not found")
)

package service

import (
	"fmt"
	"time"

	"grid-trading-engine/internal/engine"
	"grid-trading-engine/internal/logger"
	"grid-trading-engine/internal/models"
	"grid-trading-engine/internal/persistence"

	"github.com/shopspring/decimal"
)

// PlanService 是网格计划的应用服务：组合引擎的纯函数和仓储，
// 负责"先校验后执行，成功后整体落库"的事务节奏。
// 任何一步出错都不会把半更新的状态写进仓储。
type PlanService struct {
	repo persistence.PlanRepository
}

func NewPlanService(repo persistence.PlanRepository) *PlanService {
	return &PlanService{repo: repo}
}

// CreatePlan 校验配置、生成网格等级并落库一个新的计划。
// 配置校验不通过时直接拒绝，不产生任何实体。
func (s *PlanService) CreatePlan(planName, symbol string, cfg models.GridConfig, maxDrawdownPercent decimal.Decimal) (*models.PlanState, error) {
	validation := engine.ValidateConfig(&cfg)
	if !validation.IsValid {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidConfiguration, validation.Errors)
	}

	descriptors, err := engine.GenerateLevels(&cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	plan := &models.Plan{
		ID:                 models.NewID("plan"),
		PlanName:           planName,
		Symbol:             symbol,
		Strategy:           cfg.Strategy,
		BasePrice:          cfg.BasePrice,
		MinPrice:           cfg.MinPrice,
		MaxPrice:           cfg.MaxPrice,
		MaxDrawdownPercent: maxDrawdownPercent,
		BaseInvestment:     cfg.BaseInvestment,
		MaxInvestment:      cfg.MaxInvestment,
		Status:             models.PlanActive,
		AvailableFunds:     cfg.MaxInvestment,
		CreatedAt:          now,
		StartedAt:          &now,
	}

	state := models.NewPlanState(plan)
	state.Levels = buildLevels(plan.ID, descriptors, now)

	if err := s.repo.SavePlanState(state); err != nil {
		return nil, err
	}
	logger.S().Infof("创建网格计划: id=%s name=%s 等级数=%d", plan.ID, planName, len(state.Levels))
	return state, nil
}

func buildLevels(planID string, descriptors []models.LevelDescriptor, now time.Time) []*models.Level {
	levels := make([]*models.Level, 0, len(descriptors))
	for _, descriptor := range descriptors {
		levels = append(levels, &models.Level{
			ID:              models.NewID("level"),
			PlanID:          planID,
			LevelDescriptor: descriptor,
			CreatedAt:       now,
		})
	}
	return levels
}

// GetPlan 加载一个计划的运行时状态
func (s *PlanService) GetPlan(planID string) (*models.PlanState, error) {
	state, err := s.repo.LoadPlanState(planID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrPlanNotFound, planID)
	}
	return state, nil
}

// TriggerLevels 按当前价格触发等级并落库。重复调用是幂等的。
func (s *PlanService) TriggerLevels(planID string, currentPrice decimal.Decimal) ([]*models.Order, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if state.Plan.Status != models.PlanActive {
		return nil, fmt.Errorf("计划 %s 当前状态为 %s, 不能触发等级", planID, state.Plan.Status)
	}

	orders := engine.TriggerLevels(state, currentPrice)
	if len(orders) == 0 {
		return orders, nil
	}
	if err := s.repo.SavePlanState(state); err != nil {
		return nil, err
	}
	return orders, nil
}

// ProcessFill 处理一笔订单成交并落库。引擎出错时状态不落库，
// 仓储里的计划保持成交前的样子。
func (s *PlanService) ProcessFill(planID, orderID string, filledPrice, filledQuantity decimal.Decimal) (*models.FillResult, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}

	result, err := engine.FillOrder(state, orderID, filledPrice, filledQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SavePlanState(state); err != nil {
		return nil, err
	}
	return result, nil
}

// CancelOrder 取消一笔待成交订单并落库
func (s *PlanService) CancelOrder(planID, orderID string) error {
	state, err := s.GetPlan(planID)
	if err != nil {
		return err
	}
	if err := engine.CancelOrder(state, orderID); err != nil {
		return err
	}
	return s.repo.SavePlanState(state)
}

// RederiveLevels 按计划当前配置整体重新生成网格等级。
// 旧等级全部丢弃，触发状态清零；已存在的订单保持不变，
// 它们的等级引用会悬空，后续卖出价按成交价回退计算。
func (s *PlanService) RederiveLevels(planID string) (*models.PlanState, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}

	descriptors, err := engine.GenerateLevels(state.Plan.GridConfig())
	if err != nil {
		return nil, err
	}

	state.Levels = buildLevels(planID, descriptors, time.Now())
	if err := s.repo.SavePlanState(state); err != nil {
		return nil, err
	}
	logger.S().Infof("重新生成网格等级: plan=%s 等级数=%d", planID, len(state.Levels))
	return state, nil
}

// ComputePerformance 计算计划在当前价格下的性能指标
func (s *PlanService) ComputePerformance(planID string, currentPrice decimal.Decimal) (*models.PerformanceResult, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	return engine.ComputePerformance(state, currentPrice), nil
}

// CreateSnapshot 固化今日的性能快照。同一天重复调用会覆盖。
func (s *PlanService) CreateSnapshot(planID string, currentPrice decimal.Decimal) (*models.PerformanceSnapshot, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	snapshot := engine.BuildSnapshot(state, currentPrice, time.Now())
	if err := s.repo.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RunPressureTest 对计划执行压力测试，下跌幅度取计划上配置的参数
func (s *PlanService) RunPressureTest(planID string) (*models.PressureResult, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	return engine.RunPressureTest(state.Plan.GridConfig(), state.Plan.MaxDrawdownPercent)
}

// GetTradingSuggestions 给出计划在当前价位下的操作建议
func (s *PlanService) GetTradingSuggestions(planID string, currentPrice decimal.Decimal) (*models.TradingSuggestions, error) {
	state, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	return engine.GetTradingSuggestions(state, currentPrice), nil
}

// GetOptimizationSuggestions 基于历史快照给出优化建议
func (s *PlanService) GetOptimizationSuggestions(planID string) ([]models.OptimizationSuggestion, error) {
	snapshots, err := s.repo.LoadSnapshots(planID)
	if err != nil {
		return nil, err
	}
	return engine.GenerateOptimizationSuggestions(snapshots), nil
}

// PausePlan 暂停计划，暂停期间不再触发新的等级
func (s *PlanService) PausePlan(planID string) error {
	return s.setStatus(planID, models.PlanPaused, false)
}

// ResumePlan 恢复已暂停的计划
func (s *PlanService) ResumePlan(planID string) error {
	return s.setStatus(planID, models.PlanActive, false)
}

// StopPlan 停止计划并记录停止时间，停止是终态
func (s *PlanService) StopPlan(planID string) error {
	return s.setStatus(planID, models.PlanStopped, true)
}

func (s *PlanService) setStatus(planID string, status models.PlanStatus, stopped bool) error {
	state, err := s.GetPlan(planID)
	if err != nil {
		return err
	}
	state.Plan.Status = status
	if stopped {
		now := time.Now()
		state.Plan.StoppedAt = &now
	}
	if err := s.repo.SavePlanState(state); err != nil {
		return err
	}
	logger.S().Infof("计划状态变更: plan=%s status=%s", planID, status)
	return nil
}

// ListPlans 返回全部已存储的计划ID
func (s *PlanService) ListPlans() ([]string, error) {
	return s.repo.ListPlanIDs()
}

// DeletePlan 删除计划及其全部快照
func (s *PlanService) DeletePlan(planID string) error {
	if err := s.repo.DeletePlanState(planID); err != nil {
		return err
	}
	logger.S().Infof("删除网格计划: plan=%s", planID)
	return nil
}

package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"grid-trading-engine/internal/engine"
	"grid-trading-engine/internal/logger"
	"grid-trading-engine/internal/models"

	"github.com/google/uuid"
)

// Runner 管理异步模拟任务。每次 Start 在独立的 goroutine 中生成
// 价格路径、回放策略并计算指标，调用方通过ID轮询结果。
// 模拟对持久化的计划实体零影响。
type Runner struct {
	mu      sync.RWMutex
	runs    map[string]*models.SimulationRun
	cancels map[string]context.CancelFunc
}

func NewRunner() *Runner {
	return &Runner{
		runs:    make(map[string]*models.SimulationRun),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start 校验配置后启动一次异步模拟，立即返回模拟ID。
// 配置无效时不创建任何任务。
func (r *Runner) Start(ctx context.Context, cfg models.GridConfig, params models.SimulationParams) (string, error) {
	if params.Days <= 0 {
		return "", fmt.Errorf("%w: 模拟天数必须大于0", models.ErrInvalidConfiguration)
	}
	validation := engine.ValidateConfig(&cfg)
	if !validation.IsValid {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidConfiguration, validation.Errors)
	}

	run := &models.SimulationRun{
		ID:        uuid.NewString(),
		Config:    cfg,
		Params:    params,
		Status:    models.SimulationRunning,
		CreatedAt: time.Now(),
	}

	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.runs[run.ID] = run
	r.cancels[run.ID] = cancel
	r.mu.Unlock()

	logger.S().Infof("启动模拟: id=%s days=%d trend=%s", run.ID, params.Days, params.TrendDirection)
	go r.execute(runCtx, run.ID)

	return run.ID, nil
}

// execute 在后台跑完一次模拟的全部阶段，任何阶段被取消或出错
// 都会把任务标记为失败并留下错误信息作为最终记录。
func (r *Runner) execute(ctx context.Context, runID string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.fail(runID, fmt.Sprintf("模拟过程中出现错误: %v", rec))
		}
		r.mu.Lock()
		delete(r.cancels, runID)
		r.mu.Unlock()
	}()

	r.mu.RLock()
	run := r.runs[runID]
	r.mu.RUnlock()

	cfg := run.Config
	params := run.Params

	prices := GeneratePricePath(ctx, cfg.BasePrice, params, time.Now())
	if err := ctx.Err(); err != nil {
		r.fail(runID, "模拟已取消")
		return
	}

	results := ReplayStrategy(ctx, &cfg, prices)
	if err := ctx.Err(); err != nil {
		r.fail(runID, "模拟已取消")
		return
	}

	metrics := ComputeMetrics(results, prices)
	recommendations := GenerateRecommendations(metrics)

	now := time.Now()
	r.mu.Lock()
	run.Prices = prices
	run.Results = results
	run.Metrics = metrics
	run.Recommendations = recommendations
	run.Status = models.SimulationCompleted
	run.CompletedAt = &now
	r.mu.Unlock()

	logger.S().Infof("模拟完成: id=%s trades=%d roi=%.2f%%", runID, results.TotalTrades, results.ROIPercent)
}

func (r *Runner) fail(runID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok || run.Status != models.SimulationRunning {
		return
	}
	run.Status = models.SimulationFailed
	run.Error = message
	logger.S().Warnf("模拟失败: id=%s err=%s", runID, message)
}

// Get 返回指定模拟的当前快照。返回的是锁内拷贝的副本，
// 后台 goroutine 的后续写入不会影响调用方已拿到的数据。
func (r *Runner) Get(runID string) (*models.SimulationRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSimulationNotFound, runID)
	}
	return run.Snapshot(), nil
}

// Cancel 取消一个还在运行的模拟。已结束的任务不受影响。
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, ok := r.cancels[runID]
	r.mu.Unlock()
	if !ok {
		r.mu.RLock()
		_, exists := r.runs[runID]
		r.mu.RUnlock()
		if !exists {
			return fmt.Errorf("%w: %s", models.ErrSimulationNotFound, runID)
		}
		return nil
	}
	cancel()
	return nil
}

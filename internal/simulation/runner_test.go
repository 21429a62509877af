package simulation

import (
	"context"
	"testing"
	"time"

	"grid-trading-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForRun polls the runner until the run leaves the running state.
func waitForRun(t *testing.T, runner *Runner, runID string) *models.SimulationRun {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		run, err := runner.Get(runID)
		require.NoError(t, err)
		if run.Status != models.SimulationRunning {
			return run
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the simulation to finish")
	return nil
}

// TestRunnerCompletesSimulation verifies the full async path: start, poll and
// read back results with metrics and recommendations.
func TestRunnerCompletesSimulation(t *testing.T) {
	runner := NewRunner()

	runID, err := runner.Start(context.Background(), *replayConfig(), models.SimulationParams{
		Days:           30,
		Volatility:     decimal.NewFromInt(2),
		TrendDirection: models.TrendNeutral,
		TrendStrength:  decimal.Zero,
	})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run := waitForRun(t, runner, runID)
	assert.Equal(t, models.SimulationCompleted, run.Status)
	require.NotNil(t, run.CompletedAt)
	require.NotNil(t, run.Results)
	require.NotNil(t, run.Metrics)
	assert.Len(t, run.Prices, 30)
	assert.Equal(t, run.Results.TotalTrades, len(run.Results.Trades))
}

// TestRunnerFlatMarketZeroTrades verifies that zero volatility with a neutral
// trend completes with no trades at all.
func TestRunnerFlatMarketZeroTrades(t *testing.T) {
	runner := NewRunner()

	runID, err := runner.Start(context.Background(), *replayConfig(), models.SimulationParams{
		Days:           10,
		Volatility:     decimal.Zero,
		TrendDirection: models.TrendNeutral,
		TrendStrength:  decimal.Zero,
	})
	require.NoError(t, err)

	run := waitForRun(t, runner, runID)
	assert.Equal(t, models.SimulationCompleted, run.Status)
	require.NotNil(t, run.Results)
	assert.Equal(t, 0, run.Results.TotalTrades)
	assert.True(t, run.Results.FinalCash.Equal(run.Results.InitialCapital))
}

// TestRunnerGetReturnsIsolatedSnapshot verifies that every Get hands out a
// copy: mutating one poll result never leaks into the stored run.
func TestRunnerGetReturnsIsolatedSnapshot(t *testing.T) {
	runner := NewRunner()

	runID, err := runner.Start(context.Background(), *replayConfig(), models.SimulationParams{
		Days:           5,
		Volatility:     decimal.NewFromInt(2),
		TrendDirection: models.TrendNeutral,
	})
	require.NoError(t, err)

	run := waitForRun(t, runner, runID)
	require.Equal(t, models.SimulationCompleted, run.Status)
	require.NotNil(t, run.Results)

	run.Status = models.SimulationFailed
	run.Prices = run.Prices[:0]
	run.Results.TotalTrades = -1

	reread, err := runner.Get(runID)
	require.NoError(t, err)
	assert.Equal(t, models.SimulationCompleted, reread.Status)
	assert.Len(t, reread.Prices, 5)
	assert.GreaterOrEqual(t, reread.Results.TotalTrades, 0)
}

// TestRunnerRejectsInvalidConfig verifies that validation failures prevent the
// run from ever being created.
func TestRunnerRejectsInvalidConfig(t *testing.T) {
	runner := NewRunner()

	cfg := replayConfig()
	cfg.MinPrice = decimal.NewFromInt(150) // min above base is invalid

	_, err := runner.Start(context.Background(), *cfg, models.SimulationParams{
		Days:           10,
		Volatility:     decimal.NewFromInt(2),
		TrendDirection: models.TrendNeutral,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

// TestRunnerRejectsNonPositiveDays verifies the day count guard.
func TestRunnerRejectsNonPositiveDays(t *testing.T) {
	runner := NewRunner()

	_, err := runner.Start(context.Background(), *replayConfig(), models.SimulationParams{
		Days: 0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

// TestRunnerGetUnknown verifies the lookup error for a missing run id.
func TestRunnerGetUnknown(t *testing.T) {
	runner := NewRunner()
	_, err := runner.Get("no-such-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSimulationNotFound)
}

// TestRunnerCancelUnknown verifies that cancelling a missing run fails.
func TestRunnerCancelUnknown(t *testing.T) {
	runner := NewRunner()
	err := runner.Cancel("no-such-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSimulationNotFound)
}

// TestRunnerCancelFinishedIsNoop verifies that cancelling a completed run does
// not change its state.
func TestRunnerCancelFinishedIsNoop(t *testing.T) {
	runner := NewRunner()

	runID, err := runner.Start(context.Background(), *replayConfig(), models.SimulationParams{
		Days:           5,
		Volatility:     decimal.NewFromInt(1),
		TrendDirection: models.TrendNeutral,
	})
	require.NoError(t, err)
	run := waitForRun(t, runner, runID)
	require.Equal(t, models.SimulationCompleted, run.Status)

	require.NoError(t, runner.Cancel(runID))
	run, err = runner.Get(runID)
	require.NoError(t, err)
	assert.Equal(t, models.SimulationCompleted, run.Status)
}

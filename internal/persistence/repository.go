package persistence

import "grid-trading-engine/internal/models"

// PlanRepository defines the interface for plan state persistence.
// It abstracts the underlying storage mechanism (e.g., BadgerDB, in-memory)
// from the rest of the application.
type PlanRepository interface {
	// SavePlanState atomically saves the entire runtime state of one plan.
	SavePlanState(state *models.PlanState) error

	// LoadPlanState loads the state of one plan.
	// If the plan is not found, it should return (nil, nil).
	LoadPlanState(planID string) (*models.PlanState, error)

	// ListPlanIDs returns the IDs of all stored plans.
	ListPlanIDs() ([]string, error)

	// DeletePlanState removes a plan and all of its runtime state.
	DeletePlanState(planID string) error

	// SaveSnapshot stores a daily performance snapshot.
	// Writing the same (plan, date) twice overwrites the previous snapshot.
	SaveSnapshot(snapshot *models.PerformanceSnapshot) error

	// LoadSnapshots returns all snapshots of a plan ordered by date ascending.
	LoadSnapshots(planID string) ([]*models.PerformanceSnapshot, error)

	// Close gracefully closes the connection to the database.
	Close() error
}

package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"grid-trading-engine/internal/models"

	"github.com/dgraph-io/badger/v3"
)

const (
	planKeyPrefix     = "plan/"
	snapshotKeyPrefix = "snapshot/"
)

// badgerRepository is the BadgerDB implementation of the PlanRepository.
type badgerRepository struct {
	db *badger.DB
}

// NewBadgerRepository creates and returns a new repository instance connected to a BadgerDB database.
func NewBadgerRepository(dbPath string) (PlanRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	// For this use case, we can disable Badger's own logging to keep our app's logs clean.
	// Errors will still be returned from DB operations.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerRepository{db: db}, nil
}

func planKey(planID string) []byte {
	return []byte(planKeyPrefix + planID)
}

func snapshotKey(planID, date string) []byte {
	return []byte(snapshotKeyPrefix + planID + "/" + date)
}

// SavePlanState atomically saves the entire runtime state of one plan.
// The whole state is marshalled into a single JSON value so a plan can
// never be observed half-updated.
func (r *badgerRepository) SavePlanState(state *models.PlanState) error {
	if state == nil || state.Plan == nil || state.Plan.ID == "" {
		return errors.New("plan state is missing a plan id")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(planKey(state.Plan.ID), data)
	})
}

// LoadPlanState loads the state of one plan.
// If the plan key is not found, it returns (nil, nil) to indicate no state is present.
func (r *badgerRepository) LoadPlanState(planID string) (*models.PlanState, error) {
	var state models.PlanState

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(planKey(planID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				return errors.New("plan state value is empty in database")
			}
			return json.Unmarshal(val, &state)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// ListPlanIDs iterates over the plan key space. Values are not loaded.
func (r *badgerRepository) ListPlanIDs() ([]string, error) {
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(planKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(planKeyPrefix):])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// DeletePlanState removes the plan state and all of its snapshots in one transaction.
func (r *badgerRepository) DeletePlanState(planID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(planKey(planID)); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(snapshotKeyPrefix + planID + "/")
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSnapshot stores a daily performance snapshot under a (plan, date) key.
func (r *badgerRepository) SaveSnapshot(snapshot *models.PerformanceSnapshot) error {
	if snapshot == nil || snapshot.PlanID == "" || snapshot.SnapshotDate == "" {
		return fmt.Errorf("snapshot is missing a plan id or date")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(snapshot.PlanID, snapshot.SnapshotDate), data)
	})
}

// LoadSnapshots returns all snapshots of a plan. Keys embed the ISO date,
// so iterating the prefix in key order already yields ascending dates.
func (r *badgerRepository) LoadSnapshots(planID string) ([]*models.PerformanceSnapshot, error) {
	var snapshots []*models.PerformanceSnapshot

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(snapshotKeyPrefix + planID + "/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var snapshot models.PerformanceSnapshot
				if err := json.Unmarshal(val, &snapshot); err != nil {
					return err
				}
				snapshots = append(snapshots, &snapshot)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Close gracefully closes the connection to the database.
func (r *badgerRepository) Close() error {
	return r.db.Close()
}

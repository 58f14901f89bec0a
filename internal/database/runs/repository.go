// Package runs provides database operations for sync run history.
//
// # Interface Implementation
//
//	var _ shelfsync.RunRecorder = (*Repository)(nil)
//	var _ http.RunHistory = (*Repository)(nil)
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	id, err := repo.StartRun("read")
package runs

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/shelfsync/internal/entities"
)

// DefaultListLimit bounds ListRuns when no limit is given.
const DefaultListLimit = 20

// InterruptedMessage is recorded on runs that never reached a terminal stage.
const InterruptedMessage = "sync was interrupted"

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("sync run not found")

// StaleAfter is how long an open run may go without a stage update before
// it is considered abandoned.
const StaleAfter = 10 * time.Minute

var openStages = []entities.SyncStage{
	entities.SyncStageFetchingShelf,
	entities.SyncStageFetchingStore,
	entities.SyncStageReconciling,
	entities.SyncStageProcessingBooks,
	entities.SyncStageCommitting,
}

// Repository handles all sync run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun creates a run record in the fetching_shelf stage.
func (r *Repository) StartRun(shelf string) (uint, error) {
	now := time.Now()
	run := entities.SyncRun{
		Shelf:     shelf,
		Stage:     entities.SyncStageFetchingShelf,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.Create(&run).Error; err != nil {
		return 0, err
	}
	return run.ID, nil
}

// UpdateStage moves a run to a non-terminal stage.
func (r *Repository) UpdateStage(runID uint, stage entities.SyncStage) error {
	return r.db.Model(&entities.SyncRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"stage":      stage,
			"updated_at": time.Now(),
		}).Error
}

// CompleteRun stores the terminal stage and counters of a run.
func (r *Repository) CompleteRun(runID uint, stage entities.SyncStage, summary entities.SyncSummary, transactionID, errMsg string) error {
	var run entities.SyncRun
	if err := r.db.First(&run, runID).Error; err != nil {
		return err
	}

	now := time.Now()
	run.ApplySummary(summary)
	run.Stage = stage
	run.TransactionID = transactionID
	run.Error = errMsg
	run.UpdatedAt = now
	run.CompletedAt = &now

	return r.db.Save(&run).Error
}

// GetRun returns a single run by id.
func (r *Repository) GetRun(runID uint) (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := r.db.First(&run, runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LatestRun returns the most recently started run, or nil when none exist.
func (r *Repository) LatestRun() (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := r.db.Order("started_at DESC, id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the newest runs first.
func (r *Repository) ListRuns(limit int) ([]entities.SyncRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	runs := []entities.SyncRun{}
	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// IsRunActive reports whether another process has a run in progress. Open
// runs not updated within StaleAfter are closed as interrupted.
func (r *Repository) IsRunActive() (bool, error) {
	var run entities.SyncRun
	err := r.db.Where("stage IN ?", openStages).Order("updated_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if run.UpdatedAt.Before(time.Now().Add(-StaleAfter)) {
		_, _ = r.failOpenRuns(time.Now().Add(-StaleAfter))
		return false, nil
	}
	return true, nil
}

// FailInterruptedRuns closes every run left open by a previous process. A
// run that died while committing is marked commit_failed, any earlier stage
// fetch_failed. It returns the number of runs closed.
func (r *Repository) FailInterruptedRuns() (int64, error) {
	return r.failOpenRuns(time.Time{})
}

// failOpenRuns closes open runs last updated before cutoff. A zero cutoff
// closes all of them.
func (r *Repository) failOpenRuns(cutoff time.Time) (int64, error) {
	var total int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, stage := range openStages {
			terminal := entities.SyncStageFetchFailed
			if stage == entities.SyncStageCommitting {
				terminal = entities.SyncStageCommitFailed
			}
			query := tx.Model(&entities.SyncRun{}).Where("stage = ?", stage)
			if !cutoff.IsZero() {
				query = query.Where("updated_at < ?", cutoff)
			}
			result := query.Updates(map[string]any{
					"stage":        terminal,
					"error":        InterruptedMessage,
					"updated_at":   now,
					"completed_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			total += result.RowsAffected
		}
		return nil
	})
	return total, err
}

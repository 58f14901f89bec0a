package entities

import (
	"time"
)

// SyncStage is a state of the sync run state machine.
type SyncStage string

const (
	SyncStageFetchingShelf   SyncStage = "fetching_shelf"
	SyncStageFetchingStore   SyncStage = "fetching_store"
	SyncStageReconciling     SyncStage = "reconciling"
	SyncStageProcessingBooks SyncStage = "processing_books"
	SyncStageCommitting      SyncStage = "committing"
	SyncStageDone            SyncStage = "done"

	SyncStageFetchFailed  SyncStage = "fetch_failed"
	SyncStageCommitFailed SyncStage = "commit_failed"
)

// Terminal reports whether no further transitions follow this stage.
func (s SyncStage) Terminal() bool {
	switch s {
	case SyncStageDone, SyncStageFetchFailed, SyncStageCommitFailed:
		return true
	}
	return false
}

// Failed reports whether the stage is a terminal failure.
func (s SyncStage) Failed() bool {
	return s == SyncStageFetchFailed || s == SyncStageCommitFailed
}

// SyncSummary counts what a run decided and staged.
type SyncSummary struct {
	ShelfBooks    int `json:"shelf_books"`
	StoreRecords  int `json:"store_records"`
	Created       int `json:"created"`
	Patched       int `json:"patched"`
	Deleted       int `json:"deleted"`
	Skipped       int `json:"skipped"`
	CoverFailures int `json:"cover_failures"`
	Operations    int `json:"operations"`
}

// SyncRun is the persisted history entry of one sync run.
type SyncRun struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Shelf         string     `gorm:"size:100;index" json:"shelf"`
	Stage         SyncStage  `gorm:"size:30;index" json:"stage"`
	ShelfBooks    int        `json:"shelf_books"`
	StoreRecords  int        `json:"store_records"`
	Created       int        `json:"created"`
	Patched       int        `json:"patched"`
	Deleted       int        `json:"deleted"`
	Skipped       int        `json:"skipped"`
	CoverFailures int        `json:"cover_failures"`
	Operations    int        `json:"operations"`
	TransactionID string     `gorm:"size:100" json:"transaction_id,omitempty"`
	Error         string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// ApplySummary copies the counters of s onto the run.
func (r *SyncRun) ApplySummary(s SyncSummary) {
	r.ShelfBooks = s.ShelfBooks
	r.StoreRecords = s.StoreRecords
	r.Created = s.Created
	r.Patched = s.Patched
	r.Deleted = s.Deleted
	r.Skipped = s.Skipped
	r.CoverFailures = s.CoverFailures
	r.Operations = s.Operations
}

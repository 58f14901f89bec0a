package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/shelfsync/internal/entities"
	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

// This file consolidates the interfaces HTTP controllers depend on.
// Each controller takes only what it uses so tests can pass small fakes.

// ShelfSyncer runs shelf syncs.
type ShelfSyncer interface {
	Run(ctx context.Context, userID, shelf string) (*shelfsync.Result, error)
	IsRunning() bool
}

// RunHistory reads recorded sync runs.
type RunHistory interface {
	GetRun(runID uint) (*entities.SyncRun, error)
	LatestRun() (*entities.SyncRun, error)
	ListRuns(limit int) ([]entities.SyncRun, error)
}

// SyncEnqueuer queues a sync as a background task.
type SyncEnqueuer interface {
	EnqueueSync(ctx context.Context, userID, shelf string) (string, error)
}

// TaskStatusReader reports background task status.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ShelfReader lists the books on a Goodreads shelf.
type ShelfReader interface {
	FetchShelf(ctx context.Context, userID, shelf string) ([]entities.ShelfBook, error)
}

// BooksQuerier runs read queries against the content store.
type BooksQuerier = shelfsync.Querier

// AuditLister lists the audit files of committed syncs.
type AuditLister interface {
	List() ([]string, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping() error
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

const SyncShelfQueue = "sync_shelf"

// SyncShelfTask runs one shelf sync in the background.
type SyncShelfTask struct {
	UserID string `json:"user_id"`
	Shelf  string `json:"shelf"`
}

// Config returns the queue configuration for sync tasks. A failed sync is
// never retried; the next trigger starts from a fresh fetch.
func (t SyncShelfTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        SyncShelfQueue,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ShelfRunner runs a sync to completion.
type ShelfRunner interface {
	Run(ctx context.Context, userID, shelf string) (*shelfsync.Result, error)
}

// SyncShelfProcessor creates a processor function for SyncShelfTask.
// A task that finds another sync in progress succeeds without doing work.
func SyncShelfProcessor(runner ShelfRunner) backlite.QueueProcessor[SyncShelfTask] {
	return func(ctx context.Context, task SyncShelfTask) error {
		if runner == nil {
			return fmt.Errorf("syncer not configured")
		}

		result, err := runner.Run(ctx, task.UserID, task.Shelf)
		if errors.Is(err, shelfsync.ErrSyncInProgress) {
			log.Info().Str("shelf", task.Shelf).Msg("sync already in progress, dropping queued run")
			return nil
		}
		if err != nil {
			return fmt.Errorf("sync shelf %s: %w", task.Shelf, err)
		}

		log.Info().
			Str("shelf", task.Shelf).
			Int("operations", result.Operations).
			Msg(result.Message())
		return nil
	}
}

// NewSyncShelfQueue creates a backlite queue for shelf sync tasks.
func NewSyncShelfQueue(runner ShelfRunner) backlite.Queue {
	return backlite.NewQueue(SyncShelfProcessor(runner))
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

// DefaultSchedule runs a sync every six hours.
const DefaultSchedule = "0 */6 * * *"

// ErrNotRunning is returned by RunNow when the scheduler was never started.
var ErrNotRunning = errors.New("shelf sync scheduler is not running")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ShelfRunner runs a sync to completion.
type ShelfRunner interface {
	Run(ctx context.Context, userID, shelf string) (*shelfsync.Result, error)
}

// Config controls the periodic shelf sync.
type Config struct {
	Enabled  bool
	Schedule string
	UserID   string
	Shelf    string
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("schedule is empty")
	}
	_, err := cronParser.Parse(schedule)
	return err
}

// ShelfSyncScheduler runs the shelf sync on a cron schedule.
type ShelfSyncScheduler struct {
	runner ShelfRunner
	config Config

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	runCtx     context.Context
}

// NewShelfSyncScheduler creates a new scheduler instance
func NewShelfSyncScheduler(runner ShelfRunner, config Config) *ShelfSyncScheduler {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	return &ShelfSyncScheduler{
		runner: runner,
		config: config,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if it is enabled and fully configured.
func (s *ShelfSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Info().Msg("shelf sync scheduler: disabled")
		return nil
	}

	if s.config.UserID == "" || s.config.Shelf == "" {
		log.Warn().Msg("shelf sync scheduler: user id or shelf not configured, skipping")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)
	s.runCtx = cancelCtx

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSync(cancelCtx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.config.Schedule).
		Str("shelf", s.config.Shelf).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("shelf sync scheduler: started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *ShelfSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	s.cancelFunc()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	s.cancelFunc = nil

	log.Info().Msg("shelf sync scheduler: stopped")
}

// RunNow triggers an immediate sync in the background.
func (s *ShelfSyncScheduler) RunNow() error {
	s.mu.RLock()
	running, ctx := s.isRunning, s.runCtx
	s.mu.RUnlock()

	if !running {
		return ErrNotRunning
	}
	go s.runSync(ctx)
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *ShelfSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sync will occur, or nil when stopped.
func (s *ShelfSyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *ShelfSyncScheduler) runSync(ctx context.Context) {
	log.Info().Str("shelf", s.config.Shelf).Msg("shelf sync scheduler: starting scheduled sync")

	result, err := s.runner.Run(ctx, s.config.UserID, s.config.Shelf)
	if errors.Is(err, shelfsync.ErrSyncInProgress) {
		log.Info().Msg("shelf sync scheduler: sync already in progress, skipping")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("shelf sync scheduler: sync failed")
		return
	}

	log.Info().Int("operations", result.Operations).Msg("shelf sync scheduler: " + result.Message())
}

package shelfsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/mrlokans/shelfsync/internal/entities"
	"github.com/mrlokans/shelfsync/internal/sanity"
)

const (
	MessageSynced    = "Books synced successfully."
	MessageNoChanges = "Sync complete. No changes were needed."
)

// ErrSyncInProgress is returned when a run is requested while another one is active.
var ErrSyncInProgress = errors.New("a shelf sync is already in progress")

// ShelfSource lists the books of a shelf.
type ShelfSource interface {
	FetchShelf(ctx context.Context, userID, shelf string) ([]entities.ShelfBook, error)
}

// CoverResolver finds a cover URL for a book, returning "" when there is none.
type CoverResolver interface {
	Resolve(ctx context.Context, book entities.ShelfBook) string
}

// ImageDownloader fetches image bytes.
type ImageDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// RunRecorder persists the progress of sync runs.
type RunRecorder interface {
	StartRun(shelf string) (uint, error)
	UpdateStage(runID uint, stage entities.SyncStage) error
	CompleteRun(runID uint, stage entities.SyncStage, summary entities.SyncSummary, transactionID, errMsg string) error
}

// Auditor keeps a copy of committed transactions.
type Auditor interface {
	SaveJSON(data any) (string, error)
}

// RunError is a terminal failure of a sync run.
type RunError struct {
	Stage entities.SyncStage
	Err   error
}

func (e *RunError) Error() string {
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Result summarizes a finished run.
type Result struct {
	entities.SyncSummary
	Committed     bool   `json:"committed"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Message is the human readable outcome returned to the caller.
func (r *Result) Message() string {
	if !r.Committed {
		return MessageNoChanges
	}
	return MessageSynced
}

// Syncer reconciles a Goodreads shelf into the content store.
type Syncer struct {
	shelf  ShelfSource
	store  ContentStore
	covers CoverResolver
	images ImageDownloader

	recorder RunRecorder
	auditor  Auditor
	workers  int

	mu      sync.Mutex
	running bool
}

// NewSyncer creates a Syncer. Every per-book task runs in its own goroutine
// unless SetWorkers bounds the pool.
func NewSyncer(shelf ShelfSource, store ContentStore, covers CoverResolver, images ImageDownloader) *Syncer {
	return &Syncer{
		shelf:  shelf,
		store:  store,
		covers: covers,
		images: images,
	}
}

// SetRunRecorder sets the run history recorder (optional).
func (s *Syncer) SetRunRecorder(r RunRecorder) {
	s.recorder = r
}

// SetAuditor sets the transaction auditor (optional).
func (s *Syncer) SetAuditor(a Auditor) {
	s.auditor = a
}

// SetWorkers bounds the number of books processed at once. Zero or less
// means no bound.
func (s *Syncer) SetWorkers(n int) {
	s.workers = n
}

// IsRunning reports whether a run is in progress.
func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Preview fetches both sides and returns the reconciliation plan without
// touching the store.
func (s *Syncer) Preview(ctx context.Context, userID, shelf string) (*Plan, error) {
	books, err := s.shelf.FetchShelf(ctx, userID, shelf)
	if err != nil {
		return nil, &RunError{Stage: entities.SyncStageFetchFailed, Err: fmt.Errorf("fetch shelf: %w", err)}
	}
	index, err := Mirror(ctx, s.store)
	if err != nil {
		return nil, &RunError{Stage: entities.SyncStageFetchFailed, Err: err}
	}
	plan := Reconcile(books, index)
	return &plan, nil
}

// Run performs one full sync of the shelf. Only a failure to read the shelf
// or the store, or a rejected commit, fails the run; per-book cover problems
// are logged and the book is staged without a cover.
func (s *Syncer) Run(ctx context.Context, userID, shelf string) (*Result, error) {
	if !s.tryStart() {
		return nil, ErrSyncInProgress
	}
	defer s.finish()

	started := time.Now()
	run := s.startRun(shelf)
	result := &Result{}

	run.stage(entities.SyncStageFetchingShelf)
	books, err := s.shelf.FetchShelf(ctx, userID, shelf)
	if err != nil {
		return nil, run.fail(entities.SyncStageFetchFailed, result.SyncSummary, fmt.Errorf("fetch shelf: %w", err))
	}
	result.ShelfBooks = len(books)
	log.Info().Str("shelf", shelf).Int("books", len(books)).Msg("fetched shelf")

	run.stage(entities.SyncStageFetchingStore)
	index, err := Mirror(ctx, s.store)
	if err != nil {
		return nil, run.fail(entities.SyncStageFetchFailed, result.SyncSummary, err)
	}
	result.StoreRecords = index.Len()
	log.Info().Int("records", index.Len()).Msg("fetched store records")

	run.stage(entities.SyncStageReconciling)
	plan := Reconcile(books, index)

	tx := sanity.NewTransaction(s.store)
	for _, rec := range plan.Deletes {
		log.Info().Str("id", rec.ID).Str("title", rec.Title).Msg("deleting book no longer on shelf")
		tx.Delete(rec.ID)
	}
	result.Deleted = len(plan.Deletes)

	run.stage(entities.SyncStageProcessingBooks)
	for _, outcome := range s.processAll(ctx, plan.Decisions, tx) {
		switch outcome.action {
		case ActionCreate:
			result.Created++
		case ActionPatch:
			result.Patched++
		default:
			result.Skipped++
		}
		if outcome.coverFailed {
			result.CoverFailures++
		}
	}
	result.Operations = tx.Len()

	if tx.Len() == 0 {
		log.Info().Dur("took", time.Since(started)).Msg(MessageNoChanges)
		run.complete(result.SyncSummary, "")
		return result, nil
	}

	run.stage(entities.SyncStageCommitting)
	committed, err := tx.Commit(ctx)
	if err != nil {
		return nil, run.fail(entities.SyncStageCommitFailed, result.SyncSummary, fmt.Errorf("commit transaction: %w", err))
	}
	result.Committed = true
	result.TransactionID = committed.TransactionID

	s.audit(shelf, result, tx.Mutations())
	run.complete(result.SyncSummary, result.TransactionID)

	log.Info().
		Int("operations", result.Operations).
		Int("created", result.Created).
		Int("patched", result.Patched).
		Int("deleted", result.Deleted).
		Dur("took", time.Since(started)).
		Msg(MessageSynced)
	return result, nil
}

type bookOutcome struct {
	action      Action
	coverFailed bool
}

// processAll runs every non-skipped decision and waits for all of them to
// settle. A failing or panicking book never cancels its siblings.
func (s *Syncer) processAll(ctx context.Context, decisions []Decision, tx *sanity.Transaction) []bookOutcome {
	p := pool.NewWithResults[bookOutcome]()
	if s.workers > 0 {
		p = p.WithMaxGoroutines(s.workers)
	}

	var outcomes []bookOutcome
	for _, d := range decisions {
		if d.Action == ActionSkip {
			outcomes = append(outcomes, bookOutcome{action: ActionSkip})
			continue
		}
		p.Go(func() bookOutcome {
			return s.processBookSafely(ctx, d, tx)
		})
	}
	return append(outcomes, p.Wait()...)
}

// processBookSafely keeps a panic outside cover handling from taking down
// the pool. Cover panics are already handled in attachCover.
func (s *Syncer) processBookSafely(ctx context.Context, d Decision, tx *sanity.Transaction) (outcome bookOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("title", d.Book.Title).Interface("panic", r).Msg("book processing panicked")
			outcome = bookOutcome{action: ActionSkip, coverFailed: d.NeedsCover()}
		}
	}()
	return s.processBook(ctx, d, tx)
}

func (s *Syncer) processBook(ctx context.Context, d Decision, tx *sanity.Transaction) bookOutcome {
	var outcome bookOutcome

	var assetID string
	if d.NeedsCover() {
		var err error
		assetID, err = s.attachCover(ctx, d.Book)
		if err != nil {
			outcome.coverFailed = true
			log.Error().Err(err).Str("title", d.Book.Title).Msg("failed to process cover")
		}
	}

	switch d.Action {
	case ActionCreate:
		tx.Create(newDocument(d.Book, assetID))
		outcome.action = ActionCreate
	case ActionPatch:
		set := patchFields(d, assetID)
		if len(set) == 0 {
			outcome.action = ActionSkip
			return outcome
		}
		tx.Patch(d.Existing.ID, set)
		outcome.action = ActionPatch
	default:
		outcome.action = ActionSkip
	}
	return outcome
}

// attachCover resolves, downloads and uploads a cover, returning the asset id
// or "" when no cover could be found. A panic in any of those steps is
// returned as an error so the book is still staged without a cover.
func (s *Syncer) attachCover(ctx context.Context, book entities.ShelfBook) (assetID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			assetID, err = "", fmt.Errorf("cover processing panicked: %v", r)
		}
	}()

	if s.covers == nil || s.images == nil {
		return "", nil
	}

	coverURL := s.covers.Resolve(ctx, book)
	if coverURL == "" {
		return "", nil
	}

	data, err := s.images.Download(ctx, coverURL)
	if err != nil {
		return "", fmt.Errorf("download cover: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	asset, err := s.store.UploadImage(ctx, data, coverFilename(book.Title))
	if err != nil {
		return "", fmt.Errorf("upload cover: %w", err)
	}
	return asset.ID, nil
}

func (s *Syncer) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Syncer) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

type auditRecord struct {
	Shelf         string               `json:"shelf"`
	CommittedAt   time.Time            `json:"committed_at"`
	TransactionID string               `json:"transaction_id"`
	Summary       entities.SyncSummary `json:"summary"`
	Mutations     []sanity.Mutation    `json:"mutations"`
}

func (s *Syncer) audit(shelf string, result *Result, mutations []sanity.Mutation) {
	if s.auditor == nil {
		return
	}
	filename, err := s.auditor.SaveJSON(auditRecord{
		Shelf:         shelf,
		CommittedAt:   time.Now(),
		TransactionID: result.TransactionID,
		Summary:       result.SyncSummary,
		Mutations:     mutations,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to save sync audit record")
		return
	}
	log.Debug().Str("file", filename).Msg("saved sync audit record")
}

// runTracker forwards stage transitions to the recorder. Recorder failures
// are logged and never affect the run.
type runTracker struct {
	recorder RunRecorder
	id       uint
}

func (s *Syncer) startRun(shelf string) *runTracker {
	t := &runTracker{recorder: s.recorder}
	if t.recorder == nil {
		return t
	}
	id, err := t.recorder.StartRun(shelf)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record sync run start")
		t.recorder = nil
		return t
	}
	t.id = id
	return t
}

func (t *runTracker) stage(stage entities.SyncStage) {
	log.Debug().Str("stage", string(stage)).Msg("sync stage")
	if t.recorder == nil {
		return
	}
	if err := t.recorder.UpdateStage(t.id, stage); err != nil {
		log.Warn().Err(err).Str("stage", string(stage)).Msg("failed to record sync stage")
	}
}

func (t *runTracker) complete(summary entities.SyncSummary, transactionID string) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.CompleteRun(t.id, entities.SyncStageDone, summary, transactionID, ""); err != nil {
		log.Warn().Err(err).Msg("failed to record sync completion")
	}
}

func (t *runTracker) fail(stage entities.SyncStage, summary entities.SyncSummary, err error) error {
	log.Error().Err(err).Str("stage", string(stage)).Msg("sync run failed")
	if t.recorder != nil {
		if recErr := t.recorder.CompleteRun(t.id, stage, summary, "", err.Error()); recErr != nil {
			log.Warn().Err(recErr).Msg("failed to record sync failure")
		}
	}
	return &RunError{Stage: stage, Err: err}
}

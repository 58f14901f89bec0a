package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/shelfsync/internal/audit"
	"github.com/mrlokans/shelfsync/internal/cli"
	"github.com/mrlokans/shelfsync/internal/covers"
	"github.com/mrlokans/shelfsync/internal/database"
	"github.com/mrlokans/shelfsync/internal/database/runs"
	"github.com/mrlokans/shelfsync/internal/goodreads"
	"github.com/mrlokans/shelfsync/internal/http"
	"github.com/mrlokans/shelfsync/internal/metadata"
	"github.com/mrlokans/shelfsync/internal/sanity"
	"github.com/mrlokans/shelfsync/internal/scheduler"
	"github.com/mrlokans/shelfsync/internal/shelfsync"
	"github.com/mrlokans/shelfsync/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Run history
var _ shelfsync.RunRecorder = (*runs.Repository)(nil)
var _ http.RunHistory = (*runs.Repository)(nil)
var _ cli.ActiveRunChecker = (*runs.Repository)(nil)

var _ http.HealthChecker = (*database.Database)(nil)

var _ shelfsync.Auditor = (*audit.Auditor)(nil)
var _ http.AuditLister = (*audit.Auditor)(nil)

// =============================================================================
// External Services
// =============================================================================

// Content store
var _ shelfsync.ContentStore = (*sanity.Client)(nil)
var _ sanity.Mutator = (*sanity.Client)(nil)
var _ http.BooksQuerier = (*sanity.Client)(nil)

// Goodreads
var _ shelfsync.ShelfSource = (*goodreads.Client)(nil)
var _ http.ShelfReader = (*goodreads.Client)(nil)

// Covers
var _ covers.ImageSearcher = (*metadata.GoogleBooksClient)(nil)
var _ covers.Strategy = covers.FeedCover{}
var _ covers.Strategy = (*covers.TitleSearch)(nil)
var _ shelfsync.CoverResolver = (*covers.Resolver)(nil)
var _ shelfsync.ImageDownloader = (*covers.Downloader)(nil)

// =============================================================================
// Sync Triggers
// =============================================================================

var _ http.ShelfSyncer = (*shelfsync.Syncer)(nil)
var _ cli.ShelfRunner = (*shelfsync.Syncer)(nil)
var _ tasks.ShelfRunner = (*shelfsync.Syncer)(nil)
var _ scheduler.ShelfRunner = (*shelfsync.Syncer)(nil)

var _ http.SyncEnqueuer = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)

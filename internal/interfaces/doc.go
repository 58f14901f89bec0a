// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces are declared by the package that consumes them, so each
// consumer only depends on the methods it calls. This package ties the
// concrete implementations back to those interfaces.
//
// # Interface Categories
//
// ## Sync Pipeline Interfaces (internal/shelfsync/syncer.go, store.go)
//
//   - ShelfSource: Reads a Goodreads shelf (goodreads.Client)
//   - ContentStore: Queries, uploads and mutates the content store (sanity.Client)
//   - CoverResolver: Finds a cover URL for a book (covers.Resolver)
//   - ImageDownloader: Fetches cover bytes (covers.Downloader)
//   - RunRecorder: Persists run stages and summaries (runs.Repository)
//   - Auditor: Writes the per-run audit trail (audit.Auditor)
//
// ## HTTP Interfaces (internal/http/stores.go)
//
//   - ShelfSyncer, RunHistory, SyncEnqueuer, TaskStatusReader
//   - ShelfReader, BooksQuerier, HealthChecker
//
// ## Background Interfaces
//
//   - tasks.ShelfRunner: Runs a queued sync task
//   - scheduler.ShelfRunner: Runs a scheduled sync
//
// # Adding a New Cover Source
//
// Cover lookup is an ordered chain of strategies. To add one:
//
//  1. Implement covers.Strategy in internal/covers/
//
//     type OpenLibraryCover struct {
//         httpClient *http.Client
//     }
//
//     func (s *OpenLibraryCover) Name() string { return "open_library" }
//     func (s *OpenLibraryCover) Find(ctx context.Context, book entities.ShelfBook) string
//
//     var _ covers.Strategy = (*OpenLibraryCover)(nil)
//
//  2. Pass it to covers.NewResolver in the order it should be tried
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces

package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Syncer   ShelfSyncer
	Shelf    ShelfReader
	Books    BooksQuerier
	Database HealthChecker

	// Run history and audit trail (optional)
	RunHistory RunHistory
	AuditLog   AuditLister

	// Task queue (optional)
	TaskEnqueuer SyncEnqueuer
	TaskStatus   TaskStatusReader

	// Goodreads account and default shelf
	GoodreadsUserID string
	DefaultShelf    string

	// Amazon affiliate tag for /api/shelf links
	AffiliateTag string

	// Application info
	Version string
}

package config

const (
	// DefaultDatabasePath is the default path for the run history database
	DefaultDatabasePath = "./shelfsync.db"

	// DefaultShelf is the Goodreads shelf synced when none is configured
	DefaultShelf = "read"

	DefaultSanityDataset    = "production"
	DefaultSanityAPIVersion = "2023-05-03"
)

package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Goodreads
		Covers
		Sanity
		Sync
		Database
		Audit
		Logging
		Tasks
		Affiliate
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Goodreads struct {
		UserID string
		Shelf  string
	}
	Covers struct {
		GoogleBooksAPIKey string
		SearchTimeout     time.Duration
	}
	Sanity struct {
		ProjectID  string
		Dataset    string
		Token      string
		APIVersion string
	}
	Sync struct {
		Workers         int
		ScheduleEnabled bool
		Schedule        string // Cron format: "0 */6 * * *" = every 6 hours
		RunOnStart      bool   // Also sync once right after the scheduler starts
	}
	Database struct {
		Path string
	}
	Audit struct {
		Dir string // Empty disables the audit trail
	}
	Logging struct {
		Level  string
		File   string
		Pretty bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Affiliate struct {
		AmazonTag string // Appended to Amazon search links on /api/shelf
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("goodreads_user_id", "")
	v.SetDefault("goodreads_shelf", DefaultShelf)
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("cover_search_timeout", "8s")

	v.SetDefault("sanity_project_id", "")
	v.SetDefault("sanity_dataset", DefaultSanityDataset)
	v.SetDefault("sanity_api_token", "")
	v.SetDefault("sanity_api_version", DefaultSanityAPIVersion)

	v.SetDefault("sync_workers", 0) // 0 = one goroutine per book
	v.SetDefault("sync_schedule_enabled", false)
	v.SetDefault("sync_schedule", "0 */6 * * *")
	v.SetDefault("sync_run_on_start", false)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_pretty", false)
	v.SetDefault("amazon_affiliate_tag", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Goodreads: Goodreads{
			UserID: v.GetString("GOODREADS_USER_ID"),
			Shelf:  v.GetString("GOODREADS_SHELF"),
		},
		Covers: Covers{
			GoogleBooksAPIKey: v.GetString("GOOGLE_BOOKS_API_KEY"),
			SearchTimeout:     v.GetDuration("COVER_SEARCH_TIMEOUT"),
		},
		Sanity: Sanity{
			ProjectID:  v.GetString("SANITY_PROJECT_ID"),
			Dataset:    v.GetString("SANITY_DATASET"),
			Token:      v.GetString("SANITY_API_TOKEN"),
			APIVersion: v.GetString("SANITY_API_VERSION"),
		},
		Sync: Sync{
			Workers:         v.GetInt("SYNC_WORKERS"),
			ScheduleEnabled: v.GetBool("SYNC_SCHEDULE_ENABLED"),
			Schedule:        v.GetString("SYNC_SCHEDULE"),
			RunOnStart:      v.GetBool("SYNC_RUN_ON_START"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			File:   v.GetString("LOG_FILE"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Affiliate: Affiliate{
			AmazonTag: v.GetString("AMAZON_AFFILIATE_TAG"),
		},
	}
}

package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/audit"
	"github.com/mrlokans/shelfsync/internal/config"
	"github.com/mrlokans/shelfsync/internal/covers"
	"github.com/mrlokans/shelfsync/internal/database"
	"github.com/mrlokans/shelfsync/internal/database/runs"
	"github.com/mrlokans/shelfsync/internal/goodreads"
	http_controllers "github.com/mrlokans/shelfsync/internal/http"
	"github.com/mrlokans/shelfsync/internal/logging"
	"github.com/mrlokans/shelfsync/internal/metadata"
	"github.com/mrlokans/shelfsync/internal/sanity"
	"github.com/mrlokans/shelfsync/internal/scheduler"
	"github.com/mrlokans/shelfsync/internal/shelfsync"
	"github.com/mrlokans/shelfsync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// SyncComponents are the clients a sync run is built from.
type SyncComponents struct {
	Syncer *shelfsync.Syncer
	Store  *sanity.Client
	Shelf  *goodreads.Client
}

// BuildSyncer creates the external clients once and wires them into a
// Syncer. recorder and auditor are optional.
func BuildSyncer(cfg *config.Config, recorder shelfsync.RunRecorder, auditor *audit.Auditor) (*SyncComponents, error) {
	store, err := sanity.NewClient(sanity.Config{
		ProjectID:  cfg.Sanity.ProjectID,
		Dataset:    cfg.Sanity.Dataset,
		Token:      cfg.Sanity.Token,
		APIVersion: cfg.Sanity.APIVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("sanity client: %w", err)
	}
	if cfg.Sanity.Token == "" {
		log.Warn().Msg("SANITY_API_TOKEN is not set, mutations will be rejected")
	}

	shelf := goodreads.NewClient()
	resolver := covers.NewDefaultResolver(
		metadata.NewGoogleBooksClient(cfg.Covers.GoogleBooksAPIKey),
		cfg.Covers.SearchTimeout,
	)

	syncer := shelfsync.NewSyncer(shelf, store, resolver, covers.NewDownloader())
	syncer.SetWorkers(cfg.Sync.Workers)
	if recorder != nil {
		syncer.SetRunRecorder(recorder)
	}
	if auditor != nil {
		syncer.SetAuditor(auditor)
	}

	return &SyncComponents{Syncer: syncer, Store: store, Shelf: shelf}, nil
}

// NewAuditor returns the audit trail writer, or nil when AUDIT_DIR is empty.
func NewAuditor(cfg *config.Config) *audit.Auditor {
	if cfg.Audit.Dir == "" {
		return nil
	}
	return audit.NewAuditor(cfg.Audit.Dir)
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no new sync starts mid-shutdown
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("server exiting")
}

func Run(cfg *config.Config, version string) {
	logCloser := logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
		Pretty: cfg.Logging.Pretty,
	})
	defer logCloser.Close()

	log.Info().Str("version", version).Msg("starting shelfsync")

	if cfg.Goodreads.UserID == "" {
		log.Warn().Msg("GOODREADS_USER_ID is not set, sync requests will be rejected")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	runsRepo := runs.NewRepository(db.DB)
	if closed, err := runsRepo.FailInterruptedRuns(); err != nil {
		log.Warn().Err(err).Msg("failed to close interrupted runs")
	} else if closed > 0 {
		log.Warn().Int64("runs", closed).Msg("closed runs interrupted by a previous shutdown")
	}

	auditor := NewAuditor(cfg)
	components, err := BuildSyncer(cfg, runsRepo, auditor)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure sync")
	}

	routerCfg := http_controllers.RouterConfig{
		Syncer:          components.Syncer,
		Shelf:           components.Shelf,
		Books:           components.Store,
		Database:        db,
		RunHistory:      runsRepo,
		GoodreadsUserID: cfg.Goodreads.UserID,
		DefaultShelf:    cfg.Goodreads.Shelf,
		AffiliateTag:    cfg.Affiliate.AmazonTag,
		Version:         version,
	}
	if auditor != nil {
		routerCfg.AuditLog = auditor
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(tasks.NewSyncShelfQueue(components.Syncer))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.TaskEnqueuer = taskClient
		routerCfg.TaskStatus = taskClient
	}

	// Periodic sync
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	syncScheduler := scheduler.NewShelfSyncScheduler(components.Syncer, scheduler.Config{
		Enabled:  cfg.Sync.ScheduleEnabled,
		Schedule: cfg.Sync.Schedule,
		UserID:   cfg.Goodreads.UserID,
		Shelf:    cfg.Goodreads.Shelf,
	})
	if err := syncScheduler.Start(schedulerCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to start sync scheduler")
	}
	if cfg.Sync.RunOnStart {
		if err := syncScheduler.RunNow(); err != nil {
			log.Warn().Err(err).Msg("SYNC_RUN_ON_START is set but the scheduler is not running")
		}
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/shelfsync/internal/config"
	"github.com/mrlokans/shelfsync/internal/database"
	"github.com/mrlokans/shelfsync/internal/database/runs"
	"github.com/mrlokans/shelfsync/internal/entrypoint"
	"github.com/mrlokans/shelfsync/internal/logging"
	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

// ErrRunActive is returned when another process is already syncing.
var ErrRunActive = errors.New("another sync run is in progress")

// ShelfRunner is the part of the syncer the command drives.
type ShelfRunner interface {
	Run(ctx context.Context, userID, shelf string) (*shelfsync.Result, error)
	Preview(ctx context.Context, userID, shelf string) (*shelfsync.Plan, error)
}

// ActiveRunChecker reports whether a run recorded by another process is open.
type ActiveRunChecker interface {
	IsRunActive() (bool, error)
}

// SyncCommand runs a single shelf sync from the command line.
type SyncCommand struct {
	UserID  string
	Shelf   string
	DBPath  string
	DryRun  bool
	Verbose bool

	out io.Writer
}

func NewSyncCommand() *SyncCommand {
	return &SyncCommand{out: os.Stdout}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.UserID, "user", "", "Goodreads user ID (default: GOODREADS_USER_ID)")
	fs.StringVar(&cmd.Shelf, "shelf", "", "Goodreads shelf to sync (default: GOODREADS_SHELF or \"read\")")
	fs.StringVar(&cmd.DBPath, "db", "", "Path to the run history database (default: DATABASE_PATH)")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would change without writing to the content store")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sync a Goodreads shelf into the Sanity content store.\n\n")
		fmt.Fprintf(os.Stderr, "Sanity credentials are read from SANITY_PROJECT_ID, SANITY_DATASET\n")
		fmt.Fprintf(os.Stderr, "and SANITY_API_TOKEN.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -user 12345678\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -user 12345678 -shelf to-read -dry-run\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SyncCommand) Run() error {
	cfg := config.NewConfig()
	cmd.applyDefaults(cfg)

	level := cfg.Logging.Level
	if cmd.Verbose {
		level = "debug"
	}
	logCloser := logging.Setup(logging.Config{Level: level, File: cfg.Logging.File, Pretty: true})
	defer logCloser.Close()

	if cmd.UserID == "" {
		return fmt.Errorf("a Goodreads user ID is required: pass -user or set GOODREADS_USER_ID")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	runsRepo := runs.NewRepository(db.DB)

	components, err := entrypoint.BuildSyncer(cfg, runsRepo, entrypoint.NewAuditor(cfg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cmd.execute(ctx, components.Syncer, runsRepo)
}

func (cmd *SyncCommand) applyDefaults(cfg *config.Config) {
	if cmd.UserID == "" {
		cmd.UserID = cfg.Goodreads.UserID
	}
	if cmd.Shelf == "" {
		cmd.Shelf = cfg.Goodreads.Shelf
	}
	if cmd.Shelf == "" {
		cmd.Shelf = config.DefaultShelf
	}
	if cmd.DBPath != "" {
		cfg.Database.Path = cmd.DBPath
	}
}

func (cmd *SyncCommand) execute(ctx context.Context, runner ShelfRunner, active ActiveRunChecker) error {
	if cmd.out == nil {
		cmd.out = os.Stdout
	}

	fmt.Fprintf(cmd.out, "Shelf Sync: %s/%s\n", cmd.UserID, cmd.Shelf)
	fmt.Fprintln(cmd.out, "==========")

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "DRY RUN MODE - No changes will be made")
		fmt.Fprintln(cmd.out)
		plan, err := runner.Preview(ctx, cmd.UserID, cmd.Shelf)
		if err != nil {
			return err
		}
		cmd.printPlan(plan)
		return nil
	}

	if active != nil {
		running, err := active.IsRunActive()
		if err != nil {
			return fmt.Errorf("failed to check run history: %w", err)
		}
		if running {
			return ErrRunActive
		}
	}

	result, err := runner.Run(ctx, cmd.UserID, cmd.Shelf)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.out, result.Message())
	fmt.Fprintf(cmd.out, "  Created: %d\n", result.Created)
	fmt.Fprintf(cmd.out, "  Patched: %d\n", result.Patched)
	fmt.Fprintf(cmd.out, "  Deleted: %d\n", result.Deleted)
	fmt.Fprintf(cmd.out, "  Skipped: %d\n", result.Skipped)
	if result.CoverFailures > 0 {
		fmt.Fprintf(cmd.out, "  Cover failures: %d\n", result.CoverFailures)
	}
	if result.TransactionID != "" {
		fmt.Fprintf(cmd.out, "  Transaction: %s\n", result.TransactionID)
	}
	return nil
}

func (cmd *SyncCommand) printPlan(plan *shelfsync.Plan) {
	for _, d := range plan.Decisions {
		if d.Action == shelfsync.ActionSkip {
			continue
		}
		fmt.Fprintf(cmd.out, "  %-6s %s by %s\n", d.Action, d.Book.Title, d.Book.Author)
	}
	for _, rec := range plan.Deletes {
		fmt.Fprintf(cmd.out, "  %-6s %s (%s)\n", "delete", rec.Title, rec.ID)
	}

	fmt.Fprintln(cmd.out)
	fmt.Fprintf(cmd.out, "Would create %d, patch %d, delete %d, skip %d\n",
		plan.Count(shelfsync.ActionCreate),
		plan.Count(shelfsync.ActionPatch),
		len(plan.Deletes),
		plan.Count(shelfsync.ActionSkip),
	)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/coursegate/internal/cache"
	"github.com/alexanderramin/coursegate/internal/cli"
	"github.com/alexanderramin/coursegate/internal/config"
	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/gate"
	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/alexanderramin/coursegate/internal/progress"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/alexanderramin/coursegate/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(os.Getenv("COURSEGATE_ENV_FILE")); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	records := repository.NewSQLiteProgressRepo(database)
	content := repository.NewSQLiteContentRepo(database)
	requirements := repository.NewSQLiteRequirementRepo(database)
	attempts := repository.NewSQLiteAttemptRepo(database)
	submissions := repository.NewSQLiteSubmissionRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	resolvers := progress.NewDefaultRegistry(records, attempts, submissions, progress.Options{
		MediaThreshold:    cfg.MediaThreshold,
		DocumentPromoteAt: cfg.DocumentPromoteAt,
	})
	observer := service.NewLogUseCaseObserver(log.With("component", "service"))

	// Snapshot cache: Redis when configured, process memory otherwise.
	var snapshots scorm.SnapshotCache = cache.NewMemorySnapshotCache(cfg.SnapshotTTL)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisSnapshotCache(context.Background(), cfg.RedisURL, cfg.SnapshotTTL)
		if err != nil {
			return fmt.Errorf("connecting snapshot cache: %w", err)
		}
		defer rc.Close()
		snapshots = rc
	}

	reports := service.NewReportService(content, resolvers, observer)
	app := &cli.App{
		Config:   cfg,
		Log:      log,
		Progress: service.NewProgressService(uow, records, content, resolvers, log, observer),
		Reports:  reports,
		Gates:    service.NewGateService(reports, requirements, gate.NewChecker(attempts, submissions), observer),
		Catalog:  service.NewCatalogService(uow, observer),
		Cache:    snapshots,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

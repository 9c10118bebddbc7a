package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/config"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	var (
		dbURL          string
		migrationsPath string
		direction      string
		steps          int
	)

	flag.StringVar(&dbURL, "db", "", "Database URL (defaults to database.* configuration)")
	flag.StringVar(&migrationsPath, "path", "./migrations", "Path to migrations directory")
	flag.StringVar(&direction, "direction", "up", "Migration direction: up or down")
	flag.IntVar(&steps, "steps", 0, "Number of steps to migrate (0 means all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if dbURL == "" {
		dbURL = cfg.Database.DBConfig().MigrationURL()
	}

	if err := run(dbURL, migrationsPath, direction, steps); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}
}

func run(dbURL, migrationsPath, direction string, steps int) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("invalid direction: %s (must be 'up' or 'down')", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Log.Info("Migration completed successfully (no version)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get migration version: %w", err)
	}

	logger.Log.Info("Migration completed successfully",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

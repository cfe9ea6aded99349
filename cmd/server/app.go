package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kotoba-app/kotoba-api/internal/config"
	"github.com/kotoba-app/kotoba-api/internal/daily"
	"github.com/kotoba-app/kotoba-api/internal/domain/srs"
	"github.com/kotoba-app/kotoba-api/internal/platform/postgres"
	"github.com/kotoba-app/kotoba-api/internal/study"
)

// application holds the wired dependencies for the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore    *postgres.PostgresCardStore
	studyManager *study.Manager
	dailyTracker *daily.Tracker
}

// newApplication connects to the database, runs migrations, and builds the
// dependency graph: stores, the SRS scheduler, the study session manager,
// and the daily tracker.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cardStore := postgres.NewPostgresCardStore(db, log)
	progressStore := postgres.NewPostgresProgressStore(db, log)
	srsService := srs.NewDefaultService()

	studyManager := study.NewManager(cardStore, srsService, study.Options{
		AutoAdvance:     cfg.Study.AutoAdvance,
		ClicksToAdvance: cfg.Study.ClicksToAdvance,
	}, log)

	dailyTracker := daily.NewTracker(cardStore, progressStore, daily.Options{
		TargetWords:  cfg.Study.DailyTarget,
		HistoryLimit: cfg.Study.HistoryRetention,
	}, log)
	if err := dailyTracker.Init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize daily tracker: %w", err)
	}

	return &application{
		config:       cfg,
		logger:       log,
		db:           db,
		cardStore:    cardStore,
		studyManager: studyManager,
		dailyTracker: dailyTracker,
	}, nil
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}

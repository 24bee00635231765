// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/clients/objectstore"
	"github.com/chumjikim/retirement-risk-prediction/internal/config"
	"github.com/chumjikim/retirement-risk-prediction/internal/database"
	"github.com/chumjikim/retirement-risk-prediction/internal/importer"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/evaluation"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/historical"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/predictions"
	"github.com/chumjikim/retirement-risk-prediction/internal/session"
)

// Container holds all wired dependencies.
type Container struct {
	SessionDB         *database.DB
	PredictionRepo    *predictions.Repository
	HistoricalRepo    *historical.Repository
	EvaluationService *evaluation.Service
	Importer          *importer.Service
	SessionManager    *session.Manager
}

// Wire initializes all dependencies and returns a fully configured
// container. Order of operations: session store, repositories, object store
// client (only when a source needs it), services.
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	sessionDB, err := database.New(database.Config{
		Path: cfg.SessionDBPath(),
		Name: "session",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	predictionRepo := predictions.NewRepository(sessionDB.Conn(), log)
	historicalRepo := historical.NewRepository(sessionDB.Conn(), log)

	var fetcher importer.Fetcher
	if objectstore.IsObjectURI(cfg.PredictionsSource) || objectstore.IsObjectURI(cfg.HistorySource) {
		client, err := objectstore.New(ctx, log)
		if err != nil {
			sessionDB.Close()
			return nil, fmt.Errorf("failed to initialize object store client: %w", err)
		}
		fetcher = client
	}

	importerSvc := importer.NewService(importer.Config{
		PredictionsSource: cfg.PredictionsSource,
		HistorySource:     cfg.HistorySource,
		DataDir:           cfg.DataDir,
	}, sessionDB, predictionRepo, historicalRepo, fetcher, log)

	container := &Container{
		SessionDB:         sessionDB,
		PredictionRepo:    predictionRepo,
		HistoricalRepo:    historicalRepo,
		EvaluationService: evaluation.NewService(log),
		Importer:          importerSvc,
		SessionManager:    session.NewManager(log),
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}

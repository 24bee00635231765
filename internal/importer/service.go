package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/clients/objectstore"
	"github.com/chumjikim/retirement-risk-prediction/internal/database"
	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/historical"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/predictions"
)

// Fetcher downloads a remote source object and returns its local path.
// Implemented by objectstore.Client.
type Fetcher interface {
	Fetch(ctx context.Context, uri, destDir string) (string, error)
}

// Config holds the data source locations.
type Config struct {
	PredictionsSource string // local path or s3:// URI
	HistorySource     string // local path or s3:// URI
	DataDir           string // download and snapshot directory
}

// Service loads both sources into the session store. A load is atomic from
// the readers' point of view: both tables are replaced in one transaction.
type Service struct {
	cfg            Config
	db             *database.DB
	predictionRepo *predictions.Repository
	historicalRepo *historical.Repository
	fetcher        Fetcher
	log            zerolog.Logger
}

// NewService creates a new importer service. fetcher may be nil when both
// sources are local paths.
func NewService(
	cfg Config,
	db *database.DB,
	predictionRepo *predictions.Repository,
	historicalRepo *historical.Repository,
	fetcher Fetcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:            cfg,
		db:             db,
		predictionRepo: predictionRepo,
		historicalRepo: historicalRepo,
		fetcher:        fetcher,
		log:            log.With().Str("service", "importer").Logger(),
	}
}

// Load materializes both sources into the session store and returns the
// descriptor of the new session.
func (s *Service) Load(ctx context.Context) (domain.SessionInfo, error) {
	started := time.Now()

	predictionsPath, err := s.resolveSource(ctx, s.cfg.PredictionsSource)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	historyPath, err := s.resolveSource(ctx, s.cfg.HistorySource)
	if err != nil {
		return domain.SessionInfo{}, err
	}

	snapPath := snapshotPath(s.cfg.DataDir)
	remoteSources := objectstore.IsObjectURI(s.cfg.PredictionsSource) ||
		objectstore.IsObjectURI(s.cfg.HistorySource)

	var (
		preds        []domain.EntityPrediction
		indicators   []domain.YearlyIndicator
		rejected     int
		fromSnapshot bool
	)

	if !remoteSources && snapshotIsFresh(snapPath, predictionsPath, historyPath) {
		snap, err := readSnapshot(snapPath)
		if err != nil {
			s.log.Warn().Err(err).Msg("Snapshot unreadable, falling back to CSV parse")
		} else {
			preds = snap.Predictions
			indicators = snap.Indicators
			rejected = snap.Rejected
			fromSnapshot = true
			s.log.Info().Time("saved_at", snap.SavedAt).Msg("Loaded rows from warm-start snapshot")
		}
	}

	if !fromSnapshot {
		var predRejected, histRejected int
		preds, predRejected, err = s.parsePredictions(predictionsPath)
		if err != nil {
			return domain.SessionInfo{}, err
		}
		indicators, histRejected, err = s.parseIndicators(historyPath)
		if err != nil {
			return domain.SessionInfo{}, err
		}
		rejected = predRejected + histRejected

		if err := writeSnapshot(snapPath, snapshot{
			SavedAt:     time.Now(),
			Predictions: preds,
			Indicators:  indicators,
			Rejected:    rejected,
		}); err != nil {
			// Snapshot is an optimization; a failed write never fails a load.
			s.log.Warn().Err(err).Msg("Failed to write warm-start snapshot")
		}
	}

	if err := s.store(preds, indicators); err != nil {
		return domain.SessionInfo{}, err
	}

	info := domain.SessionInfo{
		ID:                uuid.NewString(),
		LoadedAt:          time.Now(),
		PredictionsSource: s.cfg.PredictionsSource,
		HistorySource:     s.cfg.HistorySource,
		PredictionRows:    len(preds),
		IndicatorRows:     len(indicators),
		RejectedRows:      rejected,
		FromSnapshot:      fromSnapshot,
	}

	s.log.Info().
		Str("session_id", info.ID).
		Int("prediction_rows", info.PredictionRows).
		Int("indicator_rows", info.IndicatorRows).
		Int("rejected_rows", info.RejectedRows).
		Bool("from_snapshot", info.FromSnapshot).
		Dur("duration_ms", time.Since(started)).
		Msg("Session data loaded")

	return info, nil
}

// resolveSource maps a configured source to a local file path, downloading
// it first when it lives in the object store.
func (s *Service) resolveSource(ctx context.Context, source string) (string, error) {
	if !objectstore.IsObjectURI(source) {
		return source, nil
	}
	if s.fetcher == nil {
		return "", fmt.Errorf("source %s requires an object store client", source)
	}
	return s.fetcher.Fetch(ctx, source, s.cfg.DataDir)
}

func (s *Service) parsePredictions(path string) ([]domain.EntityPrediction, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open predictions source: %w", err)
	}
	defer f.Close()

	return ParsePredictions(f, s.log)
}

func (s *Service) parseIndicators(path string) ([]domain.YearlyIndicator, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open history source: %w", err)
	}
	defer f.Close()

	return ParseIndicators(f, s.log)
}

// store replaces both session tables in one transaction.
func (s *Service) store(preds []domain.EntityPrediction, indicators []domain.YearlyIndicator) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}

	if err := s.predictionRepo.ReplaceAll(tx, preds); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.historicalRepo.ReplaceAll(tx, indicators); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load transaction: %w", err)
	}

	return nil
}

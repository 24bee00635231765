package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chumjikim/retirement-risk-prediction/internal/database"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/historical"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/predictions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictionsCSV = `사업자번호,업체명,p_risk,p_normal,부족액_예상,부족액_실제,explanation
123-45-67890,Hanbit Industries,0.82,0.18,1000000,1500000,reserve ratio below minimum
987-65-43210,Daeho Metals,0.12,0.88,,,
bad-row,Broken Co,0.9,0.9,,,
`

const historyCSV = `사업자번호,업체명,기준연도,적립금,최소적립금(적립기준액),평가적립금합계,계속기준책임준비금,부담금납입액,부담금산정액
123-45-67890,Hanbit Industries,2014-12-31,90,100,95,100,80,100
123-45-67890,Hanbit Industries,2015-12-31,95,100,97,100,85,100
`

type testEnv struct {
	svc      *Service
	predRepo *predictions.Repository
	histRepo *historical.Repository
	dataDir  string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()

	dataDir := t.TempDir()
	predPath := filepath.Join(dataDir, "predictions.csv")
	histPath := filepath.Join(dataDir, "history.csv")
	require.NoError(t, os.WriteFile(predPath, []byte(predictionsCSV), 0644))
	require.NoError(t, os.WriteFile(histPath, []byte(historyCSV), 0644))

	db, err := database.New(database.Config{
		Path: filepath.Join(dataDir, "session.db"),
		Name: "session",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := testLog()
	predRepo := predictions.NewRepository(db.Conn(), log)
	histRepo := historical.NewRepository(db.Conn(), log)
	svc := NewService(Config{
		PredictionsSource: predPath,
		HistorySource:     histPath,
		DataDir:           dataDir,
	}, db, predRepo, histRepo, nil, log)

	return testEnv{svc: svc, predRepo: predRepo, histRepo: histRepo, dataDir: dataDir}
}

func TestLoadMaterializesSources(t *testing.T) {
	env := setupEnv(t)

	info, err := env.svc.Load(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, 2, info.PredictionRows)
	assert.Equal(t, 2, info.IndicatorRows)
	assert.Equal(t, 1, info.RejectedRows)
	assert.False(t, info.FromSnapshot)

	stats, err := env.predRepo.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Risk)

	rows, err := env.histRepo.GetForEntity("123-45-67890", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2014, rows[0].Year)
}

func TestLoadUsesWarmStartSnapshot(t *testing.T) {
	env := setupEnv(t)

	first, err := env.svc.Load(context.Background())
	require.NoError(t, err)
	require.False(t, first.FromSnapshot)
	require.FileExists(t, filepath.Join(env.dataDir, SnapshotFileName))

	second, err := env.svc.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, second.FromSnapshot)
	assert.Equal(t, first.PredictionRows, second.PredictionRows)
	assert.Equal(t, first.IndicatorRows, second.IndicatorRows)
	assert.Equal(t, first.RejectedRows, second.RejectedRows)
	assert.NotEqual(t, first.ID, second.ID)

	// The snapshot round trip preserves the optional shortfall columns.
	pred, err := env.predRepo.GetByKey("123-45-67890")
	require.NoError(t, err)
	require.NotNil(t, pred)
	require.NotNil(t, pred.ExpectedShortfall)
	assert.Equal(t, 1_000_000.0, *pred.ExpectedShortfall)
}

func TestLoadReparsesWhenSourceChanges(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.Load(context.Background())
	require.NoError(t, err)

	// Touch the predictions source into the future so the snapshot is stale.
	predPath := env.svc.cfg.PredictionsSource
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(predPath, future, future))

	info, err := env.svc.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, info.FromSnapshot)
}

func TestLoadFailsOnMissingSource(t *testing.T) {
	env := setupEnv(t)
	env.svc.cfg.PredictionsSource = filepath.Join(env.dataDir, "missing.csv")

	_, err := env.svc.Load(context.Background())
	require.Error(t, err)
}

func TestResolveSourceRequiresFetcherForRemote(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.resolveSource(context.Background(), "s3://bucket/predictions.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object store")
}

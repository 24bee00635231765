package predictions

import (
	"path/filepath"
	"testing"

	"github.com/chumjikim/retirement-risk-prediction/internal/database"
	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "session.db"),
		Name: "session",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db.Conn(), logger.New(logger.Config{Level: "error"}))
}

func floatPtr(v float64) *float64 { return &v }

func seed(t *testing.T, repo *Repository, preds []domain.EntityPrediction) {
	t.Helper()

	tx, err := repo.db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceAll(tx, preds))
	require.NoError(t, tx.Commit())
}

func testPredictions() []domain.EntityPrediction {
	return []domain.EntityPrediction{
		{
			BizRegNo:          "123-45-67890",
			CompanyName:       "Hanbit Industries",
			PRisk:             0.82,
			PNormal:           0.18,
			ExpectedShortfall: floatPtr(1_000_000),
			ActualShortfall:   floatPtr(1_500_000),
			Explanation:       "reserve ratio below minimum / contribution arrears",
			FinalJudgement:    domain.VerdictRisk,
		},
		{
			BizRegNo:       "987-65-43210",
			CompanyName:    "Daeho Metals",
			PRisk:          0.12,
			PNormal:        0.88,
			FinalJudgement: domain.VerdictNormal,
		},
		{
			CompanyName:    "Sejin Logistics",
			PRisk:          0.45,
			PNormal:        0.55,
			FinalJudgement: domain.VerdictNormal,
		},
	}
}

func TestReplaceAllAndGetAll(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, testPredictions())

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Optional shortfall columns survive the round trip.
	var hanbit *domain.EntityPrediction
	for i := range all {
		if all[i].CompanyName == "Hanbit Industries" {
			hanbit = &all[i]
		}
	}
	require.NotNil(t, hanbit)
	require.NotNil(t, hanbit.ExpectedShortfall)
	assert.Equal(t, 1_000_000.0, *hanbit.ExpectedShortfall)
	require.NotNil(t, hanbit.ActualShortfall)
	assert.Equal(t, 1_500_000.0, *hanbit.ActualShortfall)
	assert.Equal(t, domain.VerdictRisk, hanbit.FinalJudgement)

	// A second load replaces, not appends.
	seed(t, repo, testPredictions()[:1])
	all, err = repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSearch(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, testPredictions())

	tests := []struct {
		name      string
		query     string
		riskOnly  bool
		wantNames []string
	}{
		{name: "empty query matches all", query: "", wantNames: []string{"Daeho Metals", "Hanbit Industries", "Sejin Logistics"}},
		{name: "substring of reg number", query: "123-45", wantNames: []string{"Hanbit Industries"}},
		{name: "substring of name", query: "Metals", wantNames: []string{"Daeho Metals"}},
		{name: "risk only", query: "", riskOnly: true, wantNames: []string{"Hanbit Industries"}},
		{name: "no match", query: "nonexistent", wantNames: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(tt.query, tt.riskOnly)
			require.NoError(t, err)

			var names []string
			for _, p := range got {
				names = append(names, p.CompanyName)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestGetByKey(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, testPredictions())

	byRegNo, err := repo.GetByKey("123-45-67890")
	require.NoError(t, err)
	require.NotNil(t, byRegNo)
	assert.Equal(t, "Hanbit Industries", byRegNo.CompanyName)

	// Fallback to exact name match for entities without a reg number.
	byName, err := repo.GetByKey("Sejin Logistics")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "", byName.BizRegNo)

	// A miss is an empty result, not an error.
	missing, err := repo.GetByKey("000-00-00000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStats(t *testing.T) {
	repo := setupRepo(t)

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionStats{}, stats)

	seed(t, repo, testPredictions())

	stats, err = repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionStats{Total: 3, Risk: 1, Normal: 2}, stats)
}

package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	info domain.SessionInfo
	err  error
}

func (m *mockLoader) Load(ctx context.Context) (domain.SessionInfo, error) {
	return m.info, m.err
}

type mockSwapper struct {
	swapped []domain.SessionInfo
}

func (m *mockSwapper) Swap(info domain.SessionInfo) {
	m.swapped = append(m.swapped, info)
}

func TestRefreshJobSwapsOnSuccess(t *testing.T) {
	loader := &mockLoader{info: domain.SessionInfo{ID: "new-session"}}
	swapper := &mockSwapper{}
	job := NewRefreshJob(loader, swapper, logger.New(logger.Config{Level: "error"}))

	assert.Equal(t, "data-refresh", job.Name())
	require.NoError(t, job.Run())
	require.Len(t, swapper.swapped, 1)
	assert.Equal(t, "new-session", swapper.swapped[0].ID)
}

func TestRefreshJobKeepsSessionOnFailure(t *testing.T) {
	loader := &mockLoader{err: errors.New("source unavailable")}
	swapper := &mockSwapper{}
	job := NewRefreshJob(loader, swapper, logger.New(logger.Config{Level: "error"}))

	require.Error(t, job.Run())
	assert.Empty(t, swapper.swapped)
}

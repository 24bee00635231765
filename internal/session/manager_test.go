package session

import (
	"sync"
	"testing"
	"time"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestSwapAndCurrent(t *testing.T) {
	m := NewManager(logger.New(logger.Config{Level: "error"}))

	assert.Empty(t, m.Current().ID)

	info := domain.SessionInfo{ID: "abc", LoadedAt: time.Now(), PredictionRows: 10}
	m.Swap(info)
	assert.Equal(t, info, m.Current())

	replacement := domain.SessionInfo{ID: "def", PredictionRows: 12}
	m.Swap(replacement)
	assert.Equal(t, "def", m.Current().ID)
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager(logger.New(logger.Config{Level: "error"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Swap(domain.SessionInfo{ID: "session"})
		}()
		go func() {
			defer wg.Done()
			_ = m.Current()
		}()
	}
	wg.Wait()

	assert.Equal(t, "session", m.Current().ID)
}

// Package session tracks the currently active data load.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Manager holds the descriptor of the current session load. The importer is
// the only writer (startup and refresh); everything else reads. Swapping the
// handle is the only mutation in the whole pipeline.
type Manager struct {
	mu      sync.RWMutex
	current domain.SessionInfo
	log     zerolog.Logger
}

// NewManager creates a new session manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("component", "session").Logger(),
	}
}

// Swap installs a new session handle after a successful load.
func (m *Manager) Swap(info domain.SessionInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.current.ID
	m.current = info

	m.log.Info().
		Str("session_id", info.ID).
		Str("previous_session_id", previous).
		Msg("Session handle swapped")
}

// Current returns the active session descriptor.
func (m *Manager) Current() domain.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

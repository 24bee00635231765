package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/chumjikim/retirement-risk-prediction/internal/database"
	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// refreshTimeout bounds one manual session refresh, including any remote
// source download.
const refreshTimeout = 5 * time.Minute

// SessionSource reloads the source data and returns the new session handle.
type SessionSource interface {
	Load(ctx context.Context) (domain.SessionInfo, error)
}

// SessionHolder exposes the active session handle.
type SessionHolder interface {
	Current() domain.SessionInfo
	Swap(info domain.SessionInfo)
}

// StatsProvider returns classification counts over the loaded predictions.
type StatsProvider interface {
	Stats() (domain.PredictionStats, error)
}

// SystemHandlers handles system monitoring and session refresh requests
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	sessionDB *database.DB
	sessions  SessionHolder
	source    SessionSource
	stats     StatsProvider
	startTime time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, sessionDB *database.DB, sessions SessionHolder, source SessionSource, stats StatsProvider) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		sessionDB: sessionDB,
		sessions:  sessions,
		source:    source,
		stats:     stats,
		startTime: time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	predictionStats, err := h.stats.Stats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read prediction stats")
	}

	status := map[string]interface{}{
		"data": map[string]interface{}{
			"session":        h.sessions.Current(),
			"predictions":    predictionStats,
			"cpu_percent":    cpuPercent,
			"ram_percent":    ramPercent,
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"data_dir":       h.dataDir,
			"session_store":  h.sessionDB.Path(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, status)
}

// HandleSessionRefresh handles POST /api/session/refresh
// A failed reload leaves the previous session in place.
func (h *SystemHandlers) HandleSessionRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	info, err := h.source.Load(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Session refresh failed")
		http.Error(w, "Failed to refresh session data", http.StatusBadGateway)
		return
	}

	h.sessions.Swap(info)
	h.log.Info().
		Str("session_id", info.ID).
		Int("prediction_rows", info.PredictionRows).
		Int("indicator_rows", info.IndicatorRows).
		Msg("Session refreshed")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": info,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	var cpuPercent, ramPercent float64

	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err == nil && len(percentages) > 0 {
		cpuPercent = percentages[0]
	}

	memStat, err := mem.VirtualMemory()
	if err == nil {
		ramPercent = memStat.UsedPercent
	}

	return cpuPercent, ramPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

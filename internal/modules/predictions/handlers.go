package predictions

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// RepositoryInterface is the data access contract used by the handlers.
type RepositoryInterface interface {
	GetAll() ([]domain.EntityPrediction, error)
	Search(query string, riskOnly bool) ([]domain.EntityPrediction, error)
	GetByKey(key string) (*domain.EntityPrediction, error)
}

// Handler handles prediction listing and lookup HTTP requests
type Handler struct {
	repo RepositoryInterface
	log  zerolog.Logger
}

// NewHandler creates a new predictions handler
func NewHandler(repo RepositoryInterface, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "predictions").Logger(),
	}
}

// RegisterRoutes registers the prediction routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/predictions", h.HandleList)
	r.Get("/predictions/{key}", h.HandleGet)
}

// HandleList handles GET /api/predictions?q=<query>&risk_only=<bool>
// The stats block counts the query matches before the risk-only filter, the
// way the results page shows totals above a filtered table.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	riskOnly := r.URL.Query().Get("risk_only") == "true"

	var (
		matches []domain.EntityPrediction
		err     error
	)
	if query == "" {
		matches, err = h.repo.GetAll()
	} else {
		matches, err = h.repo.Search(query, false)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to search predictions")
		http.Error(w, "Failed to search predictions", http.StatusInternalServerError)
		return
	}

	stats := domain.PredictionStats{Total: len(matches)}
	for _, p := range matches {
		if p.FinalJudgement == domain.VerdictRisk {
			stats.Risk++
		} else {
			stats.Normal++
		}
	}

	shown := matches
	if riskOnly {
		shown = make([]domain.EntityPrediction, 0, stats.Risk)
		for _, p := range matches {
			if p.FinalJudgement == domain.VerdictRisk {
				shown = append(shown, p)
			}
		}
	}
	if shown == nil {
		shown = []domain.EntityPrediction{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"predictions": shown,
			"stats":       stats,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"query":     query,
			"risk_only": riskOnly,
		},
	})
}

// HandleGet handles GET /api/predictions/{key}
// A lookup miss is an empty-result state, rendered as 404 - distinct from a
// server failure.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	pred, err := h.repo.GetByKey(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to look up prediction")
		http.Error(w, "Failed to look up prediction", http.StatusInternalServerError)
		return
	}
	if pred == nil {
		http.Error(w, "No entity found for key", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": pred,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

package evaluation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/trend"
)

// PredictionGetter looks up a single prediction row by registration number
// or company name.
type PredictionGetter interface {
	GetByKey(key string) (*domain.EntityPrediction, error)
}

// HistoryProvider returns the yearly indicator rows for one entity.
type HistoryProvider interface {
	GetForEntity(bizRegNo, companyName string) ([]domain.YearlyIndicator, error)
}

// Handler handles per-entity evaluation and trend HTTP requests
type Handler struct {
	service     *Service
	predictions PredictionGetter
	history     HistoryProvider
	log         zerolog.Logger
}

// NewHandler creates a new evaluation handler
func NewHandler(service *Service, predictions PredictionGetter, history HistoryProvider, log zerolog.Logger) *Handler {
	return &Handler{
		service:     service,
		predictions: predictions,
		history:     history,
		log:         log.With().Str("handler", "evaluation").Logger(),
	}
}

// RegisterRoutes registers the evaluation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/predictions/{key}/evaluation", h.HandleEvaluation)
	r.Get("/predictions/{key}/trend", h.HandleTrend)
}

// HandleEvaluation handles GET /api/predictions/{key}/evaluation
func (h *Handler) HandleEvaluation(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	pred, history, ok := h.lookup(w, key)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(*pred, history)
	if err != nil {
		var invalid domain.InvalidProbabilityError
		if errors.As(err, &invalid) {
			// The stored row carries a probability outside [0,1]; the
			// entity is unprocessable, not the server.
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to evaluate entity")
		http.Error(w, "Failed to evaluate entity", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleTrend handles GET /api/predictions/{key}/trend
func (h *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	pred, history, ok := h.lookup(w, key)
	if !ok {
		return
	}

	points := trend.Aggregate(history)
	summary := trend.Summarize(points)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"entity":  pred.LookupKey(),
			"trend":   points,
			"summary": summary,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// lookup resolves the entity and its history, writing the error response on
// failure.
func (h *Handler) lookup(w http.ResponseWriter, key string) (*domain.EntityPrediction, []domain.YearlyIndicator, bool) {
	pred, err := h.predictions.GetByKey(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to look up prediction")
		http.Error(w, "Failed to look up prediction", http.StatusInternalServerError)
		return nil, nil, false
	}
	if pred == nil {
		http.Error(w, "No entity found for key", http.StatusNotFound)
		return nil, nil, false
	}

	history, err := h.history.GetForEntity(pred.BizRegNo, pred.CompanyName)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to load entity history")
		http.Error(w, "Failed to load entity history", http.StatusInternalServerError)
		return nil, nil, false
	}

	return pred, history, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

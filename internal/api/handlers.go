package api

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/wavemarine/deckworth/internal/listings"
	"github.com/wavemarine/deckworth/internal/valuation"
)

// Handler serves the operational endpoints: health checks and the listings
// smoke test.
type Handler struct {
	listings  *listings.Service
	generator valuation.Generator
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates the operational handler.
func NewHandler(listingsSvc *listings.Service, generator valuation.Generator, logger *slog.Logger) *Handler {
	return &Handler{
		listings:  listingsSvc,
		generator: generator,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	})
}

// OpenAIHealth handles GET /api/health/openai. It reports key presence only;
// it never spends a generation call.
func (h *Handler) OpenAIHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"configured": h.generator.Enabled(),
	})
}

// ListingsSmoke handles GET /api/listings/smoke. Requires auth; it issues a
// real upstream query.
func (h *Handler) ListingsSmoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.listings.HasCredentials() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"ok":    false,
			"error": "listings credentials not configured",
		})
		return
	}

	count, sample := h.listings.SmokeTest(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     count > 0,
		"count":  count,
		"sample": sample,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

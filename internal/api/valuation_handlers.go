package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/wavemarine/deckworth/internal/database"
	"github.com/wavemarine/deckworth/internal/metrics"
	"github.com/wavemarine/deckworth/internal/models"
	"github.com/wavemarine/deckworth/internal/valuation"
)

// ValuationHandler serves the estimate pipeline and the direct valuation
// endpoint.
type ValuationHandler struct {
	estimator    *valuation.Estimator
	generator    valuation.Generator
	leadRepo     *database.LeadRepository
	estimateRepo *database.EstimateRepository
	collector    *metrics.Collector
	logger       *slog.Logger
}

// NewValuationHandler creates the valuation handler. The repositories and
// collector may be nil; persistence and metrics are then skipped.
func NewValuationHandler(estimator *valuation.Estimator, generator valuation.Generator, leadRepo *database.LeadRepository, estimateRepo *database.EstimateRepository, collector *metrics.Collector, logger *slog.Logger) *ValuationHandler {
	return &ValuationHandler{
		estimator:    estimator,
		generator:    generator,
		leadRepo:     leadRepo,
		estimateRepo: estimateRepo,
		collector:    collector,
		logger:       logger,
	}
}

// EstimateRequest is a full pipeline estimate submission: the vessel plus
// optional contact details for lead capture.
type EstimateRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	VesselRequest
}

// Estimate handles POST /api/estimate
func (h *ValuationHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := ValidateVesselRequest(req.VesselRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.estimator.Estimate(r.Context(), profile)
	if err != nil {
		if errors.Is(err, valuation.ErrConfigurationMissing) {
			h.logger.Error("estimate rejected, no upstream credentials")
			writeError(w, http.StatusServiceUnavailable, "Valuation service not configured")
			return
		}
		h.logger.Error("estimate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.persist(r.Context(), req, profile, result)
	h.record(result)

	writeJSON(w, http.StatusOK, result)
}

// Valuate handles POST /api/valuation: the direct generation path with no
// comparable blending. Hard upstream failures surface as errors here, unlike
// the best-effort estimate pipeline.
func (h *ValuationHandler) Valuate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req VesselRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := ValidateVesselRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.generator.Enabled() {
		writeError(w, http.StatusBadGateway, "AIUnavailable")
		return
	}

	payload := valuation.BuildValuationPayload(profile, nil, nil)
	generated := h.generator.Generate(r.Context(), valuation.ValuationSystemPrompt, payload)

	switch generated.Status {
	case models.GenerationRateLimited:
		writeError(w, http.StatusTooManyRequests, "AIRateLimited")
		return
	case models.GenerationOK:
	default:
		writeError(w, http.StatusBadGateway, "AIUnavailable")
		return
	}

	gen := valuation.ExtractGenerated(generated.Text)
	if gen == nil {
		h.logger.Error("valuation response unusable", "length", len(generated.Text))
		writeError(w, http.StatusBadGateway, "AIUnavailable")
		return
	}

	result := valuation.ResultFromGenerated(gen, models.GenerationOK)
	result.InputsEcho = map[string]interface{}{
		"brand": profile.Brand,
		"model": profile.Model,
	}

	writeJSON(w, http.StatusOK, result)
}

// persist stores the lead, vessel and estimate when a database is attached.
// Storage failures are logged and swallowed; the caller already has their
// valuation.
func (h *ValuationHandler) persist(ctx context.Context, req EstimateRequest, profile models.VesselProfile, result *models.ValuationResult) {
	if h.leadRepo == nil || h.estimateRepo == nil {
		return
	}

	var leadID, vesselID string
	var err error

	if strings.TrimSpace(req.Email) != "" {
		leadReq := models.CreateLeadRequest{
			Name:   req.Name,
			Email:  req.Email,
			Phone:  req.Phone,
			Vessel: profile,
		}
		var lead *models.Lead
		lead, vesselID, err = h.leadRepo.CreateLead(ctx, leadReq, result.PremiumLead)
		if err == nil {
			leadID = lead.ID
		}
	} else {
		vesselID, err = h.leadRepo.CreateVessel(ctx, profile)
	}
	if err != nil {
		h.logger.Error("failed to store lead", "error", err)
		return
	}

	if _, err := h.estimateRepo.RecordEstimate(ctx, leadID, vesselID, result); err != nil {
		h.logger.Error("failed to store estimate", "error", err)
	}
}

func (h *ValuationHandler) record(result *models.ValuationResult) {
	if h.collector == nil {
		return
	}

	real, synthetic := 0, 0
	for _, c := range result.Comps {
		if c.IsReal() {
			real++
		} else {
			synthetic++
		}
	}
	h.collector.RecordEstimate(string(result.Confidence), string(result.Status), real, synthetic)
}

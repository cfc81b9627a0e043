package valuation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wavemarine/deckworth/internal/listings"
	"github.com/wavemarine/deckworth/internal/models"
)

// ErrConfigurationMissing signals that no estimate is possible at all: every
// upstream credential is absent. Ordinary degraded-data conditions never
// produce an error.
var ErrConfigurationMissing = errors.New("valuation unavailable: no upstream credentials configured")

// minRealComparables is the evidence threshold below which synthetic
// comparables fill the gap.
const minRealComparables = 2

// premiumLeadValue and premiumLeadLOAFt mark high-value leads for routing.
const (
	premiumLeadValue = 200000.0
	premiumLeadLOAFt = 40.0
)

// Estimator orchestrates the valuation pipeline: comparable search, market
// summary, synthetic fill, narrative generation and blending.
type Estimator struct {
	listings  *listings.Service
	generator Generator
	synth     *SyntheticGenerator
	blender   *Blender
	logger    *slog.Logger
}

// NewEstimator wires the pipeline. All collaborators are injected; there is
// no package-level shared state.
func NewEstimator(listingsSvc *listings.Service, generator Generator, synth *SyntheticGenerator, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{
		listings:  listingsSvc,
		generator: generator,
		synth:     synth,
		blender:   NewBlender(synth, logger),
		logger:    logger,
	}
}

// Estimate produces a best-effort valuation for the vessel. Upstream
// degradation (listings failures, generation rate limits or errors) is
// absorbed into a lower-confidence result; only a complete absence of
// configuration returns an error.
func (e *Estimator) Estimate(ctx context.Context, profile models.VesselProfile) (*models.ValuationResult, error) {
	if !e.generator.Enabled() && !e.listings.HasCredentials() {
		return nil, ErrConfigurationMissing
	}

	comps := e.listings.SearchForVessel(ctx, profile)
	realCount := len(comps)

	if realCount < minRealComparables {
		synthetic := e.synth.Generate(profile)
		comps = append(comps, synthetic...)
		e.logger.Info("insufficient real comparables, filled with synthetic evidence",
			"real", realCount, "synthetic", len(synthetic))
	}

	summary := listings.Summarize(comps)

	var gen *GeneratedValuation
	status := models.GenerationError
	if e.generator.Enabled() {
		result := e.generator.Generate(ctx, ValuationSystemPrompt, BuildValuationPayload(profile, comps, &summary))
		status = result.Status
		if status == models.GenerationOK {
			gen = ExtractGenerated(result.Text)
			if gen == nil {
				// Shape-violating output degrades exactly like a failed call.
				status = models.GenerationError
			}
		}
	}

	valuation := e.blender.Blend(profile, comps, gen, status)
	valuation.InputsEcho = echoInputs(profile)
	valuation.PremiumLead = isPremiumLead(profile, valuation)

	return valuation, nil
}

// NormalizeResponse exposes the payload normalizer as an estimator operation
// for callers tolerating upstream shape drift.
func (e *Estimator) NormalizeResponse(raw interface{}) *models.ValuationResult {
	return NormalizeResponse(raw)
}

// isPremiumLead marks leads worth priority handling: a premium-tier brand, a
// high most-likely value, or a large hull.
func isPremiumLead(profile models.VesselProfile, v *models.ValuationResult) bool {
	brand := strings.ToLower(profile.Brand)
	for _, p := range premiumBrands {
		if strings.Contains(brand, p) {
			return true
		}
	}
	if v.Mid != nil && *v.Mid >= premiumLeadValue {
		return true
	}
	return profile.LOAFt != nil && *profile.LOAFt >= premiumLeadLOAFt
}

func echoInputs(profile models.VesselProfile) map[string]interface{} {
	echo := map[string]interface{}{
		"brand":     profile.Brand,
		"model":     profile.Model,
		"fuelType":  string(profile.FuelType),
		"condition": string(profile.Condition),
	}
	if profile.Year != nil {
		echo["year"] = *profile.Year
	}
	if profile.LOAFt != nil {
		echo["loaFt"] = *profile.LOAFt
	}
	if profile.Hours != nil {
		echo["hours"] = *profile.Hours
	}
	return echo
}

package valuation

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/wavemarine/deckworth/internal/models"
)

// Wholesale policy: derived wholesale targets 60% of mid and must land in the
// 55-65% band; an out-of-band figure from upstream is kept but explained.
const (
	wholesaleFraction = 0.60
	wholesaleBandLow  = 0.55
	wholesaleBandHigh = 0.65
)

// Band multipliers for the comparable-backed and heuristic paths.
const (
	realBandLow   = 0.90
	realBandHigh  = 1.10
	heuristicLow  = 0.80
	heuristicHigh = 1.20
)

// GeneratedValuation is the leniently-extracted content of an upstream
// generation response, used as one blender input.
type GeneratedValuation struct {
	Low         *float64
	Mid         *float64
	High        *float64
	Wholesale   *float64
	Confidence  string
	Narrative   string
	Assumptions []string
}

// Blender combines comparable statistics, heuristic pricing and the upstream
// generation result into the final valuation.
type Blender struct {
	synth  *SyntheticGenerator
	logger *slog.Logger
}

// NewBlender constructs a blender sharing the synthetic generator's price
// model for the heuristic path.
func NewBlender(synth *SyntheticGenerator, logger *slog.Logger) *Blender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Blender{synth: synth, logger: logger}
}

// Blend produces the final low/mid/high/wholesale figures, confidence label
// and narrative. It never fails: degraded inputs produce a degraded but
// complete result.
func (b *Blender) Blend(profile models.VesselProfile, comps []models.Comparable, gen *GeneratedValuation, status models.GenerationStatus) *models.ValuationResult {
	realPrices := realAskPrices(comps)

	var low, mid, high float64
	if len(realPrices) >= 2 {
		mid = medianOf(realPrices)
		low = realBandLow * float64(minOf(realPrices))
		high = realBandHigh * float64(maxOf(realPrices))
	} else {
		expected := float64(b.synth.ExpectedValue(profile))
		mid = expected
		low = heuristicLow * expected
		high = heuristicHigh * expected
	}

	// The caller never sees an inconsistent ordering.
	if low > high {
		low, high = high, low
	}
	mid = math.Min(math.Max(mid, low), high)

	assumptions := []string{}
	if gen != nil {
		assumptions = append(assumptions, gen.Assumptions...)
	}

	var wholesale *float64
	if gen != nil && gen.Wholesale != nil {
		wholesale = gen.Wholesale
		if outsideBand(*wholesale, mid) {
			assumptions = append(assumptions, fmt.Sprintf(
				"Wholesale figure of $%s from market data falls outside the standard 55-65%% band of the most likely value.",
				formatAmount(wholesale)))
		}
	} else {
		derived := wholesaleFraction * mid
		wholesale = floor10k(&derived)
		// Rounding down to 10k can leave a small mid's wholesale under the
		// band floor; the deviation is recorded, never silently adjusted.
		if outsideBand(*wholesale, mid) {
			assumptions = append(assumptions, fmt.Sprintf(
				"Wholesale of $%s reflects conservative rounding below the standard 55-65%% band of the most likely value.",
				formatAmount(wholesale)))
		}
	}

	confidence := deriveConfidence(comps, len(realPrices), status)

	narrative := ""
	if gen != nil && status == models.GenerationOK {
		narrative = gen.Narrative
	}
	if narrative == "" {
		narrative = b.fallbackNarrative(profile, len(realPrices))
	}

	lowPtr, midPtr, highPtr := models.Float(math.Round(low)), models.Float(math.Round(mid)), models.Float(math.Round(high))

	result := &models.ValuationResult{
		Low:         lowPtr,
		Mid:         midPtr,
		High:        highPtr,
		Wholesale:   wholesale,
		Confidence:  confidence,
		Narrative:   finalizeNarrative(narrative, lowPtr, highPtr, midPtr, wholesale, confidence),
		Assumptions: assumptions,
		Comps:       comps,
		Status:      status,
	}

	b.logger.Info("valuation blended",
		"real_comps", len(realPrices),
		"total_comps", len(comps),
		"confidence", confidence,
		"generation_status", status)

	return result
}

func outsideBand(wholesale, mid float64) bool {
	return wholesale < wholesaleBandLow*mid || wholesale > wholesaleBandHigh*mid
}

// deriveConfidence labels the estimate: High when backed fully by real
// market data, Medium for a real/synthetic mix, Low when the evidence is
// entirely synthetic or the generation step degraded.
func deriveConfidence(comps []models.Comparable, realCount int, status models.GenerationStatus) models.ConfidenceLevel {
	if status != models.GenerationOK {
		return models.ConfidenceLow
	}
	if realCount == 0 {
		return models.ConfidenceLow
	}
	if realCount < len(comps) || realCount < 2 {
		return models.ConfidenceMedium
	}
	return models.ConfidenceHigh
}

func (b *Blender) fallbackNarrative(profile models.VesselProfile, realCount int) string {
	yearStr := "current"
	if profile.Year != nil {
		yearStr = fmt.Sprintf("%d", *profile.Year)
	}
	condition := string(profile.Condition)
	if condition == "" {
		condition = "good"
	}

	base := fmt.Sprintf(
		"This valuation was produced by our market analysis model using the vessel's specifications. The %s %s %s in %s condition represents solid value in today's market, estimated with length-based pricing adjusted for age, condition, and usage hours.",
		yearStr, profile.Brand, profile.Model, condition)

	if realCount == 0 {
		base += " A live market narrative was unavailable for this request, so this estimate reflects modeled pricing rather than current listing data."
	}
	return base
}

func realAskPrices(comps []models.Comparable) []int {
	prices := make([]int, 0, len(comps))
	for _, c := range comps {
		if c.IsReal() {
			prices = append(prices, c.Ask)
		}
	}
	return prices
}

func medianOf(prices []int) float64 {
	sorted := make([]int, len(prices))
	copy(sorted, prices)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return float64(sorted[n/2-1]+sorted[n/2]) / 2
	}
	return float64(sorted[n/2])
}

func minOf(prices []int) int {
	m := prices[0]
	for _, p := range prices[1:] {
		if p < m {
			m = p
		}
	}
	return m
}

func maxOf(prices []int) int {
	m := prices[0]
	for _, p := range prices[1:] {
		if p > m {
			m = p
		}
	}
	return m
}

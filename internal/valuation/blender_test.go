package valuation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/wavemarine/deckworth/internal/models"
)

func testBlender() *Blender {
	return NewBlender(NewSyntheticGenerator(rand.New(rand.NewSource(1))), nil)
}

func realComp(ask int) models.Comparable {
	return models.Comparable{Ask: ask, Year: models.Int(2018), Source: models.CompSourceListing}
}

func syntheticComp(ask int) models.Comparable {
	return models.Comparable{Ask: ask, Year: models.Int(2018), Source: models.CompSourceSynthetic}
}

func gasProfile() models.VesselProfile {
	return models.VesselProfile{
		Brand:     "Sea Ray",
		Year:      models.Int(2015),
		LOAFt:     models.Float(35),
		FuelType:  models.FuelGas,
		Condition: models.ConditionGood,
		Hours:     models.Int(500),
	}
}

func TestBlend_RealComparablePath(t *testing.T) {
	comps := []models.Comparable{
		realComp(200000), realComp(250000), realComp(300000), realComp(220000),
	}

	result := testBlender().Blend(gasProfile(), comps, nil, models.GenerationOK)

	if result.Mid == nil || *result.Mid != 235000 {
		t.Errorf("expected mid 235000 (median of real asks), got %v", result.Mid)
	}
	if result.Low == nil || *result.Low != 180000 {
		t.Errorf("expected low 180000 (0.9 x min), got %v", result.Low)
	}
	if result.High == nil || *result.High != 330000 {
		t.Errorf("expected high 330000 (1.1 x max), got %v", result.High)
	}
	if result.Wholesale == nil || *result.Wholesale != 140000 {
		t.Errorf("expected wholesale 140000 (60%% of mid floored to 10k), got %v", result.Wholesale)
	}
	if result.Confidence != models.ConfidenceHigh {
		t.Errorf("expected High confidence for fully real evidence, got %s", result.Confidence)
	}
}

func TestBlend_OrderingInvariant(t *testing.T) {
	blender := testBlender()

	cases := [][]models.Comparable{
		{realComp(200000), realComp(250000)},
		{realComp(100000), realComp(5000000), realComp(130000)},
		{syntheticComp(80000), syntheticComp(90000)},
		nil,
	}

	for _, comps := range cases {
		result := blender.Blend(gasProfile(), comps, nil, models.GenerationOK)
		if result.Low == nil || result.Mid == nil || result.High == nil {
			t.Fatal("expected non-null low/mid/high")
		}
		if *result.Low > *result.Mid || *result.Mid > *result.High {
			t.Errorf("ordering violated: low=%v mid=%v high=%v", *result.Low, *result.Mid, *result.High)
		}
	}
}

func TestBlend_WholesaleBandAndRounding(t *testing.T) {
	blender := testBlender()

	for _, comps := range [][]models.Comparable{
		{realComp(200000), realComp(250000), realComp(300000)},
		{syntheticComp(80000)},
		nil,
	} {
		result := blender.Blend(gasProfile(), comps, nil, models.GenerationOK)
		if result.Wholesale == nil || result.Mid == nil {
			t.Fatal("expected derived wholesale and mid")
		}
		w, mid := *result.Wholesale, *result.Mid
		if int(w)%10000 != 0 {
			t.Errorf("derived wholesale %v not floored to 10k", w)
		}
		inBand := w >= wholesaleBandLow*mid && w <= wholesaleBandHigh*mid
		if !inBand && len(result.Assumptions) == 0 {
			t.Errorf("wholesale %v outside band of mid %v without assumption", w, mid)
		}
	}
}

func TestBlend_UpstreamWholesaleOutsideBandKeptWithAssumption(t *testing.T) {
	comps := []models.Comparable{realComp(200000), realComp(300000)}
	gen := &GeneratedValuation{Wholesale: models.Float(100000)} // 40% of the 250k mid

	result := testBlender().Blend(gasProfile(), comps, gen, models.GenerationOK)

	if result.Wholesale == nil || *result.Wholesale != 100000 {
		t.Fatalf("expected upstream wholesale kept as-is, got %v", result.Wholesale)
	}
	if len(result.Assumptions) == 0 {
		t.Error("expected explanatory assumption for out-of-band wholesale")
	}
}

func TestBlend_DegradedGenerationScenario(t *testing.T) {
	// Upstream generation failed outright: heuristic path, Low confidence,
	// visible caveat.
	result := testBlender().Blend(gasProfile(), nil, nil, models.GenerationError)

	if result.Confidence != models.ConfidenceLow {
		t.Errorf("expected Low confidence, got %s", result.Confidence)
	}
	if result.Low == nil || result.Mid == nil || result.High == nil {
		t.Fatal("expected non-null quadruple despite degradation")
	}
	if !(*result.Low < *result.Mid && *result.Mid < *result.High) {
		t.Errorf("expected strict ordering, got low=%v mid=%v high=%v", *result.Low, *result.Mid, *result.High)
	}
	if !strings.Contains(result.Narrative, "unavailable") {
		t.Errorf("expected fallback caveat in narrative, got %q", result.Narrative)
	}
}

func TestBlend_MixedEvidenceIsMediumConfidence(t *testing.T) {
	comps := []models.Comparable{
		realComp(200000), realComp(250000), syntheticComp(220000),
	}

	result := testBlender().Blend(gasProfile(), comps, nil, models.GenerationOK)

	if result.Confidence != models.ConfidenceMedium {
		t.Errorf("expected Medium confidence for real/synthetic mix, got %s", result.Confidence)
	}
}

func TestBlend_RateLimitedIsLowConfidence(t *testing.T) {
	comps := []models.Comparable{realComp(200000), realComp(250000)}

	result := testBlender().Blend(gasProfile(), comps, nil, models.GenerationRateLimited)

	if result.Confidence != models.ConfidenceLow {
		t.Errorf("expected Low confidence when generation was rate limited, got %s", result.Confidence)
	}
}

func TestBlend_NarrativeTokenLine(t *testing.T) {
	comps := []models.Comparable{realComp(200000), realComp(300000)}
	gen := &GeneratedValuation{
		Narrative: "A strong market position. Estimated Market Range: $1–$2. Wholesale: ~$5. Some hull issues were noted and the engine hours are concerning.",
	}

	result := testBlender().Blend(gasProfile(), comps, gen, models.GenerationOK)

	if got := strings.Count(result.Narrative, "Estimated Market Range:"); got != 1 {
		t.Errorf("expected exactly one token line, found %d", got)
	}
	if !strings.Contains(result.Narrative, "Most Likely: $250,000.") {
		t.Errorf("expected formatted mid token, got %q", result.Narrative)
	}
	if !strings.Contains(result.Narrative, "Confidence: High.") {
		t.Errorf("expected confidence token, got %q", result.Narrative)
	}
	for _, banned := range []string{"issues", "concerning"} {
		if strings.Contains(result.Narrative, banned) {
			t.Errorf("expected %q scrubbed from narrative: %q", banned, result.Narrative)
		}
	}
}

package valuation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/wavemarine/deckworth/internal/models"
)

func seededSynth() *SyntheticGenerator {
	return NewSyntheticGenerator(rand.New(rand.NewSource(42)))
}

func TestSyntheticGenerate_ProvenanceAndCount(t *testing.T) {
	comps := seededSynth().Generate(gasProfile())

	if len(comps) != syntheticCompCount {
		t.Fatalf("expected %d synthetic comparables, got %d", syntheticCompCount, len(comps))
	}
	for _, c := range comps {
		if c.Source != models.CompSourceSynthetic {
			t.Errorf("expected synthetic provenance, got %q", c.Source)
		}
		if c.IsReal() {
			t.Error("synthetic comparable must not read as real")
		}
		if c.Ask <= 0 {
			t.Errorf("expected positive ask, got %d", c.Ask)
		}
		if c.Year == nil || c.LOAFt == nil {
			t.Error("expected synthetic comparables to carry year and length")
		}
	}
}

func TestSyntheticGenerate_JitterSpreadsPrices(t *testing.T) {
	synth := seededSynth()
	expected := float64(synth.ExpectedValue(gasProfile()))

	comps := synth.Generate(gasProfile())
	for _, c := range comps {
		ratio := float64(c.Ask) / expected
		if ratio < 0.80 || ratio > 1.20 {
			t.Errorf("ask %d strays too far from expected %v (ratio %.2f)", c.Ask, expected, ratio)
		}
	}
}

func TestExpectedValue_BrandTiers(t *testing.T) {
	year := time.Now().Year() - 5
	loa := models.Float(45)

	profileFor := func(brand string) models.VesselProfile {
		return models.VesselProfile{
			Brand:     brand,
			Year:      models.Int(year),
			LOAFt:     loa,
			Condition: models.ConditionGood,
		}
	}

	synth := seededSynth()
	premium := synth.ExpectedValue(profileFor("Azimut"))
	mid := synth.ExpectedValue(profileFor("Sea Ray"))
	value := synth.ExpectedValue(profileFor("Bayliner"))
	unknown := synth.ExpectedValue(profileFor("Some Builder"))

	if premium <= mid {
		t.Errorf("expected premium tier (%d) above mid tier (%d)", premium, mid)
	}
	if mid <= value {
		t.Errorf("expected mid tier (%d) above value tier (%d)", mid, value)
	}
	if unknown <= value {
		t.Errorf("expected default rate (%d) above value tier (%d)", unknown, value)
	}
}

func TestExpectedValue_AgeDecayHasFloor(t *testing.T) {
	synth := seededSynth()
	ancient := time.Now().Year() - 60

	// Premium exponential decay floors at 18% of base.
	premiumProfile := models.VesselProfile{
		Brand:     "Hatteras",
		Year:      models.Int(ancient),
		LOAFt:     models.Float(50),
		Condition: models.ConditionGood,
	}
	premiumFloor := int(50 * 50 * premiumRatePerSqFt * premiumDecayFloor)
	if got := synth.ExpectedValue(premiumProfile); got < premiumFloor {
		t.Errorf("premium decay went below floor: got %d, floor %d", got, premiumFloor)
	}

	// Linear decay floors at 40% of base.
	plainProfile := models.VesselProfile{
		Brand:     "Some Builder",
		Year:      models.Int(ancient),
		LOAFt:     models.Float(30),
		Condition: models.ConditionGood,
	}
	plainFloor := int(30 * defaultRatePerFt * linearDecayFloor)
	if got := synth.ExpectedValue(plainProfile); got < plainFloor {
		t.Errorf("linear decay went below floor: got %d, floor %d", got, plainFloor)
	}
}

func TestExpectedValue_LargeOldHaircut(t *testing.T) {
	synth := seededSynth()
	oldYear := time.Now().Year() - 30

	big := models.VesselProfile{
		Brand:     "Some Builder",
		Year:      models.Int(oldYear),
		LOAFt:     models.Float(80),
		Condition: models.ConditionGood,
	}

	// Same vessel one foot under the large-length threshold escapes the
	// haircut; scale its value up to the 80 ft base for comparison.
	smaller := big
	smaller.LOAFt = models.Float(69)

	bigValue := float64(synth.ExpectedValue(big))
	scaled := float64(synth.ExpectedValue(smaller)) * (80.0 / 69.0)

	ratio := bigValue / scaled
	if ratio > 0.95 {
		t.Errorf("expected ~10%% haircut for large old vessel, got ratio %.3f", ratio)
	}
}

func TestExpectedValue_ConditionAndHours(t *testing.T) {
	synth := seededSynth()
	base := gasProfile()

	excellent := base
	excellent.Condition = models.ConditionExcellent
	project := base
	project.Condition = models.ConditionProject

	if synth.ExpectedValue(excellent) <= synth.ExpectedValue(project) {
		t.Error("expected excellent condition to outprice a project boat")
	}

	lowHours := base
	lowHours.Hours = models.Int(100)
	highHours := base
	highHours.Hours = models.Int(5000)

	if synth.ExpectedValue(lowHours) <= synth.ExpectedValue(highHours) {
		t.Error("expected low engine hours to outprice high hours")
	}
}

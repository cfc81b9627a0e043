package models

// ConfidenceLevel is a coarse label reflecting how much real market evidence
// backed an estimate.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "Low"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceHigh   ConfidenceLevel = "High"
)

// ParseConfidence validates an upstream-supplied confidence label, falling
// back to Medium for anything unrecognized.
func ParseConfidence(raw string) ConfidenceLevel {
	switch ConfidenceLevel(raw) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return ConfidenceLevel(raw)
	default:
		return ConfidenceMedium
	}
}

// GenerationStatus is the typed outcome of a narrative-generation call.
type GenerationStatus string

const (
	GenerationOK          GenerationStatus = "ok"
	GenerationRateLimited GenerationStatus = "rate_limited"
	GenerationError       GenerationStatus = "error"
)

// ValuationResult is the canonical flat valuation shape. It is constructed
// once per request and never mutated; the response normalizer may rebuild an
// equivalent instance from legacy payloads.
type ValuationResult struct {
	Low         *float64               `json:"valuation_low"`
	Mid         *float64               `json:"valuation_mid"`
	High        *float64               `json:"valuation_high"`
	Wholesale   *float64               `json:"wholesale"`
	Confidence  ConfidenceLevel        `json:"confidence"`
	Narrative   string                 `json:"narrative"`
	Assumptions []string               `json:"assumptions"`
	InputsEcho  map[string]interface{} `json:"inputs_echo"`
	Comps       []Comparable           `json:"comps,omitempty"`
	PremiumLead bool                   `json:"is_premium_lead,omitempty"`
	Status      GenerationStatus       `json:"ai_status,omitempty"`
}

// Float returns a pointer to v, for building nullable valuation fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

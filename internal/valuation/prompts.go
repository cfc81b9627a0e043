package valuation

import (
	"encoding/json"

	"github.com/wavemarine/deckworth/internal/models"
)

// ValuationSystemPrompt instructs the model to produce the strict flat JSON
// valuation shape. The numeric policy here mirrors the blender's own rules so
// a compliant response and the local fallback agree on wholesale behavior.
const ValuationSystemPrompt = `
You are the DeckWorth valuation engine. Output STRICT JSON ONLY (no markdown). Compute ALL numeric fields from inputs and market reasoning; do not reuse example values.

DETERMINISM & CONSISTENCY
- Compute: valuation_low < valuation_mid < valuation_high from inputs only.
- Wholesale is a realistic fast-cash liquidation figure. Target 60% of valuation_mid; stay within 55-65% unless strong evidence forces otherwise, and explain any deviation in "assumptions".
- Favor SOLD prices or time-to-sell realistic figures over aspirational asks; when only asks exist, discount accordingly.

GLOBAL VALUATION POLICY
- Prioritize comps by: region, size/segment, vintage, brand reputation, condition, hours, refit/modernization.
- High-supply markets: be conservative vs. national averages.
- Older vintage (15-25+ years) and/or high engine hours pull valuation toward the lower half of the comp band unless a major refit is present.
- Do not over-index on length alone; vintage, brand, upgrades and liquidity matter more for price realization.

WHOLESALE POLICY (MANDATORY)
- Target: 60% of valuation_mid. Required range: 55%-65% of valuation_mid.
- If wholesale falls outside this band, explain it in "assumptions".
- Always consider age, hours, and location when computing liquidation price.

NARRATIVE STYLE (STRICT)
- Audience: boat owners choosing between listing at fair market vs instant offers.
- Tone: positive, professional, transparent; lead with opportunity; avoid fear language.
- Do NOT use: "reduces value", "limits pricing", "issues", "concerning".
- Prefer: "influences pricing", "typical for age", "room to modernize".
- 110-130 words, 3-5 complete sentences, one paragraph, US English.

STRICT JSON SHAPE (only these keys):
{
  "valuation_low": number | null,
  "valuation_mid": number | null,
  "valuation_high": number | null,
  "wholesale": number | null,
  "confidence": "Low" | "Medium" | "High",
  "narrative": string | null,
  "assumptions": string[] | null,
  "inputs_echo": object
}
`

// promptPayload is the structured user message for the valuation prompt.
type promptPayload struct {
	Instruction string                 `json:"instruction"`
	Fields      map[string]interface{} `json:"fields"`
	Comparables []models.Comparable    `json:"comparables,omitempty"`
	Market      *models.MarketSummary  `json:"market_summary,omitempty"`
}

// BuildValuationPayload serializes the vessel profile and any market evidence
// into the user message for the valuation prompt.
func BuildValuationPayload(profile models.VesselProfile, comps []models.Comparable, summary *models.MarketSummary) string {
	fields := map[string]interface{}{
		"brand":     profile.Brand,
		"model":     profile.Model,
		"year":      profile.Year,
		"loaFt":     profile.LOAFt,
		"fuelType":  profile.FuelType,
		"hours":     profile.Hours,
		"condition": profile.Condition,
	}

	payload := promptPayload{
		Instruction: "Return STRICT JSON matching the shape above. Compute valuation_low/mid/high and wholesale from the inputs and comparables only, following the wholesale policy. Keep assumptions as short bullet-like strings; include one reason if wholesale leaves the 55-65% band. Copy original inputs into inputs_echo.",
		Fields:      fields,
		Comparables: comps,
		Market:      summary,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		// The payload is built from plain values; marshaling cannot fail in
		// practice, but an empty object keeps the call safe.
		return "{}"
	}
	return string(encoded)
}

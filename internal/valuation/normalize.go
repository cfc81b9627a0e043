package valuation

import (
	"encoding/json"
	"math"

	"github.com/wavemarine/deckworth/internal/models"
)

// Alias key lists for the historical valuation payload shapes, in priority
// order. First present, numeric value wins.
var (
	lowKeys       = []string{"low", "valuation_low", "min", "minimum", "floor"}
	midKeys       = []string{"mid", "valuation_mid", "median", "midpoint", "average", "mean", "mostLikely", "most_likely"}
	highKeys      = []string{"high", "valuation_high", "max", "maximum", "ceiling"}
	wholesaleKeys = []string{"wholesale", "valuation_wholesale", "wholesale_estimate"}
	narrativeKeys = []string{"narrative", "valuation_narrative", "analysis"}
	assumptKeys   = []string{"assumptions", "valuation_assumptions"}
	inputsKeys    = []string{"inputs_echo", "inputsEcho", "inputs", "valuation_inputs"}
)

// NormalizeResponse coerces an arbitrary payload that is supposed to
// represent a valuation result into the canonical flat shape. Already-flat
// payloads pass through unchanged; legacy shapes nested under "data" or
// "valuation" are searched with the alias tables. The return is nil when no
// valuation-like data can be found; callers must treat that as unusable, not
// as a zero valuation.
func NormalizeResponse(raw interface{}) *models.ValuationResult {
	if flat := strictFlatParse(raw); flat != nil {
		return flat
	}

	record, ok := asRecord(raw)
	if !ok {
		return nil
	}

	dataSection := record
	if data, ok := asRecord(record["data"]); ok {
		dataSection = data
	}

	valuationSection, ok := asRecord(dataSection["valuation"])
	if !ok {
		valuationSection, ok = asRecord(record["valuation"])
	}
	if !ok {
		return nil
	}

	low := firstNumber(valuationSection, lowKeys)
	mid := firstNumber(valuationSection, midKeys)
	high := firstNumber(valuationSection, highKeys)
	wholesale := firstNumber(valuationSection, wholesaleKeys)

	narrative := firstString(dataSection, narrativeKeys)
	if narrative == "" {
		narrative = firstString(record, narrativeKeys)
	}

	assumptions := firstStringSlice(dataSection, assumptKeys)
	if assumptions == nil {
		assumptions = firstStringSlice(record, assumptKeys)
	}

	inputsEcho := firstRecord(dataSection, inputsKeys)
	if len(inputsEcho) == 0 {
		inputsEcho = firstRecord(record, inputsKeys)
	}

	// Recompute a midpoint when mid is absent, and the policy wholesale when
	// wholesale is absent.
	midBase := mid
	if midBase == nil && low != nil && high != nil {
		midBase = models.Float(math.Round((*low + *high) / 2))
	}
	if wholesale == nil && midBase != nil {
		derived := wholesaleFraction * *midBase
		wholesale = floor10k(&derived)
	}

	result := &models.ValuationResult{
		Low:         low,
		Mid:         mid,
		High:        high,
		Wholesale:   wholesale,
		Narrative:   narrative,
		Assumptions: assumptions,
		InputsEcho:  inputsEcho,
	}

	if !hasAnyContent(result) {
		return nil
	}
	return result
}

// strictFlatParse accepts payloads already in the canonical flat shape: all
// canonical keys present with the right types (null allowed). The payload is
// returned as-is, with no recomputation.
func strictFlatParse(raw interface{}) *models.ValuationResult {
	record, ok := asRecord(raw)
	if !ok {
		return nil
	}

	for _, key := range []string{"valuation_low", "valuation_mid", "valuation_high", "wholesale", "narrative", "assumptions", "inputs_echo"} {
		if _, present := record[key]; !present {
			return nil
		}
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil
	}

	var result models.ValuationResult
	if err := json.Unmarshal(encoded, &result); err != nil {
		return nil
	}
	return &result
}

// ExtractGenerated leniently pulls valuation fields out of raw generation
// output. Unlike NormalizeResponse it tolerates partial flat payloads, since
// the blender fills any gap from local policy.
func ExtractGenerated(text string) *GeneratedValuation {
	var record map[string]interface{}
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil
	}

	gen := &GeneratedValuation{
		Low:         firstNumber(record, lowKeys),
		Mid:         firstNumber(record, midKeys),
		High:        firstNumber(record, highKeys),
		Wholesale:   firstNumber(record, wholesaleKeys),
		Confidence:  firstString(record, []string{"confidence"}),
		Narrative:   firstString(record, narrativeKeys),
		Assumptions: firstStringSlice(record, assumptKeys),
	}

	if gen.Low == nil && gen.Mid == nil && gen.High == nil &&
		gen.Wholesale == nil && gen.Narrative == "" {
		return nil
	}
	return gen
}

func hasAnyContent(r *models.ValuationResult) bool {
	return r.Low != nil || r.Mid != nil || r.High != nil || r.Wholesale != nil ||
		len(r.Assumptions) > 0 || r.Narrative != "" || len(r.InputsEcho) > 0
}

func asRecord(v interface{}) (map[string]interface{}, bool) {
	record, ok := v.(map[string]interface{})
	return record, ok
}

func firstNumber(record map[string]interface{}, keys []string) *float64 {
	for _, key := range keys {
		v, present := record[key]
		if !present {
			continue
		}
		if f, ok := v.(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return models.Float(f)
		}
		if i, ok := v.(int); ok {
			return models.Float(float64(i))
		}
	}
	return nil
}

func firstString(record map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if v, present := record[key]; present {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func firstStringSlice(record map[string]interface{}, keys []string) []string {
	for _, key := range keys {
		v, present := record[key]
		if !present {
			continue
		}
		items, ok := v.([]interface{})
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func firstRecord(record map[string]interface{}, keys []string) map[string]interface{} {
	for _, key := range keys {
		if v, present := record[key]; present {
			if r, ok := asRecord(v); ok {
				return r
			}
		}
	}
	return map[string]interface{}{}
}

// ResultFromGenerated converts a leniently extracted generation into a
// complete valuation result with the canonical narrative trailer. Used by the
// direct valuation endpoint, where no comparable blending takes place.
func ResultFromGenerated(gen *GeneratedValuation, status models.GenerationStatus) *models.ValuationResult {
	confidence := models.ParseConfidence(gen.Confidence)

	assumptions := gen.Assumptions
	if assumptions == nil {
		assumptions = []string{}
	}

	return &models.ValuationResult{
		Low:         gen.Low,
		Mid:         gen.Mid,
		High:        gen.High,
		Wholesale:   gen.Wholesale,
		Confidence:  confidence,
		Narrative:   finalizeNarrative(gen.Narrative, gen.Low, gen.High, gen.Mid, gen.Wholesale, confidence),
		Assumptions: assumptions,
		Status:      status,
	}
}

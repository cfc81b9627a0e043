package listings

import (
	"math"
	"strconv"
	"strings"

	"github.com/wavemarine/deckworth/internal/models"
)

// Field alias tables for the heterogeneous listing feeds. Aliases are tried
// in order; the first present, parseable value wins.
var (
	yearAliases   = []string{"year", "vessel_year"}
	brandAliases  = []string{"brand", "make"}
	priceAliases  = []string{"price", "ask", "list_price"}
	lengthAliases = []string{"length_ft", "loa", "length"}
	regionAliases = []string{"location", "region", "state", "country"}
	urlAliases    = []string{"url", "detail_url", "permalink"}
	engineAliases = []string{"propulsion", "drive_type"}
	fuelAliases   = []string{"fuel", "fuel_type"}
)

// RawListing is a loosely-typed listing record as returned by an upstream
// feed, before any field normalization.
type RawListing map[string]interface{}

// Normalize converts a raw listing into a canonical Comparable. It returns
// nil when the record lacks the required signal (a positive price and a
// year): such records are silently dropped, never aborting the batch.
func Normalize(item RawListing) *models.Comparable {
	year := resolveInt(item, yearAliases)
	brand := strings.TrimSpace(resolveString(item, brandAliases))
	model := strings.TrimSpace(resolveString(item, []string{"model"}))
	price := resolveNumber(item, priceAliases)
	loa := resolveNumber(item, lengthAliases)
	region := strings.TrimSpace(resolveString(item, regionAliases))

	if price == nil || *price <= 0 || year == nil {
		return nil
	}
	if region == "" {
		region = "Unknown"
	}

	return &models.Comparable{
		Title:      models.BuildTitle(year, brand, model),
		Ask:        int(math.Round(*price)),
		Year:       year,
		LOAFt:      loa,
		Region:     region,
		URL:        resolveString(item, urlAliases),
		Brand:      brand,
		Model:      model,
		EngineType: strings.ToLower(strings.TrimSpace(resolveString(item, engineAliases))),
		Source:     models.CompSourceListing,
	}
}

// InferFuelType derives a gas/diesel leaning from explicit fuel data or, when
// only an engine-mount category is present, from a fixed rule set. The
// inference is advisory: outboards lean gas, shaft and IPS drives lean
// diesel, pods and sterndrives lean gas.
func InferFuelType(item RawListing) models.FuelType {
	if fuel := strings.ToLower(strings.TrimSpace(resolveString(item, fuelAliases))); fuel != "" {
		if strings.Contains(fuel, "gas") || strings.Contains(fuel, "gasoline") || strings.Contains(fuel, "petrol") {
			return models.FuelGas
		}
		if strings.Contains(fuel, "diesel") {
			return models.FuelDiesel
		}
	}

	propulsion := strings.ToLower(strings.TrimSpace(resolveString(item, engineAliases)))
	switch {
	case strings.Contains(propulsion, "outboard"):
		return models.FuelGas
	case strings.Contains(propulsion, "shaft"), strings.Contains(propulsion, "ips"):
		return models.FuelDiesel
	case strings.Contains(propulsion, "pod"), strings.Contains(propulsion, "sterndrive"):
		return models.FuelGas
	}

	return models.FuelUnknown
}

func resolveString(item RawListing, aliases []string) string {
	for _, key := range aliases {
		if v, ok := item[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// resolveNumber coerces the first present alias to a number. String values
// have non-numeric characters stripped before parsing; a parse failure reads
// as "field absent" rather than an error.
func resolveNumber(item RawListing, aliases []string) *float64 {
	for _, key := range aliases {
		v, ok := item[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return &n
		case int:
			f := float64(n)
			return &f
		case int64:
			f := float64(n)
			return &f
		case string:
			if f, ok := parseLooseNumber(n); ok {
				return &f
			}
		}
	}
	return nil
}

func resolveInt(item RawListing, aliases []string) *int {
	if f := resolveNumber(item, aliases); f != nil {
		i := int(math.Round(*f))
		return &i
	}
	return nil
}

func parseLooseNumber(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

package listings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wavemarine/deckworth/internal/models"
)

const (
	// DefaultLimit caps the comparable set returned to the blender.
	DefaultLimit = 8

	// yearWindow is the maximum model-year distance for a match.
	yearWindow = 3

	// lengthTolerance widens the profile length into a ±15% window.
	lengthTolerance = 0.15
)

// SearchParams is the full filter tuple for a comparable search. The tuple is
// also the cache key, so every field participates in CacheKey.
type SearchParams struct {
	Brand      string
	Model      string
	Year       *int
	LengthMin  *float64
	LengthMax  *float64
	EngineType string
	Limit      int
}

// ParamsForVessel derives search parameters from a vessel profile, expanding
// the length into its tolerance window and mapping fuel type onto the engine
// filter.
func ParamsForVessel(profile models.VesselProfile) SearchParams {
	params := SearchParams{
		Brand: profile.Brand,
		Model: profile.Model,
		Year:  profile.Year,
		Limit: DefaultLimit,
	}

	if profile.LOAFt != nil {
		tolerance := *profile.LOAFt * lengthTolerance
		params.LengthMin = models.Float(*profile.LOAFt - tolerance)
		params.LengthMax = models.Float(*profile.LOAFt + tolerance)
	}

	switch profile.FuelType {
	case models.FuelGas, models.FuelDiesel:
		params.EngineType = string(profile.FuelType)
	}

	return params
}

// CacheKey renders the full parameter tuple as a stable string.
func (p SearchParams) CacheKey() string {
	parts := []string{p.Brand, p.Model, "", "", "", p.EngineType, fmt.Sprintf("%d", p.limit())}
	if p.Year != nil {
		parts[2] = fmt.Sprintf("%d", *p.Year)
	}
	if p.LengthMin != nil {
		parts[3] = fmt.Sprintf("%.2f", *p.LengthMin)
	}
	if p.LengthMax != nil {
		parts[4] = fmt.Sprintf("%.2f", *p.LengthMax)
	}
	return strings.Join(parts, "|")
}

func (p SearchParams) limit() int {
	if p.Limit > 0 {
		return p.Limit
	}
	return DefaultLimit
}

// Matches reports whether a normalized comparable passes the filter. Unknown
// fields on the comparable side never cause rejection.
func (p SearchParams) Matches(c models.Comparable) bool {
	if p.Brand != "" && !strings.Contains(strings.ToLower(c.Brand), strings.ToLower(p.Brand)) {
		return false
	}
	if p.Model != "" && !strings.Contains(strings.ToLower(c.Model), strings.ToLower(p.Model)) {
		return false
	}
	if p.Year != nil && c.Year != nil && absInt(*c.Year-*p.Year) > yearWindow {
		return false
	}
	if p.LengthMin != nil && c.LOAFt != nil && *c.LOAFt < *p.LengthMin {
		return false
	}
	if p.LengthMax != nil && c.LOAFt != nil && *c.LOAFt > *p.LengthMax {
		return false
	}
	if p.EngineType != "" && !engineCompatible(p.EngineType, c.EngineType) {
		return false
	}
	return true
}

// engineCompatible checks drive-category equivalence: gas matches gas, diesel
// matches diesel, and the mount categories (shaft, ips, outboard) match
// themselves. A comparable with no engine data is never rejected.
func engineCompatible(target, listing string) bool {
	if listing == "" {
		return true
	}
	target = strings.ToLower(target)
	listing = strings.ToLower(listing)

	if strings.Contains(listing, target) {
		return true
	}
	for _, category := range []string{"shaft", "ips", "outboard"} {
		if strings.Contains(target, category) && strings.Contains(listing, category) {
			return true
		}
	}
	return false
}

// Rank orders and caps a filtered comparable set. With a known target year
// the sort is ascending by year distance then asking price; otherwise the
// highest asks come first.
func Rank(comps []models.Comparable, params SearchParams) []models.Comparable {
	ranked := make([]models.Comparable, len(comps))
	copy(ranked, comps)

	if params.Year != nil {
		target := *params.Year
		sort.SliceStable(ranked, func(i, j int) bool {
			di, dj := yearDistance(ranked[i], target), yearDistance(ranked[j], target)
			if di != dj {
				return di < dj
			}
			return ranked[i].Ask < ranked[j].Ask
		})
	} else {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Ask > ranked[j].Ask
		})
	}

	if limit := params.limit(); len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func yearDistance(c models.Comparable, target int) int {
	if c.Year == nil {
		return 0
	}
	return absInt(*c.Year - target)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

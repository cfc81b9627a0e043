package models

import "time"

// VesselProfile describes the boat being valued. A profile is built once per
// valuation request and never mutated afterward.
type VesselProfile struct {
	Brand     string    `json:"brand"`
	Model     string    `json:"model,omitempty"`
	Year      *int      `json:"year,omitempty"`
	LOAFt     *float64  `json:"loa_ft,omitempty"`
	FuelType  FuelType  `json:"fuel_type,omitempty"`
	Condition Condition `json:"condition,omitempty"`
	Hours     *int      `json:"hours,omitempty"`
}

// FuelType is the vessel's fuel/propulsion category.
type FuelType string

const (
	FuelGas      FuelType = "gas"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelOther    FuelType = "other"
	FuelUnknown  FuelType = "unknown"
)

// ParseFuelType maps free-form input onto a FuelType, degrading to unknown
// rather than rejecting the request.
func ParseFuelType(raw string) FuelType {
	switch FuelType(raw) {
	case FuelGas, FuelDiesel, FuelElectric, FuelOther:
		return FuelType(raw)
	default:
		return FuelUnknown
	}
}

// Condition is the owner-reported overall condition of the vessel.
type Condition string

const (
	ConditionProject   Condition = "project"
	ConditionFair      Condition = "fair"
	ConditionAverage   Condition = "average"
	ConditionGood      Condition = "good"
	ConditionExcellent Condition = "excellent"
)

// ParseCondition maps free-form input onto a Condition, defaulting to average.
func ParseCondition(raw string) Condition {
	switch Condition(raw) {
	case ConditionProject, ConditionFair, ConditionAverage, ConditionGood, ConditionExcellent:
		return Condition(raw)
	default:
		return ConditionAverage
	}
}

// Plausibility bounds for vessel attributes.
const (
	MinYear  = 1950
	MinLOAFt = 20.0
	MaxLOAFt = 500.0
	MaxHours = 20000
)

// MaxYear returns the latest plausible model year (next year's models appear
// mid-season).
func MaxYear() int {
	return time.Now().Year() + 1
}

// Age returns the vessel's age in years, or zero when the year is unknown or
// in the future.
func (v VesselProfile) Age() int {
	if v.Year == nil {
		return 0
	}
	age := time.Now().Year() - *v.Year
	if age < 0 {
		return 0
	}
	return age
}

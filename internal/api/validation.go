package api

import (
	"fmt"
	"strings"

	"github.com/wavemarine/deckworth/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// VesselRequest is the wire shape of a vessel submission. Numeric fields are
// pointers so absent and zero can be told apart.
type VesselRequest struct {
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Year      *int     `json:"year,omitempty"`
	LOAFt     *float64 `json:"loaFt,omitempty"`
	FuelType  string   `json:"fuelType,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Hours     *int     `json:"hours,omitempty"`
}

// ValidateVesselRequest checks bounds and required fields and returns the
// parsed profile. Unknown fuel and condition strings degrade rather than
// reject.
func ValidateVesselRequest(req VesselRequest) (models.VesselProfile, error) {
	var profile models.VesselProfile

	if strings.TrimSpace(req.Brand) == "" {
		return profile, ValidationError{Field: "brand", Message: "brand is required"}
	}
	if strings.TrimSpace(req.Model) == "" {
		return profile, ValidationError{Field: "model", Message: "model is required"}
	}

	if req.Year != nil {
		if *req.Year < models.MinYear || *req.Year > models.MaxYear() {
			return profile, ValidationError{
				Field:   "year",
				Message: fmt.Sprintf("year must be between %d and %d", models.MinYear, models.MaxYear()),
			}
		}
	}

	if req.LOAFt != nil {
		if *req.LOAFt < models.MinLOAFt || *req.LOAFt > models.MaxLOAFt {
			return profile, ValidationError{
				Field:   "loaFt",
				Message: fmt.Sprintf("length must be between %g and %g feet", models.MinLOAFt, models.MaxLOAFt),
			}
		}
	}

	if req.Hours != nil {
		if *req.Hours < 0 || *req.Hours > models.MaxHours {
			return profile, ValidationError{
				Field:   "hours",
				Message: fmt.Sprintf("hours must be between 0 and %d", models.MaxHours),
			}
		}
	}

	profile = models.VesselProfile{
		Brand:     strings.TrimSpace(req.Brand),
		Model:     strings.TrimSpace(req.Model),
		Year:      req.Year,
		LOAFt:     req.LOAFt,
		FuelType:  models.ParseFuelType(req.FuelType),
		Condition: models.ParseCondition(req.Condition),
		Hours:     req.Hours,
	}
	return profile, nil
}

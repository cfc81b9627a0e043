package models

import "time"

// Lead is a stored contact who requested a valuation.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	PremiumLead bool      `json:"premiumLead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VesselRecord is the stored snapshot of the vessel a lead submitted.
type VesselRecord struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      *int      `json:"year,omitempty"`
	LOAFt     *float64  `json:"loaFt,omitempty"`
	FuelType  FuelType  `json:"fuelType"`
	Condition Condition `json:"condition"`
	Hours     *int      `json:"hours,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EstimateRecord is the stored outcome of one valuation run.
type EstimateRecord struct {
	ID          string           `json:"id"`
	LeadID      string           `json:"leadId,omitempty"`
	VesselID    string           `json:"vesselId"`
	Low         *float64         `json:"valuationLow,omitempty"`
	Mid         *float64         `json:"valuationMid,omitempty"`
	High        *float64         `json:"valuationHigh,omitempty"`
	Wholesale   *float64         `json:"wholesale,omitempty"`
	Confidence  ConfidenceLevel  `json:"confidence"`
	Status      GenerationStatus `json:"status"`
	Narrative   string           `json:"narrative"`
	Assumptions []string         `json:"assumptions"`
	CompCount   int              `json:"compCount"`
	RealComps   int              `json:"realComps"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// CreateLeadRequest captures a lead submission together with the vessel it
// concerns.
type CreateLeadRequest struct {
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Phone  string        `json:"phone,omitempty"`
	Vessel VesselProfile `json:"vessel"`
}

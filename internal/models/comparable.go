package models

import (
	"fmt"
	"strings"
)

// CompSource records where a comparable came from, so downstream confidence
// labeling can reflect the real/synthetic mix.
type CompSource string

const (
	CompSourceListing   CompSource = "listing"   // normalized from a live brokerage listing
	CompSourceSynthetic CompSource = "synthetic" // generated from price heuristics
)

// Comparable is a normalized record of a similar vessel's asking price, used
// as market evidence. Comparables are request-scoped and never persisted by
// the pipeline.
type Comparable struct {
	Title      string     `json:"title"`
	Ask        int        `json:"ask"`
	Year       *int       `json:"year"`
	LOAFt      *float64   `json:"loa"`
	Region     string     `json:"region"`
	URL        string     `json:"url,omitempty"`
	Brand      string     `json:"brand"`
	Model      string     `json:"model"`
	EngineType string     `json:"engine_type"`
	Source     CompSource `json:"source"`
}

// IsReal reports whether the comparable came from live market data.
func (c Comparable) IsReal() bool {
	return c.Source == CompSourceListing
}

// BuildTitle derives the display title used when a listing carries none.
func BuildTitle(year *int, brand, model string) string {
	yearStr := ""
	if year != nil {
		yearStr = fmt.Sprintf("%d", *year)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(yearStr+" "+brand+" "+model), " "))
}

// MarketSummary holds descriptive statistics over a comparable set. An empty
// input list produces the zero value, never NaN.
type MarketSummary struct {
	AvgPrice    int        `json:"avgPrice"`
	MedianPrice int        `json:"medianPrice"`
	PriceRange  PriceRange `json:"priceRange"`
	SampleSize  int        `json:"sampleSize"`
}

// PriceRange is the min/max asking price observed in a comparable set.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

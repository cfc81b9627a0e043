package api

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wavemarine/deckworth/internal/listings"
	"github.com/wavemarine/deckworth/internal/metrics"
	"github.com/wavemarine/deckworth/internal/models"
	"github.com/wavemarine/deckworth/internal/valuation"
)

func newValuationHandler(t *testing.T, listingsHandler http.HandlerFunc, gen valuation.Generator) *ValuationHandler {
	t.Helper()

	cfg := listings.Config{}
	if listingsHandler != nil {
		upstream := httptest.NewServer(listingsHandler)
		t.Cleanup(upstream.Close)
		cfg = listings.Config{BaseURL: upstream.URL, APIKey: "key", BrokerID: "42"}
	}

	svc := listings.NewService(cfg, slog.Default())
	synth := valuation.NewSyntheticGenerator(rand.New(rand.NewSource(3)))
	estimator := valuation.NewEstimator(svc, gen, synth, slog.Default())

	collector, err := metrics.NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	return NewValuationHandler(estimator, gen, nil, nil, collector, slog.Default())
}

func emptyListings(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"results": []}`))
}

func TestEstimateEndpoint(t *testing.T) {
	gen := &valuation.MockGenerator{Response: valuation.GenerationResult{Status: models.GenerationError}}
	h := newValuationHandler(t, emptyListings, gen)

	body := strings.NewReader(`{"brand": "Sea Ray", "model": "Sundancer", "year": 2015, "loaFt": 35, "fuelType": "gas", "condition": "good", "hours": 500}`)
	rec := httptest.NewRecorder()
	h.Estimate(rec, httptest.NewRequest(http.MethodPost, "/api/estimate", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%q", rec.Code, rec.Body.String())
	}

	var result models.ValuationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}

	if result.Confidence != models.ConfidenceLow {
		t.Errorf("expected Low confidence on degraded path, got %s", result.Confidence)
	}
	if result.Low == nil || result.Mid == nil || result.High == nil || result.Wholesale == nil {
		t.Error("expected a complete valuation quadruple")
	}
	if result.InputsEcho["brand"] != "Sea Ray" {
		t.Errorf("expected inputs echo, got %v", result.InputsEcho)
	}
}

func TestEstimateEndpointRejectsInvalidBody(t *testing.T) {
	h := newValuationHandler(t, emptyListings, valuation.NewMockGenerator("{}"))

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"brand": `},
		{name: "missing brand", body: `{"model": "Sundancer"}`},
		{name: "year out of range", body: `{"brand": "Sea Ray", "model": "Sundancer", "year": 1800}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Estimate(rec, httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestEstimateEndpointRejectsGet(t *testing.T) {
	h := newValuationHandler(t, emptyListings, valuation.NewMockGenerator("{}"))

	rec := httptest.NewRecorder()
	h.Estimate(rec, httptest.NewRequest(http.MethodGet, "/api/estimate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestEstimateEndpointWithoutAnyConfiguration(t *testing.T) {
	gen := &valuation.MockGenerator{Disabled: true}
	h := newValuationHandler(t, nil, gen)

	body := strings.NewReader(`{"brand": "Sea Ray", "model": "Sundancer"}`)
	rec := httptest.NewRecorder()
	h.Estimate(rec, httptest.NewRequest(http.MethodPost, "/api/estimate", body))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when nothing is configured, got %d", rec.Code)
	}
}

func TestValuateEndpoint(t *testing.T) {
	gen := valuation.NewMockGenerator(`{
		"valuation_low": 180000, "valuation_mid": 250000, "valuation_high": 320000,
		"wholesale": 150000, "confidence": "Medium",
		"narrative": "A well regarded express cruiser with broad market appeal."
	}`)
	h := newValuationHandler(t, nil, gen)

	body := strings.NewReader(`{"brand": "Sea Ray", "model": "Sundancer", "year": 2015}`)
	rec := httptest.NewRecorder()
	h.Valuate(rec, httptest.NewRequest(http.MethodPost, "/api/valuation", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%q", rec.Code, rec.Body.String())
	}

	var result models.ValuationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}

	if result.Mid == nil || *result.Mid != 250000 {
		t.Errorf("expected mid 250000, got %v", result.Mid)
	}
	if result.Confidence != models.ConfidenceMedium {
		t.Errorf("expected Medium confidence, got %s", result.Confidence)
	}
	if !strings.Contains(result.Narrative, "Estimated Market Range:") {
		t.Errorf("expected token line in narrative, got %q", result.Narrative)
	}
}

func TestValuateEndpointUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		gen    valuation.Generator
		status int
	}{
		{
			name:   "generator disabled",
			gen:    &valuation.MockGenerator{Disabled: true},
			status: http.StatusBadGateway,
		},
		{
			name:   "rate limited",
			gen:    &valuation.MockGenerator{Response: valuation.GenerationResult{Status: models.GenerationRateLimited}},
			status: http.StatusTooManyRequests,
		},
		{
			name:   "hard error",
			gen:    &valuation.MockGenerator{Response: valuation.GenerationResult{Status: models.GenerationError}},
			status: http.StatusBadGateway,
		},
		{
			name:   "unusable payload",
			gen:    valuation.NewMockGenerator(`no json here`),
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newValuationHandler(t, nil, tt.gen)

			body := strings.NewReader(`{"brand": "Sea Ray", "model": "Sundancer"}`)
			rec := httptest.NewRecorder()
			h.Valuate(rec, httptest.NewRequest(http.MethodPost, "/api/valuation", body))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d body=%q", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

package database

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/wavemarine/deckworth/internal/models"
)

// testDB connects to the database named by DATABASE_TEST_URL, skipping the
// test when none is configured. Migrations run against it first.
func testDB(t *testing.T) *contextDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_TEST_URL")
	if dbURL == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.URL = dbURL

	db, err := Connect(ctx, cfg)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db, "../../migrations", slog.Default()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &contextDB{ctx: ctx, leads: NewLeadRepository(db), estimates: NewEstimateRepository(db)}
}

type contextDB struct {
	ctx       context.Context
	leads     *LeadRepository
	estimates *EstimateRepository
}

func TestLeadAndEstimateRoundTrip(t *testing.T) {
	tdb := testDB(t)

	req := models.CreateLeadRequest{
		Name:  "Test Owner",
		Email: "owner@example.com",
		Phone: "555-0100",
		Vessel: models.VesselProfile{
			Brand:     "Sea Ray",
			Model:     "Sundancer",
			Year:      models.Int(2015),
			LOAFt:     models.Float(35),
			FuelType:  models.FuelGas,
			Condition: models.ConditionGood,
			Hours:     models.Int(500),
		},
	}

	lead, vesselID, err := tdb.leads.CreateLead(tdb.ctx, req, true)
	if err != nil {
		t.Fatalf("CreateLead returned error: %v", err)
	}
	if lead.ID == "" || vesselID == "" {
		t.Fatal("expected generated identifiers")
	}
	if !lead.PremiumLead {
		t.Error("expected premium flag to persist")
	}

	result := &models.ValuationResult{
		Low:         models.Float(180000),
		Mid:         models.Float(235000),
		High:        models.Float(330000),
		Wholesale:   models.Float(140000),
		Confidence:  models.ConfidenceHigh,
		Status:      models.GenerationOK,
		Narrative:   "Strong market.",
		Assumptions: []string{"asking prices used as proxy for sold prices"},
		Comps: []models.Comparable{
			{Ask: 200000, Source: models.CompSourceListing},
			{Ask: 250000, Source: models.CompSourceSynthetic},
		},
	}

	stored, err := tdb.estimates.RecordEstimate(tdb.ctx, lead.ID, vesselID, result)
	if err != nil {
		t.Fatalf("RecordEstimate returned error: %v", err)
	}

	fetched, err := tdb.estimates.GetEstimate(tdb.ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetEstimate returned error: %v", err)
	}

	if fetched.LeadID != lead.ID {
		t.Errorf("expected lead id %s, got %s", lead.ID, fetched.LeadID)
	}
	if fetched.Mid == nil || *fetched.Mid != 235000 {
		t.Errorf("expected mid 235000, got %v", fetched.Mid)
	}
	if fetched.Confidence != models.ConfidenceHigh {
		t.Errorf("expected High confidence, got %s", fetched.Confidence)
	}
	if fetched.CompCount != 2 || fetched.RealComps != 1 {
		t.Errorf("expected comp counts 2/1, got %d/%d", fetched.CompCount, fetched.RealComps)
	}
	if len(fetched.Assumptions) != 1 {
		t.Errorf("expected one assumption, got %v", fetched.Assumptions)
	}

	leads, err := tdb.leads.ListLeads(tdb.ctx, 10)
	if err != nil {
		t.Fatalf("ListLeads returned error: %v", err)
	}
	found := false
	for _, l := range leads {
		if l.ID == lead.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected stored lead in listing")
	}
}

func TestCreateVesselWithoutLead(t *testing.T) {
	tdb := testDB(t)

	vesselID, err := tdb.leads.CreateVessel(tdb.ctx, models.VesselProfile{
		Brand: "Boston Whaler",
		Model: "Outrage",
	})
	if err != nil {
		t.Fatalf("CreateVessel returned error: %v", err)
	}
	if vesselID == "" {
		t.Fatal("expected generated vessel id")
	}

	result := &models.ValuationResult{
		Mid:        models.Float(90000),
		Confidence: models.ConfidenceLow,
		Status:     models.GenerationError,
	}

	stored, err := tdb.estimates.RecordEstimate(tdb.ctx, "", vesselID, result)
	if err != nil {
		t.Fatalf("RecordEstimate returned error: %v", err)
	}

	fetched, err := tdb.estimates.GetEstimate(tdb.ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetEstimate returned error: %v", err)
	}
	if fetched.LeadID != "" {
		t.Errorf("expected empty lead id for anonymous estimate, got %q", fetched.LeadID)
	}
}

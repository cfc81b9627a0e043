package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wavemarine/deckworth/internal/models"
)

// EstimateRepository handles estimate database operations.
type EstimateRepository struct {
	db *sql.DB
}

// NewEstimateRepository creates a new estimate repository.
func NewEstimateRepository(db *sql.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

// RecordEstimate stores the outcome of a valuation run against a vessel
// record. The leadID may be empty for anonymous estimates.
func (r *EstimateRepository) RecordEstimate(ctx context.Context, leadID, vesselID string, result *models.ValuationResult) (*models.EstimateRecord, error) {
	estimateID := uuid.New().String()
	now := time.Now()

	realComps := 0
	for _, c := range result.Comps {
		if c.IsReal() {
			realComps++
		}
	}

	query := `
		INSERT INTO estimates (id, lead_id, vessel_id, valuation_low, valuation_mid, valuation_high, wholesale, confidence, status, narrative, assumptions, comp_count, real_comps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var lead interface{}
	if leadID != "" {
		lead = leadID
	}

	assumptions := result.Assumptions
	if assumptions == nil {
		assumptions = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		estimateID, lead, vesselID,
		result.Low, result.Mid, result.High, result.Wholesale,
		string(result.Confidence), string(result.Status),
		result.Narrative, pq.Array(assumptions),
		len(result.Comps), realComps, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record estimate: %w", err)
	}

	record := &models.EstimateRecord{
		ID:          estimateID,
		LeadID:      leadID,
		VesselID:    vesselID,
		Low:         result.Low,
		Mid:         result.Mid,
		High:        result.High,
		Wholesale:   result.Wholesale,
		Confidence:  result.Confidence,
		Status:      result.Status,
		Narrative:   result.Narrative,
		Assumptions: assumptions,
		CompCount:   len(result.Comps),
		RealComps:   realComps,
		CreatedAt:   now,
	}
	return record, nil
}

// GetEstimate fetches a stored estimate by id.
func (r *EstimateRepository) GetEstimate(ctx context.Context, id string) (*models.EstimateRecord, error) {
	query := `
		SELECT id, lead_id, vessel_id, valuation_low, valuation_mid, valuation_high, wholesale, confidence, status, narrative, assumptions, comp_count, real_comps, created_at
		FROM estimates
		WHERE id = $1
	`

	var record models.EstimateRecord
	var leadID sql.NullString
	var confidence, status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &leadID, &record.VesselID,
		&record.Low, &record.Mid, &record.High, &record.Wholesale,
		&confidence, &status, &record.Narrative,
		pq.Array(&record.Assumptions),
		&record.CompCount, &record.RealComps, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("estimate %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get estimate: %w", err)
	}

	record.LeadID = leadID.String
	record.Confidence = models.ParseConfidence(confidence)
	record.Status = models.GenerationStatus(status)
	return &record, nil
}

// CountByConfidence returns the number of stored estimates per confidence
// label, for the admin dashboard.
func (r *EstimateRepository) CountByConfidence(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT confidence, COUNT(*) FROM estimates GROUP BY confidence`)
	if err != nil {
		return nil, fmt.Errorf("failed to count estimates: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan estimate count: %w", err)
		}
		counts[label] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate estimate counts: %w", err)
	}

	return counts, nil
}

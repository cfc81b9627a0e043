package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wavemarine/deckworth/internal/models"
)

// LeadRepository handles lead and vessel database operations.
type LeadRepository struct {
	db *sql.DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// CreateLead stores a lead and its vessel snapshot in one transaction and
// returns the stored lead together with the vessel record id.
func (r *LeadRepository) CreateLead(ctx context.Context, req models.CreateLeadRequest, premium bool) (*models.Lead, string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	leadID := uuid.New().String()
	vesselID := uuid.New().String()
	now := time.Now()

	leadQuery := `
		INSERT INTO leads (id, name, email, phone, premium_lead, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err = tx.ExecContext(ctx, leadQuery, leadID, req.Name, req.Email, req.Phone, premium, now); err != nil {
		return nil, "", fmt.Errorf("failed to create lead: %w", err)
	}

	vesselQuery := `
		INSERT INTO vessels (id, lead_id, brand, model, year, loa_ft, fuel_type, condition, hours, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	v := req.Vessel
	if _, err = tx.ExecContext(ctx, vesselQuery, vesselID, leadID, v.Brand, v.Model, v.Year, v.LOAFt, string(v.FuelType), string(v.Condition), v.Hours, now); err != nil {
		return nil, "", fmt.Errorf("failed to create vessel record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	lead := &models.Lead{
		ID:          leadID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		PremiumLead: premium,
		CreatedAt:   now,
	}
	return lead, vesselID, nil
}

// CreateVessel stores a vessel snapshot without a lead, for anonymous
// estimate requests.
func (r *LeadRepository) CreateVessel(ctx context.Context, v models.VesselProfile) (string, error) {
	vesselID := uuid.New().String()
	now := time.Now()

	query := `
		INSERT INTO vessels (id, lead_id, brand, model, year, loa_ft, fuel_type, condition, hours, created_at)
		VALUES ($1, NULL, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := r.db.ExecContext(ctx, query, vesselID, v.Brand, v.Model, v.Year, v.LOAFt, string(v.FuelType), string(v.Condition), v.Hours, now); err != nil {
		return "", fmt.Errorf("failed to create vessel record: %w", err)
	}
	return vesselID, nil
}

// ListLeads returns the most recent leads, newest first.
func (r *LeadRepository) ListLeads(ctx context.Context, limit int) ([]models.Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, email, phone, premium_lead, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var lead models.Lead
		var phone sql.NullString
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Email, &phone, &lead.PremiumLead, &lead.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		lead.Phone = phone.String
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, nil
}

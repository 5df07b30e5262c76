package repository

import (
	"context"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
)

type CreateOverrideInput struct {
	PartnerID int64
	Date      availability.Date
	Type      string
	Reason    *string
}

type OverrideRepository struct {
	db DBTX
}

func NewOverrideRepository(db DBTX) *OverrideRepository {
	return &OverrideRepository{db: db}
}

func (r *OverrideRepository) Create(ctx context.Context, input CreateOverrideInput) (*models.AvailabilityOverride, error) {
	query := `
		INSERT INTO availability_overrides (partner_id, date, type, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, partner_id, date, type, reason, created_at
	`

	var override models.AvailabilityOverride
	var date time.Time
	err := r.db.QueryRow(ctx, query, input.PartnerID, input.Date.Time(), input.Type, input.Reason).Scan(
		&override.ID,
		&override.PartnerID,
		&date,
		&override.Type,
		&override.Reason,
		&override.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	override.Date = availability.DateOf(date)
	return &override, nil
}

func (r *OverrideRepository) ListByPartner(ctx context.Context, partnerID int64) ([]models.AvailabilityOverride, error) {
	query := `
		SELECT id, partner_id, date, type, reason, created_at
		FROM availability_overrides
		WHERE partner_id = $1
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make([]models.AvailabilityOverride, 0)
	for rows.Next() {
		var override models.AvailabilityOverride
		var date time.Time
		if err := rows.Scan(
			&override.ID,
			&override.PartnerID,
			&date,
			&override.Type,
			&override.Reason,
			&override.CreatedAt,
		); err != nil {
			return nil, err
		}
		override.Date = availability.DateOf(date)
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overrides, nil
}

func (r *OverrideRepository) ExistsForDate(ctx context.Context, partnerID int64, date availability.Date) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM availability_overrides
			WHERE partner_id = $1 AND date = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, partnerID, date.Time()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *OverrideRepository) GetByID(ctx context.Context, overrideID int64) (*models.AvailabilityOverride, error) {
	query := `
		SELECT id, partner_id, date, type, reason, created_at
		FROM availability_overrides
		WHERE id = $1
	`

	var override models.AvailabilityOverride
	var date time.Time
	err := r.db.QueryRow(ctx, query, overrideID).Scan(
		&override.ID,
		&override.PartnerID,
		&date,
		&override.Type,
		&override.Reason,
		&override.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	override.Date = availability.DateOf(date)
	return &override, nil
}

func (r *OverrideRepository) Delete(ctx context.Context, overrideID int64, partnerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM availability_overrides
		WHERE id = $1 AND partner_id = $2
	`, overrideID, partnerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

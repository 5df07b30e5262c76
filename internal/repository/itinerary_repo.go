package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
)

type CreateItineraryInput struct {
	TravelerID int64
	PartnerID  int64
	StartDate  availability.Date
	EndDate    availability.Date
	Notes      *string
}

type ItineraryListFilter struct {
	Status    string
	Timeframe string
}

type ItineraryRepository struct {
	db DBTX
}

func NewItineraryRepository(db DBTX) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

const itineraryColumns = `id, traveler_id, partner_id, start_date, end_date, status, notes, created_at, updated_at`

func (r *ItineraryRepository) Create(ctx context.Context, input CreateItineraryInput) (*models.Itinerary, error) {
	query := `
		INSERT INTO itineraries (traveler_id, partner_id, start_date, end_date, status, notes)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		RETURNING ` + itineraryColumns

	return r.scanItinerary(r.db.QueryRow(
		ctx,
		query,
		input.TravelerID,
		input.PartnerID,
		input.StartDate.Time(),
		input.EndDate.Time(),
		input.Notes,
	))
}

func (r *ItineraryRepository) GetByID(ctx context.Context, itineraryID int64) (*models.Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = $1`
	return r.scanItinerary(r.db.QueryRow(ctx, query, itineraryID))
}

func (r *ItineraryRepository) GetByIDForUpdate(ctx context.Context, itineraryID int64) (*models.Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = $1 FOR UPDATE`
	return r.scanItinerary(r.db.QueryRow(ctx, query, itineraryID))
}

// HasConflict reports whether the partner already has a pending or confirmed
// itinerary overlapping the inclusive [start, end] range.
func (r *ItineraryRepository) HasConflict(
	ctx context.Context,
	partnerID int64,
	start availability.Date,
	end availability.Date,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM itineraries
			WHERE partner_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, partnerID, start.Time(), end.Time()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListRangesForPartner returns the booked date ranges that should block the
// partner's calendar.
func (r *ItineraryRepository) ListRangesForPartner(ctx context.Context, partnerID int64) ([]availability.BookingRange, error) {
	query := `
		SELECT start_date, end_date
		FROM itineraries
		WHERE partner_id = $1
		  AND status IN ('pending', 'confirmed')
		ORDER BY start_date ASC
	`

	rows, err := r.db.Query(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranges := make([]availability.BookingRange, 0)
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		ranges = append(ranges, availability.BookingRange{
			Start: availability.DateOf(start),
			End:   availability.DateOf(end),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ranges, nil
}

func (r *ItineraryRepository) List(
	ctx context.Context,
	actorID int64,
	role string,
	filter ItineraryListFilter,
) ([]models.Itinerary, error) {
	conditions := []string{}
	args := []any{}

	if role == "traveler" {
		args = append(args, actorID)
		conditions = append(conditions, fmt.Sprintf("traveler_id = $%d", len(args)))
	} else {
		args = append(args, actorID)
		conditions = append(conditions, fmt.Sprintf("partner_id = $%d", len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	switch filter.Timeframe {
	case "upcoming":
		conditions = append(conditions, "end_date >= CURRENT_DATE")
	case "past":
		conditions = append(conditions, "end_date < CURRENT_DATE")
	}

	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY start_date DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itineraries := make([]models.Itinerary, 0)
	for rows.Next() {
		itinerary, err := r.scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		itineraries = append(itineraries, *itinerary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return itineraries, nil
}

func (r *ItineraryRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	itineraryID int64,
	currentStatus string,
	nextStatus string,
) (*models.Itinerary, error) {
	query := `
		UPDATE itineraries
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + itineraryColumns

	return r.scanItinerary(r.db.QueryRow(ctx, query, itineraryID, currentStatus, nextStatus))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ItineraryRepository) scanItinerary(row rowScanner) (*models.Itinerary, error) {
	var itinerary models.Itinerary
	var start, end time.Time
	err := row.Scan(
		&itinerary.ID,
		&itinerary.TravelerID,
		&itinerary.PartnerID,
		&start,
		&end,
		&itinerary.Status,
		&itinerary.Notes,
		&itinerary.CreatedAt,
		&itinerary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	itinerary.StartDate = availability.DateOf(start)
	itinerary.EndDate = availability.DateOf(end)
	return &itinerary, nil
}

package repository

import (
	"context"
	"encoding/json"

	"github.com/Migueljuen/ItineraBack/internal/models"
)

type PartnerOnboardingInput struct {
	Bio       string
	Location  string
	Languages []string
	DailyRate float64
}

type UpdatePartnerProfileInput struct {
	Bio       *string
	Location  *string
	Languages *[]string
	DailyRate *float64
}

type PartnerProfileRepository struct {
	db DBTX
}

func NewPartnerProfileRepository(db DBTX) *PartnerProfileRepository {
	return &PartnerProfileRepository{db: db}
}

func (r *PartnerProfileRepository) CreateEmpty(ctx context.Context, userID int64, partnerType string) error {
	query := `INSERT INTO partner_profiles (user_id, type, weekly_availability) VALUES ($1, $2, '[]')`
	_, err := r.db.Exec(ctx, query, userID, partnerType)
	return err
}

func (r *PartnerProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.PartnerProfile, error) {
	query := `
		SELECT id, user_id, type, bio, location, languages, daily_rate, rating,
			   is_verified, weekly_availability, onboarding_complete, created_at, updated_at
		FROM partner_profiles
		WHERE user_id = $1
	`
	return r.scanProfile(ctx, query, userID)
}

func (r *PartnerProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req PartnerOnboardingInput) (*models.PartnerProfile, error) {
	query := `
		UPDATE partner_profiles
		SET bio = $1,
			location = $2,
			languages = $3,
			daily_rate = $4,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $5
		RETURNING id, user_id, type, bio, location, languages, daily_rate, rating,
				  is_verified, weekly_availability, onboarding_complete, created_at, updated_at
	`
	return r.scanProfile(ctx, query, req.Bio, req.Location, req.Languages, req.DailyRate, userID)
}

func (r *PartnerProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdatePartnerProfileInput) (*models.PartnerProfile, error) {
	query := `
		UPDATE partner_profiles
		SET bio = COALESCE($1, bio),
			location = COALESCE($2, location),
			languages = COALESCE($3, languages),
			daily_rate = COALESCE($4, daily_rate),
			updated_at = NOW()
		WHERE user_id = $5
		RETURNING id, user_id, type, bio, location, languages, daily_rate, rating,
				  is_verified, weekly_availability, onboarding_complete, created_at, updated_at
	`
	return r.scanProfile(ctx, query, req.Bio, req.Location, req.Languages, req.DailyRate, userID)
}

// UpdateWeeklyAvailability replaces the stored weekly pattern with the full
// recomputed set. The column is a JSON-encoded array of weekday names.
func (r *PartnerProfileRepository) UpdateWeeklyAvailability(ctx context.Context, userID int64, days []string) (*models.PartnerProfile, error) {
	encoded, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE partner_profiles
		SET weekly_availability = $1,
			updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, type, bio, location, languages, daily_rate, rating,
				  is_verified, weekly_availability, onboarding_complete, created_at, updated_at
	`
	return r.scanProfile(ctx, query, encoded, userID)
}

func (r *PartnerProfileRepository) scanProfile(ctx context.Context, query string, args ...any) (*models.PartnerProfile, error) {
	var profile models.PartnerProfile
	var weekly []byte
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Type,
		&profile.Bio,
		&profile.Location,
		&profile.Languages,
		&profile.DailyRate,
		&profile.Rating,
		&profile.IsVerified,
		&weekly,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	profile.WeeklyAvailability = []string{}
	if len(weekly) > 0 {
		if err := json.Unmarshal(weekly, &profile.WeeklyAvailability); err != nil {
			return nil, err
		}
	}
	return &profile, nil
}

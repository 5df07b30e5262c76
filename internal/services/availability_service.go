package services

import (
	"context"
	"errors"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

type partnerProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.PartnerProfile, error)
	UpdateWeeklyAvailability(ctx context.Context, userID int64, days []string) (*models.PartnerProfile, error)
}

type overrideStore interface {
	Create(ctx context.Context, input repository.CreateOverrideInput) (*models.AvailabilityOverride, error)
	ListByPartner(ctx context.Context, partnerID int64) ([]models.AvailabilityOverride, error)
	ExistsForDate(ctx context.Context, partnerID int64, date availability.Date) (bool, error)
	Delete(ctx context.Context, overrideID int64, partnerID int64) (bool, error)
}

type bookingRangeReader interface {
	ListRangesForPartner(ctx context.Context, partnerID int64) ([]availability.BookingRange, error)
}

type AvailabilityService struct {
	profileRepo  partnerProfileStore
	overrideRepo overrideStore
	bookingRepo  bookingRangeReader
}

func NewAvailabilityService(
	profileRepo partnerProfileStore,
	overrideRepo overrideStore,
	bookingRepo bookingRangeReader,
) *AvailabilityService {
	return &AvailabilityService{
		profileRepo:  profileRepo,
		overrideRepo: overrideRepo,
		bookingRepo:  bookingRepo,
	}
}

type AddOverrideInput struct {
	Date   availability.Date
	Reason *string
}

type CalendarDay struct {
	Date      availability.Date            `json:"date"`
	Available bool                         `json:"available"`
	Reason    string                       `json:"reason"`
	InMonth   bool                         `json:"in_month"`
	Override  *models.AvailabilityOverride `json:"override,omitempty"`
}

type MonthCalendar struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Days  []CalendarDay `json:"days"`
}

func (s *AvailabilityService) ListOverrides(ctx context.Context, partnerID int64) ([]models.AvailabilityOverride, error) {
	if partnerID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.overrideRepo.ListByPartner(ctx, partnerID)
}

// AddOverride marks a date unavailable on the partner's own calendar. Past
// dates are rejected before touching the database, booked dates cannot be
// overridden, and one override per date is enforced here rather than silently
// picking a winner later.
func (s *AvailabilityService) AddOverride(
	ctx context.Context,
	actorID int64,
	role string,
	input AddOverrideInput,
) (*models.AvailabilityOverride, error) {
	if !isPartnerRole(role) {
		return nil, ErrForbidden
	}
	if input.Date.IsZero() {
		return nil, ErrInvalidInput
	}
	if input.Date.Before(availability.Today()) {
		return nil, ErrPastDate
	}

	ranges, err := s.bookingRepo.ListRangesForPartner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	for _, r := range ranges {
		if r.Contains(input.Date) {
			return nil, ErrDateBooked
		}
	}

	exists, err := s.overrideRepo.ExistsForDate(ctx, actorID, input.Date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateOverride
	}

	return s.overrideRepo.Create(ctx, repository.CreateOverrideInput{
		PartnerID: actorID,
		Date:      input.Date,
		Type:      availability.OverrideUnavailable,
		Reason:    input.Reason,
	})
}

func (s *AvailabilityService) RemoveOverride(
	ctx context.Context,
	actorID int64,
	role string,
	overrideID int64,
) error {
	if !isPartnerRole(role) {
		return ErrForbidden
	}
	if overrideID <= 0 {
		return ErrInvalidInput
	}

	deleted, err := s.overrideRepo.Delete(ctx, overrideID, actorID)
	if err != nil {
		return err
	}
	if !deleted {
		return pgx.ErrNoRows
	}
	return nil
}

// ToggleWeeklyDay recomputes the full weekly set from the stored pattern and
// persists it in one request, so concurrent toggles on different days each
// submit their own complete snapshot.
func (s *AvailabilityService) ToggleWeeklyDay(
	ctx context.Context,
	actorID int64,
	role string,
	day string,
	present bool,
) (*models.PartnerProfile, error) {
	if !isPartnerRole(role) {
		return nil, ErrForbidden
	}

	profile, err := s.profileRepo.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	next := availability.NewWeeklySet(profile.WeeklyAvailability).With(day, present)
	return s.profileRepo.UpdateWeeklyAvailability(ctx, actorID, next.Days())
}

// SetWeeklyAvailability replaces the whole pattern, used by the profile PUT
// endpoint where the client submits the JSON-encoded weekday list.
func (s *AvailabilityService) SetWeeklyAvailability(
	ctx context.Context,
	actorID int64,
	role string,
	days []string,
) (*models.PartnerProfile, error) {
	if !isPartnerRole(role) {
		return nil, ErrForbidden
	}
	return s.profileRepo.UpdateWeeklyAvailability(ctx, actorID, availability.NewWeeklySet(days).Days())
}

// Calendar resolves every cell of the displayed month's grid for a partner.
func (s *AvailabilityService) Calendar(
	ctx context.Context,
	partnerID int64,
	year int,
	month time.Month,
) (*MonthCalendar, error) {
	if partnerID <= 0 || year < 1 || month < time.January || month > time.December {
		return nil, ErrInvalidInput
	}

	weekly, overrides, overrideModels, ranges, err := s.loadInputs(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	grid := availability.MonthGrid(year, month)
	days := make([]CalendarDay, 0, len(grid))
	for _, date := range grid {
		res := availability.Resolve(weekly, overrides, ranges, date)
		day := CalendarDay{
			Date:      date,
			Available: res.Available,
			Reason:    res.Reason,
			InMonth:   date.Month == month,
		}
		if res.Override != nil {
			day.Override = overrideByID(overrideModels, res.Override.ID)
		}
		days = append(days, day)
	}

	return &MonthCalendar{Year: year, Month: month, Days: days}, nil
}

// IsRangeAvailable reports whether every date in the inclusive range resolves
// available. Booked dates resolve unavailable, so overlapping itineraries fail
// here too.
func (s *AvailabilityService) IsRangeAvailable(
	ctx context.Context,
	partnerID int64,
	start availability.Date,
	end availability.Date,
) (bool, error) {
	weekly, overrides, _, ranges, err := s.loadInputs(ctx, partnerID)
	if err != nil {
		return false, err
	}

	for date := start; !date.After(end); date = date.AddDays(1) {
		if !availability.Resolve(weekly, overrides, ranges, date).Available {
			return false, nil
		}
	}
	return true, nil
}

func (s *AvailabilityService) loadInputs(ctx context.Context, partnerID int64) (
	availability.WeeklySet,
	[]availability.Override,
	[]models.AvailabilityOverride,
	[]availability.BookingRange,
	error,
) {
	profile, err := s.profileRepo.GetByUserID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, nil, ErrPartnerNotFound
		}
		return nil, nil, nil, nil, err
	}

	overrideModels, err := s.overrideRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ranges, err := s.bookingRepo.ListRangesForPartner(ctx, partnerID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	overrides := make([]availability.Override, 0, len(overrideModels))
	for _, m := range overrideModels {
		overrides = append(overrides, availability.Override{
			ID:     m.ID,
			Date:   m.Date,
			Type:   m.Type,
			Reason: m.Reason,
		})
	}

	return availability.NewWeeklySet(profile.WeeklyAvailability), overrides, overrideModels, ranges, nil
}

func overrideByID(overrides []models.AvailabilityOverride, id int64) *models.AvailabilityOverride {
	for i := range overrides {
		if overrides[i].ID == id {
			return &overrides[i]
		}
	}
	return nil
}

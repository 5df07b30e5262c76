package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
)

type stubProfileStore struct {
	profile     *models.PartnerProfile
	getErr      error
	updateErr   error
	lastDays    []string
	updateCalls int
}

func (s *stubProfileStore) GetByUserID(_ context.Context, _ int64) (*models.PartnerProfile, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.profile, nil
}

func (s *stubProfileStore) UpdateWeeklyAvailability(_ context.Context, _ int64, days []string) (*models.PartnerProfile, error) {
	s.updateCalls++
	s.lastDays = days
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	updated := *s.profile
	updated.WeeklyAvailability = days
	return &updated, nil
}

type stubOverrideStore struct {
	overrides   []models.AvailabilityOverride
	exists      bool
	createErr   error
	deleted     bool
	lastCreate  repository.CreateOverrideInput
	createCalls int
	existsCalls int
}

func (s *stubOverrideStore) Create(_ context.Context, input repository.CreateOverrideInput) (*models.AvailabilityOverride, error) {
	s.createCalls++
	s.lastCreate = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.AvailabilityOverride{
		ID:        99,
		PartnerID: input.PartnerID,
		Date:      input.Date,
		Type:      input.Type,
		Reason:    input.Reason,
	}, nil
}

func (s *stubOverrideStore) ListByPartner(_ context.Context, _ int64) ([]models.AvailabilityOverride, error) {
	return s.overrides, nil
}

func (s *stubOverrideStore) ExistsForDate(_ context.Context, _ int64, _ availability.Date) (bool, error) {
	s.existsCalls++
	return s.exists, nil
}

func (s *stubOverrideStore) Delete(_ context.Context, _ int64, _ int64) (bool, error) {
	return s.deleted, nil
}

type stubBookingReader struct {
	ranges []availability.BookingRange
	calls  int
}

func (s *stubBookingReader) ListRangesForPartner(_ context.Context, _ int64) ([]availability.BookingRange, error) {
	s.calls++
	return s.ranges, nil
}

func newAvailabilityFixture() (*AvailabilityService, *stubProfileStore, *stubOverrideStore, *stubBookingReader) {
	profiles := &stubProfileStore{
		profile: &models.PartnerProfile{
			ID:                 1,
			UserID:             7,
			Type:               "guide",
			WeeklyAvailability: []string{"Monday", "Wednesday"},
			OnboardingComplete: true,
		},
	}
	overrides := &stubOverrideStore{}
	bookings := &stubBookingReader{}
	return NewAvailabilityService(profiles, overrides, bookings), profiles, overrides, bookings
}

func TestAddOverrideRejectsPastDateWithoutTouchingStores(t *testing.T) {
	service, _, overrides, bookings := newAvailabilityFixture()

	yesterday := availability.Today().AddDays(-1)
	_, err := service.AddOverride(context.Background(), 7, "guide", AddOverrideInput{Date: yesterday})
	if !errors.Is(err, ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
	if bookings.calls != 0 || overrides.existsCalls != 0 || overrides.createCalls != 0 {
		t.Fatalf("expected validation to fail before any store call: bookings=%d exists=%d create=%d",
			bookings.calls, overrides.existsCalls, overrides.createCalls)
	}
}

func TestAddOverrideRejectsBookedDate(t *testing.T) {
	service, _, overrides, bookings := newAvailabilityFixture()

	target := availability.Today().AddDays(5)
	bookings.ranges = []availability.BookingRange{{Start: target.AddDays(-1), End: target.AddDays(1)}}

	_, err := service.AddOverride(context.Background(), 7, "guide", AddOverrideInput{Date: target})
	if !errors.Is(err, ErrDateBooked) {
		t.Fatalf("expected ErrDateBooked, got %v", err)
	}
	if overrides.createCalls != 0 {
		t.Fatal("expected no override created for a booked date")
	}
}

func TestAddOverrideRejectsDuplicateDate(t *testing.T) {
	service, _, overrides, _ := newAvailabilityFixture()
	overrides.exists = true

	_, err := service.AddOverride(context.Background(), 7, "guide", AddOverrideInput{Date: availability.Today().AddDays(3)})
	if !errors.Is(err, ErrDuplicateOverride) {
		t.Fatalf("expected ErrDuplicateOverride, got %v", err)
	}
}

func TestAddOverrideAlwaysCreatesUnavailableType(t *testing.T) {
	service, _, overrides, _ := newAvailabilityFixture()

	reason := "Family trip"
	target := availability.Today().AddDays(10)
	created, err := service.AddOverride(context.Background(), 7, "guide", AddOverrideInput{Date: target, Reason: &reason})
	if err != nil {
		t.Fatalf("AddOverride: %v", err)
	}
	if created.Type != availability.OverrideUnavailable {
		t.Fatalf("expected unavailable override, got %q", created.Type)
	}
	if overrides.lastCreate.Reason == nil || *overrides.lastCreate.Reason != "Family trip" {
		t.Fatalf("expected reason persisted, got %+v", overrides.lastCreate.Reason)
	}
	if !overrides.lastCreate.Date.Equal(target) {
		t.Fatalf("expected date %s, got %s", target, overrides.lastCreate.Date)
	}
}

func TestAddOverrideForbiddenForTravelers(t *testing.T) {
	service, _, _, _ := newAvailabilityFixture()

	_, err := service.AddOverride(context.Background(), 7, "traveler", AddOverrideInput{Date: availability.Today()})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestToggleWeeklyDaySubmitsFullRecomputedSet(t *testing.T) {
	service, profiles, _, _ := newAvailabilityFixture()

	updated, err := service.ToggleWeeklyDay(context.Background(), 7, "guide", "Friday", true)
	if err != nil {
		t.Fatalf("ToggleWeeklyDay: %v", err)
	}
	if len(profiles.lastDays) != 3 ||
		profiles.lastDays[0] != "Monday" || profiles.lastDays[1] != "Wednesday" || profiles.lastDays[2] != "Friday" {
		t.Fatalf("expected full set [Monday Wednesday Friday], got %v", profiles.lastDays)
	}
	if len(updated.WeeklyAvailability) != 3 {
		t.Fatalf("unexpected returned pattern: %v", updated.WeeklyAvailability)
	}

	if _, err := service.ToggleWeeklyDay(context.Background(), 7, "guide", "Monday", false); err != nil {
		t.Fatalf("ToggleWeeklyDay off: %v", err)
	}
	if len(profiles.lastDays) != 1 || profiles.lastDays[0] != "Wednesday" {
		t.Fatalf("expected [Wednesday], got %v", profiles.lastDays)
	}
}

func TestCalendarResolvesOverridesAndBookings(t *testing.T) {
	service, _, overrides, bookings := newAvailabilityFixture()

	reason := "Vacation"
	overrides.overrides = []models.AvailabilityOverride{
		{ID: 4, PartnerID: 7, Date: availability.NewDate(2026, time.September, 7), Type: availability.OverrideUnavailable, Reason: &reason},
	}
	bookings.ranges = []availability.BookingRange{
		{Start: availability.NewDate(2026, time.September, 11), End: availability.NewDate(2026, time.September, 12)},
	}

	calendar, err := service.Calendar(context.Background(), 7, 2026, time.September)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if len(calendar.Days)%7 != 0 {
		t.Fatalf("expected full weeks, got %d cells", len(calendar.Days))
	}

	byDate := make(map[string]CalendarDay, len(calendar.Days))
	for _, day := range calendar.Days {
		byDate[day.Date.String()] = day
	}

	monday := byDate["2026-09-07"]
	if monday.Available || monday.Reason != availability.ReasonOverride || monday.Override == nil || monday.Override.ID != 4 {
		t.Fatalf("expected overridden Monday, got %+v", monday)
	}
	if friday := byDate["2026-09-11"]; friday.Reason != availability.ReasonBooked {
		t.Fatalf("expected booked Friday, got %+v", friday)
	}
	if wednesday := byDate["2026-09-09"]; !wednesday.Available || wednesday.Reason != availability.ReasonWeekly {
		t.Fatalf("expected weekly Wednesday, got %+v", wednesday)
	}
	if aug := byDate["2026-08-30"]; aug.InMonth {
		t.Fatalf("expected leading grid cell outside month, got %+v", aug)
	}
}

func TestIsRangeAvailableFailsOnAnyBlockedDay(t *testing.T) {
	service, _, _, bookings := newAvailabilityFixture()

	// Monday and Wednesday are available weekly; Tuesday in between is not.
	start := availability.NewDate(2026, time.September, 7)
	end := availability.NewDate(2026, time.September, 9)
	ok, err := service.IsRangeAvailable(context.Background(), 7, start, end)
	if err != nil {
		t.Fatalf("IsRangeAvailable: %v", err)
	}
	if ok {
		t.Fatal("expected range spanning an unavailable Tuesday to fail")
	}

	ok, err = service.IsRangeAvailable(context.Background(), 7, start, start)
	if err != nil || !ok {
		t.Fatalf("expected single Monday available, got ok=%v err=%v", ok, err)
	}

	bookings.ranges = []availability.BookingRange{{Start: start, End: start}}
	ok, err = service.IsRangeAvailable(context.Background(), 7, start, start)
	if err != nil || ok {
		t.Fatalf("expected booked Monday unavailable, got ok=%v err=%v", ok, err)
	}
}

func TestRemoveOverrideRequiresOwnership(t *testing.T) {
	service, _, overrides, _ := newAvailabilityFixture()

	overrides.deleted = false
	if err := service.RemoveOverride(context.Background(), 7, "guide", 42); err == nil {
		t.Fatal("expected error when override is not owned or missing")
	}

	overrides.deleted = true
	if err := service.RemoveOverride(context.Background(), 7, "guide", 42); err != nil {
		t.Fatalf("RemoveOverride: %v", err)
	}
}

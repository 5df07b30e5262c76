package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type partnerProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.PartnerProfile, error)
}

type rangeAvailabilityChecker interface {
	IsRangeAvailable(ctx context.Context, partnerID int64, start availability.Date, end availability.Date) (bool, error)
}

type ItineraryService struct {
	db            *pgxpool.Pool
	itineraryRepo *repository.ItineraryRepository
	paymentRepo   *repository.PaymentRepository
	userRepo      userReader
	profileRepo   partnerProfileReader
	checker       rangeAvailabilityChecker
}

func NewItineraryService(
	db *pgxpool.Pool,
	itineraryRepo *repository.ItineraryRepository,
	paymentRepo *repository.PaymentRepository,
	userRepo userReader,
	profileRepo partnerProfileReader,
	checker rangeAvailabilityChecker,
) *ItineraryService {
	return &ItineraryService{
		db:            db,
		itineraryRepo: itineraryRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		checker:       checker,
	}
}

type CreateItineraryInput struct {
	PartnerID int64
	StartDate availability.Date
	EndDate   availability.Date
	Notes     *string
}

func (s *ItineraryService) CreateItinerary(
	ctx context.Context,
	travelerID int64,
	input CreateItineraryInput,
) (*models.ItineraryDetail, error) {
	if input.PartnerID <= 0 || input.PartnerID == travelerID {
		return nil, ErrInvalidInput
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidInput
	}
	if input.StartDate.Before(availability.Today()) {
		return nil, ErrPastDate
	}

	partner, err := s.userRepo.GetByID(ctx, input.PartnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if !isPartnerRole(partner.Role) {
		return nil, ErrInvalidInput
	}

	profile, err := s.profileRepo.GetByUserID(ctx, input.PartnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if !profile.OnboardingComplete || profile.DailyRate == nil || *profile.DailyRate <= 0 {
		return nil, ErrInvalidInput
	}

	available, err := s.checker.IsRangeAvailable(ctx, input.PartnerID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUnavailable
	}

	days := daysInclusive(input.StartDate, input.EndDate)
	amount := *profile.DailyRate * float64(days)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txItineraryRepo := repository.NewItineraryRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.PartnerID); err != nil {
		return nil, err
	}

	hasConflict, err := txItineraryRepo.HasConflict(ctx, input.PartnerID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	itinerary, err := txItineraryRepo.Create(ctx, repository.CreateItineraryInput{
		TravelerID: travelerID,
		PartnerID:  input.PartnerID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Notes:      input.Notes,
	})
	if err != nil {
		return nil, err
	}

	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		ItineraryID: itinerary.ID,
		TravelerID:  travelerID,
		PartnerID:   input.PartnerID,
		Amount:      amount,
		Status:      "awaiting_proof",
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.ItineraryDetail{
		Itinerary: *itinerary,
		Payment:   payment,
	}, nil
}

func (s *ItineraryService) ListItineraries(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.ItineraryListFilter,
) ([]models.ItineraryDetail, error) {
	if role != "traveler" && !isPartnerRole(role) {
		return nil, ErrForbidden
	}

	itineraries, err := s.itineraryRepo.List(ctx, actorID, role, filter)
	if err != nil {
		return nil, err
	}

	details := make([]models.ItineraryDetail, 0, len(itineraries))
	for _, itinerary := range itineraries {
		detail := models.ItineraryDetail{Itinerary: itinerary}
		payment, err := s.paymentRepo.GetByItineraryID(ctx, itinerary.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			detail.Payment = payment
		}
		details = append(details, detail)
	}

	return details, nil
}

func (s *ItineraryService) GetItinerary(
	ctx context.Context,
	actorID int64,
	role string,
	itineraryID int64,
) (*models.ItineraryDetail, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if !canAccessItinerary(role, actorID, itinerary) {
		return nil, ErrForbidden
	}

	detail := &models.ItineraryDetail{Itinerary: *itinerary}
	payment, err := s.paymentRepo.GetByItineraryID(ctx, itineraryID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

func (s *ItineraryService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	itineraryID int64,
	requestedStatus string,
) (*models.ItineraryDetail, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if !canAccessItinerary(role, actorID, itinerary) {
		return nil, ErrForbidden
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(role, actorID, itinerary, nextStatus); err != nil {
		return nil, err
	}
	if nextStatus == "confirmed" {
		payment, err := s.paymentRepo.GetByItineraryID(ctx, itineraryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
		if payment.Status != "verified" {
			return nil, ErrInvalidStateTransition
		}
	}

	updated, err := s.itineraryRepo.UpdateStatusIfCurrent(ctx, itineraryID, itinerary.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return s.GetItinerary(ctx, actorID, role, updated.ID)
}

func canAccessItinerary(role string, actorID int64, itinerary *models.Itinerary) bool {
	if role == "traveler" {
		return itinerary.TravelerID == actorID
	}
	if isPartnerRole(role) {
		return itinerary.PartnerID == actorID
	}
	return false
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "confirm", "confirmed":
		return "confirmed", nil
	case "complete", "completed":
		return "completed", nil
	case "cancel", "cancelled", "canceled":
		return "cancelled", nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateStatusTransition(
	role string,
	actorID int64,
	itinerary *models.Itinerary,
	nextStatus string,
) error {
	switch {
	case role == "traveler":
		if itinerary.TravelerID != actorID || nextStatus != "cancelled" {
			return ErrForbidden
		}
		if itinerary.Status == "completed" || itinerary.Status == "cancelled" {
			return ErrInvalidStateTransition
		}
		return nil
	case isPartnerRole(role):
		if itinerary.PartnerID != actorID {
			return ErrForbidden
		}
		switch nextStatus {
		case "confirmed":
			if itinerary.Status != "pending" {
				return ErrInvalidStateTransition
			}
		case "completed":
			if itinerary.Status != "confirmed" {
				return ErrInvalidStateTransition
			}
			if !availability.Today().After(itinerary.EndDate) {
				return ErrInvalidStateTransition
			}
		case "cancelled":
			if itinerary.Status == "completed" || itinerary.Status == "cancelled" {
				return ErrInvalidStateTransition
			}
		default:
			return ErrInvalidStatus
		}
		return nil
	default:
		return ErrForbidden
	}
}

func daysInclusive(start availability.Date, end availability.Date) int {
	return int(end.Time().Sub(start.Time())/(24*time.Hour)) + 1
}

package services

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentService struct {
	db            *pgxpool.Pool
	itineraryRepo *repository.ItineraryRepository
	paymentRepo   *repository.PaymentRepository
	storage       ProofStorage
}

func NewPaymentService(
	db *pgxpool.Pool,
	itineraryRepo *repository.ItineraryRepository,
	paymentRepo *repository.PaymentRepository,
	storage ProofStorage,
) *PaymentService {
	return &PaymentService{
		db:            db,
		itineraryRepo: itineraryRepo,
		paymentRepo:   paymentRepo,
		storage:       storage,
	}
}

type SubmitProofInput struct {
	ItineraryID int64
	ReferenceNo string
	File        multipart.File
	Filename    string
}

// SubmitProof records a traveler's manual GCash payment: the reference number
// they got from the GCash app plus a screenshot of the transfer. Verification
// is a human step, so the payment only moves into pending_verification here.
func (s *PaymentService) SubmitProof(
	ctx context.Context,
	actorID int64,
	role string,
	input SubmitProofInput,
) (*models.Payment, error) {
	if role != "traveler" {
		return nil, ErrForbidden
	}
	if input.ItineraryID <= 0 || input.File == nil {
		return nil, ErrInvalidInput
	}
	reference := strings.TrimSpace(input.ReferenceNo)
	if reference == "" {
		return nil, ErrInvalidInput
	}
	if s.storage == nil {
		return nil, errors.New("proof storage not configured")
	}

	itinerary, err := s.itineraryRepo.GetByID(ctx, input.ItineraryID)
	if err != nil {
		return nil, err
	}
	if itinerary.TravelerID != actorID {
		return nil, ErrForbidden
	}
	if itinerary.Status != "pending" {
		return nil, ErrInvalidStateTransition
	}

	objectName := uuid.NewString() + strings.ToLower(filepath.Ext(input.Filename))
	proofURL, err := s.storage.SaveProof(ctx, input.File, objectName)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)

	payment, err := txPaymentRepo.GetByItineraryIDForUpdate(ctx, input.ItineraryID)
	if err != nil {
		s.cleanupProof(ctx, proofURL)
		return nil, err
	}
	if payment.Status != "awaiting_proof" && payment.Status != "rejected" {
		s.cleanupProof(ctx, proofURL)
		return nil, ErrInvalidStateTransition
	}

	updated, err := txPaymentRepo.AttachProof(ctx, payment.ID, reference, proofURL)
	if err != nil {
		s.cleanupProof(ctx, proofURL)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.cleanupProof(ctx, proofURL)
		return nil, err
	}

	return updated, nil
}

// ReviewProof is the partner's manual verification step. Verifying the
// payment confirms the itinerary in the same transaction.
func (s *PaymentService) ReviewProof(
	ctx context.Context,
	actorID int64,
	role string,
	itineraryID int64,
	verdict string,
) (*models.Payment, error) {
	if !isPartnerRole(role) {
		return nil, ErrForbidden
	}
	if verdict != "verified" && verdict != "rejected" {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txItineraryRepo := repository.NewItineraryRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	itinerary, err := txItineraryRepo.GetByIDForUpdate(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if itinerary.PartnerID != actorID {
		return nil, ErrForbidden
	}

	payment, err := txPaymentRepo.GetByItineraryIDForUpdate(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if payment.Status != "pending_verification" {
		return nil, ErrInvalidStateTransition
	}

	updated, err := txPaymentRepo.UpdateStatusIfCurrent(ctx, payment.ID, "pending_verification", verdict)
	if err != nil {
		return nil, err
	}

	if verdict == "verified" {
		if _, err := txItineraryRepo.UpdateStatusIfCurrent(ctx, itineraryID, "pending", "confirmed"); err != nil {
			return nil, ErrInvalidStateTransition
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// GetPayment returns the itinerary's payment for either party. When a proof
// has been submitted and storage is configured, it also resolves a
// short-lived view link for the screenshot.
func (s *PaymentService) GetPayment(
	ctx context.Context,
	actorID int64,
	itineraryID int64,
) (*models.Payment, string, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, "", err
	}
	if itinerary.TravelerID != actorID && itinerary.PartnerID != actorID {
		return nil, "", ErrForbidden
	}

	payment, err := s.paymentRepo.GetByItineraryID(ctx, itineraryID)
	if err != nil {
		return nil, "", err
	}

	proofView := ""
	if s.storage != nil && payment.ProofURL != nil && *payment.ProofURL != "" {
		proofView, err = s.storage.ProofViewURL(ctx, *payment.ProofURL)
		if err != nil {
			return nil, "", err
		}
	}
	return payment, proofView, nil
}

func (s *PaymentService) cleanupProof(ctx context.Context, proofURL string) {
	if err := s.storage.RemoveProof(ctx, proofURL); err != nil {
		log.Printf("cleanup payment proof %s: %v", proofURL, err)
	}
}

package repository

import (
	"context"

	"github.com/Migueljuen/ItineraBack/internal/models"
)

type CreatePaymentInput struct {
	ItineraryID int64
	TravelerID  int64
	PartnerID   int64
	Amount      float64
	Status      string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, itinerary_id, traveler_id, partner_id, amount, reference_no, proof_url, status, created_at, updated_at`

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (itinerary_id, traveler_id, partner_id, amount, reference_no, status)
		VALUES ($1, $2, $3, $4, '', $5)
		RETURNING ` + paymentColumns

	return r.scanPayment(ctx, query, input.ItineraryID, input.TravelerID, input.PartnerID, input.Amount, input.Status)
}

func (r *PaymentRepository) GetByItineraryID(ctx context.Context, itineraryID int64) (*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE itinerary_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	return r.scanPayment(ctx, query, itineraryID)
}

func (r *PaymentRepository) GetByItineraryIDForUpdate(ctx context.Context, itineraryID int64) (*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE itinerary_id = $1
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE
	`
	return r.scanPayment(ctx, query, itineraryID)
}

// AttachProof records the traveler's GCash reference number and proof image,
// moving the payment into review.
func (r *PaymentRepository) AttachProof(
	ctx context.Context,
	paymentID int64,
	referenceNo string,
	proofURL string,
) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET reference_no = $2,
			proof_url = $3,
			status = 'pending_verification',
			updated_at = NOW()
		WHERE id = $1 AND status IN ('awaiting_proof', 'rejected')
		RETURNING ` + paymentColumns

	return r.scanPayment(ctx, query, paymentID, referenceNo, proofURL)
}

func (r *PaymentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	paymentID int64,
	currentStatus string,
	nextStatus string,
) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + paymentColumns

	return r.scanPayment(ctx, query, paymentID, currentStatus, nextStatus)
}

func (r *PaymentRepository) scanPayment(ctx context.Context, query string, args ...any) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&payment.ID,
		&payment.ItineraryID,
		&payment.TravelerID,
		&payment.PartnerID,
		&payment.Amount,
		&payment.ReferenceNo,
		&payment.ProofURL,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

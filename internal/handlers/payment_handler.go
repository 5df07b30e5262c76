package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const maxProofSizeBytes = 5 * 1024 * 1024

type paymentApplicationService interface {
	SubmitProof(ctx context.Context, actorID int64, role string, input services.SubmitProofInput) (*models.Payment, error)
	ReviewProof(ctx context.Context, actorID int64, role string, itineraryID int64, verdict string) (*models.Payment, error)
	GetPayment(ctx context.Context, actorID int64, itineraryID int64) (*models.Payment, string, error)
}

type PaymentHandler struct {
	service paymentApplicationService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type reviewProofRequest struct {
	Verdict string `json:"verdict"`
}

// SubmitProof takes the traveler's GCash reference number and a screenshot of
// the transfer as a multipart form.
func (h *PaymentHandler) SubmitProof(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "traveler" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itineraryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || itineraryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid itinerary id"})
	}

	referenceNo := strings.TrimSpace(c.FormValue("reference_no"))
	if referenceNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reference_no is required"})
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "proof file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "proof file is empty"})
	}
	if fileHeader.Size > maxProofSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "proof file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "proof must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open proof file"})
	}
	defer file.Close()

	payment, err := h.service.SubmitProof(c.Context(), userID, role, services.SubmitProofInput{
		ItineraryID: itineraryID,
		ReferenceNo: referenceNo,
		File:        file,
		Filename:    fileHeader.Filename,
	})
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) ReviewProof(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "guide" && role != "driver") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itineraryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || itineraryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid itinerary id"})
	}

	var req reviewProofRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	payment, err := h.service.ReviewProof(c.Context(), userID, role, itineraryID, strings.TrimSpace(req.Verdict))
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

// GetPayment returns the itinerary's payment to either party, with a signed
// link to the proof screenshot when one has been submitted.
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itineraryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || itineraryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid itinerary id"})
	}

	payment, proofViewURL, err := h.service.GetPayment(c.Context(), userID, itineraryID)
	if err != nil {
		return mapPaymentError(c, err)
	}

	response := fiber.Map{"payment": payment}
	if proofViewURL != "" {
		response["proof_view_url"] = proofViewURL
	}
	return c.JSON(response)
}

func mapPaymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payment request"})
	}
}

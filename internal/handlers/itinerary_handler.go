package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/Migueljuen/ItineraBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type itineraryApplicationService interface {
	CreateItinerary(ctx context.Context, travelerID int64, input services.CreateItineraryInput) (*models.ItineraryDetail, error)
	ListItineraries(ctx context.Context, actorID int64, role string, filter repository.ItineraryListFilter) ([]models.ItineraryDetail, error)
	GetItinerary(ctx context.Context, actorID int64, role string, itineraryID int64) (*models.ItineraryDetail, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, itineraryID int64, requestedStatus string) (*models.ItineraryDetail, error)
}

type ItineraryHandler struct {
	service itineraryApplicationService
}

func NewItineraryHandler(service *services.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{service: service}
}

type createItineraryRequest struct {
	PartnerID int64   `json:"partner_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Notes     *string `json:"notes"`
}

type updateItineraryStatusRequest struct {
	Status string `json:"status"`
}

func (h *ItineraryHandler) CreateItinerary(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "traveler" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startDate, err := availability.ParseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be formatted YYYY-MM-DD"})
	}
	endDate, err := availability.ParseDate(strings.TrimSpace(req.EndDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be formatted YYYY-MM-DD"})
	}
	if req.Notes != nil && strings.TrimSpace(*req.Notes) == "" {
		req.Notes = nil
	}

	detail, err := h.service.CreateItinerary(c.Context(), userID, services.CreateItineraryInput{
		PartnerID: req.PartnerID,
		StartDate: startDate,
		EndDate:   endDate,
		Notes:     req.Notes,
	})
	if err != nil {
		return mapItineraryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"itinerary": detail})
}

func (h *ItineraryHandler) ListItineraries(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	itineraries, err := h.service.ListItineraries(c.Context(), userID, role, repository.ItineraryListFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: timeframe,
	})
	if err != nil {
		return mapItineraryError(c, err)
	}

	return c.JSON(fiber.Map{"itineraries": itineraries})
}

func (h *ItineraryHandler) GetItinerary(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
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

	detail, err := h.service.GetItinerary(c.Context(), userID, role, itineraryID)
	if err != nil {
		return mapItineraryError(c, err)
	}

	return c.JSON(fiber.Map{"itinerary": detail})
}

func (h *ItineraryHandler) UpdateStatus(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
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

	var req updateItineraryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	detail, err := h.service.UpdateStatus(c.Context(), userID, role, itineraryID, req.Status)
	if err != nil {
		return mapItineraryError(c, err)
	}

	return c.JSON(fiber.Map{"itinerary": detail})
}

func mapItineraryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrPastDate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Partner is not available for the requested dates"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPartnerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Partner not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Itinerary not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process itinerary request"})
	}
}

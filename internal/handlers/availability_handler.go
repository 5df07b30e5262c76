package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type availabilityApplicationService interface {
	ListOverrides(ctx context.Context, partnerID int64) ([]models.AvailabilityOverride, error)
	AddOverride(ctx context.Context, actorID int64, role string, input services.AddOverrideInput) (*models.AvailabilityOverride, error)
	RemoveOverride(ctx context.Context, actorID int64, role string, overrideID int64) error
	ToggleWeeklyDay(ctx context.Context, actorID int64, role string, day string, present bool) (*models.PartnerProfile, error)
	SetWeeklyAvailability(ctx context.Context, actorID int64, role string, days []string) (*models.PartnerProfile, error)
	Calendar(ctx context.Context, partnerID int64, year int, month time.Month) (*services.MonthCalendar, error)
}

type AvailabilityHandler struct {
	service availabilityApplicationService
}

func NewAvailabilityHandler(service availabilityApplicationService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

type addOverrideRequest struct {
	Date   string  `json:"date"`
	Reason *string `json:"reason"`
}

type toggleWeeklyDayRequest struct {
	Day       string `json:"day"`
	Available bool   `json:"available"`
}

type setWeeklyAvailabilityRequest struct {
	Days []string `json:"days"`
}

func (h *AvailabilityHandler) ListOverrides(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "guide" && role != "driver") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	overrides, err := h.service.ListOverrides(c.Context(), userID)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"overrides": overrides})
}

func (h *AvailabilityHandler) AddOverride(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req addOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	date, err := availability.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be formatted YYYY-MM-DD"})
	}
	if req.Reason != nil && strings.TrimSpace(*req.Reason) == "" {
		req.Reason = nil
	}

	override, err := h.service.AddOverride(c.Context(), userID, role, services.AddOverrideInput{
		Date:   date,
		Reason: req.Reason,
	})
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"override": override})
}

func (h *AvailabilityHandler) RemoveOverride(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	overrideID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || overrideID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid override id"})
	}

	if err := h.service.RemoveOverride(c.Context(), userID, role, overrideID); err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *AvailabilityHandler) ToggleWeeklyDay(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req toggleWeeklyDayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Day) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "day is required"})
	}

	profile, err := h.service.ToggleWeeklyDay(c.Context(), userID, role, req.Day, req.Available)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{
		"weekly_availability": profile.WeeklyAvailability,
		"profile":             profile,
	})
}

func (h *AvailabilityHandler) SetWeeklyAvailability(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req setWeeklyAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.service.SetWeeklyAvailability(c.Context(), userID, role, req.Days)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{
		"weekly_availability": profile.WeeklyAvailability,
		"profile":             profile,
	})
}

// Calendar returns the partner's resolved month grid. Travelers use it when
// picking itinerary dates, partners when managing their own schedule, so it
// only requires an authenticated caller.
func (h *AvailabilityHandler) Calendar(c *fiber.Ctx) error {
	partnerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || partnerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid partner id"})
	}

	year, month, err := parseCalendarMonth(c.Query("month"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be formatted YYYY-MM"})
	}

	calendar, err := h.service.Calendar(c.Context(), partnerID, year, month)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"calendar": calendar})
}

func parseCalendarMonth(raw string) (int, time.Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, err
	}
	return parsed.Year(), parsed.Month(), nil
}

func mapAvailabilityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrPastDate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDateBooked), errors.Is(err, services.ErrDuplicateOverride), errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPartnerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Partner not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Override not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process availability request"})
	}
}

package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/Migueljuen/ItineraBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type experienceApplicationService interface {
	CreateExperience(ctx context.Context, actorID int64, role string, input services.CreateExperienceInput) (*models.Experience, error)
	ListExperiences(ctx context.Context, filter repository.ExperienceListFilter) ([]models.Experience, error)
	GetExperience(ctx context.Context, experienceID int64) (*models.Experience, error)
	ListPartnerExperiences(ctx context.Context, partnerID int64) ([]models.Experience, error)
}

type ExperienceHandler struct {
	service experienceApplicationService
}

func NewExperienceHandler(service *services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{service: service}
}

type createExperienceRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"image_url"`
}

func (h *ExperienceHandler) CreateExperience(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "guide" && role != "driver") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createExperienceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	experience, err := h.service.CreateExperience(c.Context(), userID, role, services.CreateExperienceInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return mapExperienceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"experience": experience})
}

func (h *ExperienceHandler) ListExperiences(c *fiber.Ctx) error {
	maxPrice, err := parseNonNegativeFloat(c.Query("max_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_price must be a valid non-negative number"})
	}

	filter := repository.ExperienceListFilter{
		Location: strings.TrimSpace(c.Query("location")),
	}
	if c.Query("max_price") != "" {
		filter.MaxPrice = &maxPrice
	}

	experiences, err := h.service.ListExperiences(c.Context(), filter)
	if err != nil {
		return mapExperienceError(c, err)
	}

	return c.JSON(fiber.Map{"experiences": experiences})
}

func (h *ExperienceHandler) GetExperience(c *fiber.Ctx) error {
	experienceID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || experienceID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid experience id"})
	}

	experience, err := h.service.GetExperience(c.Context(), experienceID)
	if err != nil {
		return mapExperienceError(c, err)
	}

	return c.JSON(fiber.Map{"experience": experience})
}

func (h *ExperienceHandler) ListPartnerExperiences(c *fiber.Ctx) error {
	partnerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || partnerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid partner id"})
	}

	experiences, err := h.service.ListPartnerExperiences(c.Context(), partnerID)
	if err != nil {
		return mapExperienceError(c, err)
	}

	return c.JSON(fiber.Map{"experiences": experiences})
}

func mapExperienceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Complete onboarding before publishing experiences"})
	case errors.Is(err, services.ErrPartnerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Partner not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Experience not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process experience request"})
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseNonNegativeFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

var errInvalidNumber = errors.New("invalid number")

package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/Migueljuen/ItineraBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type ProfileHandler struct {
	profileService     *services.ProfileService
	partnerProfileRepo partnerProfileStore
}

type partnerProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.PartnerProfile, error)
}

func NewProfileHandler(
	profileService *services.ProfileService,
	partnerProfileRepo partnerProfileStore,
) *ProfileHandler {
	return &ProfileHandler{
		profileService:     profileService,
		partnerProfileRepo: partnerProfileRepo,
	}
}

type updatePartnerProfileRequest struct {
	Bio       *string   `json:"bio"`
	Location  *string   `json:"location"`
	Languages *[]string `json:"languages"`
	DailyRate *float64  `json:"daily_rate"`
}

func (h *ProfileHandler) GetPartnerProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "guide" && role != "driver") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.partnerProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func (h *ProfileHandler) UpdatePartnerProfile(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "guide" && role != "driver") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updatePartnerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validatePartnerProfileUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.UpdatePartnerProfile(c.Context(), userID, repository.UpdatePartnerProfileInput{
		Bio:       req.Bio,
		Location:  req.Location,
		Languages: req.Languages,
		DailyRate: req.DailyRate,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func parseProfileUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

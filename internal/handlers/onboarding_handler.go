package handlers

import (
	"context"
	"strconv"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type partnerOnboardingProfileStore interface {
	UpdateOnboarding(ctx context.Context, userID int64, req repository.PartnerOnboardingInput) (*models.PartnerProfile, error)
}

type OnboardingHandler struct {
	partnerProfileRepo partnerOnboardingProfileStore
}

func NewOnboardingHandler(partnerProfileRepo partnerOnboardingProfileStore) *OnboardingHandler {
	return &OnboardingHandler{partnerProfileRepo: partnerProfileRepo}
}

type partnerOnboardingRequest struct {
	Bio       string   `json:"bio"`
	Location  string   `json:"location"`
	Languages []string `json:"languages"`
	DailyRate float64  `json:"daily_rate"`
}

func (h *OnboardingHandler) PartnerOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "guide" && role != "driver") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req partnerOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validatePartnerOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.partnerProfileRepo.UpdateOnboarding(c.Context(), userID, repository.PartnerOnboardingInput{
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

func parseUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

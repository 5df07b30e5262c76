package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

type experienceStore interface {
	Create(ctx context.Context, input repository.CreateExperienceInput) (*models.Experience, error)
	GetByID(ctx context.Context, experienceID int64) (*models.Experience, error)
	List(ctx context.Context, filter repository.ExperienceListFilter) ([]models.Experience, error)
	ListByPartner(ctx context.Context, partnerID int64) ([]models.Experience, error)
}

type ExperienceService struct {
	experienceRepo experienceStore
	profileRepo    partnerProfileReader
}

func NewExperienceService(experienceRepo experienceStore, profileRepo partnerProfileReader) *ExperienceService {
	return &ExperienceService{
		experienceRepo: experienceRepo,
		profileRepo:    profileRepo,
	}
}

type CreateExperienceInput struct {
	Title       string
	Description *string
	Location    string
	Price       float64
	ImageURL    *string
}

func (s *ExperienceService) CreateExperience(
	ctx context.Context,
	actorID int64,
	role string,
	input CreateExperienceInput,
) (*models.Experience, error) {
	if !isPartnerRole(role) {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	location := strings.TrimSpace(input.Location)
	if title == "" || location == "" || input.Price <= 0 {
		return nil, ErrInvalidInput
	}

	profile, err := s.profileRepo.GetByUserID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if !profile.OnboardingComplete {
		return nil, ErrInvalidStateTransition
	}

	return s.experienceRepo.Create(ctx, repository.CreateExperienceInput{
		PartnerID:   actorID,
		Title:       title,
		Description: input.Description,
		Location:    location,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
	})
}

func (s *ExperienceService) ListExperiences(ctx context.Context, filter repository.ExperienceListFilter) ([]models.Experience, error) {
	return s.experienceRepo.List(ctx, filter)
}

func (s *ExperienceService) GetExperience(ctx context.Context, experienceID int64) (*models.Experience, error) {
	if experienceID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.experienceRepo.GetByID(ctx, experienceID)
}

func (s *ExperienceService) ListPartnerExperiences(ctx context.Context, partnerID int64) ([]models.Experience, error) {
	if partnerID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.experienceRepo.ListByPartner(ctx, partnerID)
}

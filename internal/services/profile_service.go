package services

import (
	"context"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/Migueljuen/ItineraBack/internal/repository"
)

type PartnerProfileUpdater interface {
	UpdatePartial(ctx context.Context, userID int64, req repository.UpdatePartnerProfileInput) (*models.PartnerProfile, error)
}

type ProfileService struct {
	partnerProfileRepo PartnerProfileUpdater
}

func NewProfileService(partnerProfileRepo PartnerProfileUpdater) *ProfileService {
	return &ProfileService{partnerProfileRepo: partnerProfileRepo}
}

func (s *ProfileService) UpdatePartnerProfile(ctx context.Context, userID int64, req repository.UpdatePartnerProfileInput) (*models.PartnerProfile, error) {
	return s.partnerProfileRepo.UpdatePartial(ctx, userID, req)
}

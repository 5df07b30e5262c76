package handlers

import (
	"strings"
)

func validatePartnerOnboardingRequest(req partnerOnboardingRequest) string {
	if strings.TrimSpace(req.Bio) == "" {
		return "bio is required"
	}
	if strings.TrimSpace(req.Location) == "" {
		return "location is required"
	}
	if len(req.Languages) == 0 {
		return "languages must contain at least one item"
	}
	for _, language := range req.Languages {
		if strings.TrimSpace(language) == "" {
			return "languages must not contain empty values"
		}
	}
	if req.DailyRate <= 0 {
		return "daily_rate must be greater than 0"
	}
	return ""
}

func validatePartnerProfileUpdateRequest(req updatePartnerProfileRequest) string {
	if req.Bio != nil && strings.TrimSpace(*req.Bio) == "" {
		return "bio must not be empty"
	}
	if req.Location != nil && strings.TrimSpace(*req.Location) == "" {
		return "location must not be empty"
	}
	if req.Languages != nil {
		for _, language := range *req.Languages {
			if strings.TrimSpace(language) == "" {
				return "languages must not contain empty values"
			}
		}
	}
	if req.DailyRate != nil && *req.DailyRate <= 0 {
		return "daily_rate must be greater than 0"
	}
	return ""
}

package models

import "time"

type PartnerProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Type               string    `json:"type"`
	Bio                *string   `json:"bio"`
	Location           *string   `json:"location"`
	Languages          *[]string `json:"languages"`
	DailyRate          *float64  `json:"daily_rate"`
	Rating             *float64  `json:"rating"`
	IsVerified         *bool     `json:"is_verified"`
	WeeklyAvailability []string  `json:"weekly_availability"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

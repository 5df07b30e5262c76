package models

import (
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
)

type AvailabilityOverride struct {
	ID        int64             `json:"id"`
	PartnerID int64             `json:"partner_id"`
	Date      availability.Date `json:"date"`
	Type      string            `json:"type"`
	Reason    *string           `json:"reason"`
	CreatedAt time.Time         `json:"created_at"`
}

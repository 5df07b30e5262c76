package models

import (
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
)

type Itinerary struct {
	ID         int64             `json:"id"`
	TravelerID int64             `json:"traveler_id"`
	PartnerID  int64             `json:"partner_id"`
	StartDate  availability.Date `json:"start_date"`
	EndDate    availability.Date `json:"end_date"`
	Status     string            `json:"status"`
	Notes      *string           `json:"notes"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type Payment struct {
	ID          int64     `json:"id"`
	ItineraryID int64     `json:"itinerary_id"`
	TravelerID  int64     `json:"traveler_id"`
	PartnerID   int64     `json:"partner_id"`
	Amount      float64   `json:"amount"`
	ReferenceNo string    `json:"reference_no"`
	ProofURL    *string   `json:"proof_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItineraryDetail struct {
	Itinerary
	Payment *Payment `json:"payment,omitempty"`
}

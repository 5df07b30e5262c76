package models

import "time"

type Experience struct {
	ID          int64     `json:"id"`
	PartnerID   int64     `json:"partner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

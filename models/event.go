package models

import (
	"time"

	"github.com/yeremiapane/restaurant-portal/policy"
)

// Event is a banquet or function booking held by the store.
type Event struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	UserID        *uint         `json:"user_id,omitempty"`
	EventType     string        `json:"event_type"`
	Guests        int           `json:"guests"`
	PreferredDate string        `json:"preferred_date"`
	PreferredTime string        `json:"preferred_time"`
	VenueArea     string        `json:"venue_area"`
	Status        policy.Status `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

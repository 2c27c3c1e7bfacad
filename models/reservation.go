package models

import (
	"time"

	"github.com/yeremiapane/restaurant-portal/policy"
)

// Reservation is a table booking held by the store. ReservationFee is the
// amount fixed at creation time.
type Reservation struct {
	ID                   uint                 `json:"id"`
	Date                 string               `json:"date"`
	Time                 string               `json:"time"`
	Guests               int                  `json:"guests"`
	DiningPreference     string               `json:"dining_preference"`
	Name                 string               `json:"name"`
	Email                string               `json:"email"`
	Phone                string               `json:"phone"`
	SpecialRequests      string               `json:"special_requests"`
	OccasionType         string               `json:"occasion_type"`
	OccasionInstructions string               `json:"occasion_instructions"`
	ReservationFee       float64              `json:"reservation_fee"`
	PaymentMethod        policy.PaymentMethod `json:"payment_method"`
	PaymentReference     string               `json:"payment_reference"`
	ReceiptURL           string               `json:"receipt_url,omitempty"`
	Status               policy.Status        `json:"status"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// ReservationRequest is the POST /reservations body.
type ReservationRequest struct {
	Date                 string               `json:"date"`
	Time                 string               `json:"time"`
	Guests               int                  `json:"guests"`
	DiningPreference     string               `json:"dining_preference"`
	Name                 string               `json:"name"`
	Email                string               `json:"email"`
	Phone                string               `json:"phone"`
	SpecialRequests      string               `json:"special_requests"`
	OccasionType         string               `json:"occasion_type"`
	OccasionInstructions string               `json:"occasion_instructions"`
	ReservationFee       float64              `json:"reservation_fee"`
	PaymentMethod        policy.PaymentMethod `json:"payment_method"`
	PaymentReference     string               `json:"payment_reference"`
}

// CreatedReservation is what the store returns for a new reservation.
type CreatedReservation struct {
	ReservationID uint `json:"reservation_id"`
}

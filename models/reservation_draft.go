package models

import (
	"time"

	"github.com/yeremiapane/restaurant-portal/policy"
)

// ReservationDraft keeps a user's in-progress reservation between wizard
// stages. It is discarded once the store accepts the reservation.
type ReservationDraft struct {
	ID                   uint                 `gorm:"primaryKey" json:"id"`
	UserID               uint                 `gorm:"uniqueIndex;not null" json:"user_id"`
	Stage                int                  `gorm:"not null;default:1" json:"stage"`
	Date                 string               `gorm:"type:varchar(10)" json:"date"`
	Time                 string               `gorm:"type:varchar(5)" json:"time"`
	Guests               int                  `json:"guests"`
	DiningPreference     string               `gorm:"type:varchar(50)" json:"dining_preference"`
	Name                 string               `gorm:"type:varchar(255)" json:"name"`
	Email                string               `gorm:"type:varchar(255)" json:"email"`
	Phone                string               `gorm:"type:varchar(30)" json:"phone"`
	OccasionType         string               `gorm:"type:varchar(50)" json:"occasion_type"`
	OccasionInstructions string               `gorm:"type:text" json:"occasion_instructions"`
	SpecialRequests      string               `gorm:"type:text" json:"special_requests"`
	ReservationFee       float64              `gorm:"type:decimal(10,2);not null;default:0" json:"reservation_fee"`
	PaymentMethod        policy.PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentReference     string               `gorm:"type:varchar(100)" json:"payment_reference"`
	CreatedAt            time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time            `gorm:"not null" json:"updated_at"`
}

// Request converts a finished draft into the POST /reservations body.
func (d ReservationDraft) Request() ReservationRequest {
	return ReservationRequest{
		Date:                 d.Date,
		Time:                 d.Time,
		Guests:               d.Guests,
		DiningPreference:     d.DiningPreference,
		Name:                 d.Name,
		Email:                d.Email,
		Phone:                d.Phone,
		SpecialRequests:      d.SpecialRequests,
		OccasionType:         d.OccasionType,
		OccasionInstructions: d.OccasionInstructions,
		ReservationFee:       d.ReservationFee,
		PaymentMethod:        d.PaymentMethod,
		PaymentReference:     d.PaymentReference,
	}
}

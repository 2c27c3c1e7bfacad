package services

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

// OrderStore is the remote API's order surface.
type OrderStore interface {
	CreateOrder(ctx context.Context, token string, req models.OrderRequest) (*models.CreatedOrder, error)
	GetOrder(ctx context.Context, token string, id uint, admin bool) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Order, error)
	CancelOrder(ctx context.Context, token string, id uint) error
}

// EventStore is the remote API's event surface.
type EventStore interface {
	GetEvent(ctx context.Context, token string, id uint, admin bool) (*models.Event, error)
	UpdateEventStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Event, error)
}

// DailyBookingCounter answers how many reservations the token's user holds
// on a date.
type DailyBookingCounter interface {
	CountReservationsOn(ctx context.Context, token string, date time.Time) (int, error)
}

// ReservationStore is the remote API's reservation surface.
type ReservationStore interface {
	DailyBookingCounter
	CreateReservation(ctx context.Context, token string, req models.ReservationRequest) (*models.CreatedReservation, error)
	UploadReservationReceipt(ctx context.Context, token string, id uint, file *models.Attachment) error
	GetReservation(ctx context.Context, token string, id uint, admin bool) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Reservation, error)
	CancelReservation(ctx context.Context, token string, id uint) error
}

// Store is everything the portal needs from the remote API.
type Store interface {
	OrderStore
	EventStore
	ReservationStore
}

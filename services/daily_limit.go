package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

// ErrDailyLimitUnavailable blocks booking when the store cannot say how many
// reservations already exist; an unknown count is never read as zero.
var ErrDailyLimitUnavailable = errors.New("could not verify existing reservations for this date")

// DailyLimitGuard caps the reservations one user holds on a calendar date.
type DailyLimitGuard struct {
	counter DailyBookingCounter
	limit   int
}

// NewDailyLimitGuard returns a guard allowing limit reservations per date.
func NewDailyLimitGuard(counter DailyBookingCounter, limit int) *DailyLimitGuard {
	return &DailyLimitGuard{counter: counter, limit: limit}
}

// Limit is the configured cap.
func (g *DailyLimitGuard) Limit() int { return g.limit }

// Check queries the store on every call; results are never cached because
// the date under consideration changes while the user edits the form.
func (g *DailyLimitGuard) Check(ctx context.Context, sess models.Session, date time.Time) error {
	count, err := g.counter.CountReservationsOn(ctx, sess.Token, date)
	if err != nil {
		return &DailyLimitError{Date: date, Err: fmt.Errorf("%w: %w", ErrDailyLimitUnavailable, err)}
	}
	if count >= g.limit {
		return &DailyLimitError{Date: date, Count: count, Limit: g.limit, Err: policy.ErrDailyLimitReached}
	}
	return nil
}

// DailyLimitError reports why a date was refused.
type DailyLimitError struct {
	Date  time.Time
	Count int
	Limit int
	Err   error
}

func (e *DailyLimitError) Error() string {
	if errors.Is(e.Err, policy.ErrDailyLimitReached) {
		return fmt.Sprintf("you already have %d reservations on %s (limit %d)", e.Count, e.Date.Format(policy.DateLayout), e.Limit)
	}
	return e.Err.Error()
}

func (e *DailyLimitError) Unwrap() error { return e.Err }

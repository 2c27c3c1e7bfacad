package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

// GetEvent fetches an event booking.
func (c *Client) GetEvent(ctx context.Context, token string, id uint, admin bool) (*models.Event, error) {
	body, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/events/%d", id), token, admin, nil)
	if err != nil {
		return nil, err
	}
	var event models.Event
	if err := decode(body, "event", &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEventStatus applies an admin transition.
func (c *Client) UpdateEventStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Event, error) {
	body, err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/events/%d", id), token, true, models.StatusUpdate{Status: status})
	if err != nil {
		return nil, err
	}
	var event models.Event
	if err := decode(body, "event", &event); err != nil {
		return nil, err
	}
	return &event, nil
}

package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

// CreateOrder submits a validated checkout.
func (c *Client) CreateOrder(ctx context.Context, token string, req models.OrderRequest) (*models.CreatedOrder, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/orders", token, false, req)
	if err != nil {
		return nil, err
	}
	var created models.CreatedOrder
	if err := decode(body, "order", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetOrder fetches the store's current view of an order.
func (c *Client) GetOrder(ctx context.Context, token string, id uint, admin bool) (*models.Order, error) {
	body, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), token, admin, nil)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := decode(body, "order", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus applies an admin transition.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Order, error) {
	body, err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d", id), token, true, models.StatusUpdate{Status: status})
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := decode(body, "order", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder is the customer's self-service cancellation.
func (c *Client) CancelOrder(ctx context.Context, token string, id uint) error {
	_, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", id), token, false, nil)
	return err
}

package models

import (
	"time"

	"github.com/yeremiapane/restaurant-portal/policy"
)

// Order mirrors the store's order record.
type Order struct {
	ID              uint                 `json:"id"`
	OrderNumber     string               `json:"order_number"`
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerPhone   string               `json:"customer_phone"`
	DeliveryAddress string               `json:"delivery_address"`
	DeliveryCity    string               `json:"delivery_city"`
	DeliveryZipCode string               `json:"delivery_zip_code"`
	Items           []OrderItem          `json:"items"`
	Subtotal        float64              `json:"subtotal"`
	DeliveryFee     float64              `json:"delivery_fee"`
	TotalAmount     float64              `json:"total_amount"`
	PaymentMethod   policy.PaymentMethod `json:"payment_method"`
	Notes           string               `json:"notes,omitempty"`
	ReceiptFile     string               `json:"receipt_file,omitempty"`
	Status          policy.Status        `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// OrderItem is one line of an order as sent to and returned by the store.
type OrderItem struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Category     string  `json:"category"`
	IsSpicy      bool    `json:"is_spicy"`
	IsVegetarian bool    `json:"is_vegetarian"`
	ImageURL     string  `json:"image_url"`
}

// OrderRequest is the POST /orders body.
type OrderRequest struct {
	Items           []OrderItem          `json:"items"`
	PaymentMethod   policy.PaymentMethod `json:"payment_method"`
	DeliveryAddress string               `json:"delivery_address"`
	DeliveryCity    string               `json:"delivery_city"`
	DeliveryZipCode string               `json:"delivery_zip_code"`
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerPhone   string               `json:"customer_phone"`
	Notes           string               `json:"notes"`
	ReceiptFile     string               `json:"receipt_file,omitempty"`
}

// CreatedOrder identifies an order the store has accepted.
type CreatedOrder struct {
	ID          uint   `json:"id"`
	OrderNumber string `json:"order_number"`
}

// StatusUpdate is the PATCH body shared by orders, events and reservations.
type StatusUpdate struct {
	Status policy.Status `json:"status"`
}

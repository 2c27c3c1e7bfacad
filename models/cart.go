package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-portal/policy"
)

// Cart is the customer's basket before checkout. One cart per user.
type Cart struct {
	ID            string               `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        uint                 `gorm:"uniqueIndex;not null" json:"user_id"`
	PaymentMethod policy.PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	Items         []CartItem           `gorm:"foreignKey:CartID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"not null" json:"updated_at"`
}

// CartItem is one menu item in a cart.
type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       string    `gorm:"type:varchar(36);index;not null" json:"cart_id"`
	MenuItemID   uint      `gorm:"not null" json:"menu_item_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Category     string    `gorm:"type:varchar(100)" json:"category"`
	IsSpicy      bool      `json:"is_spicy"`
	IsVegetarian bool      `json:"is_vegetarian"`
	ImageURL     string    `gorm:"type:varchar(255)" json:"image_url"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// LineTotal is price × quantity, exact to the centavo.
func (i CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Round(2).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums every line.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// OrderItems converts the cart lines into the store's line-item shape.
func (c Cart) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, OrderItem{
			Name:         item.Name,
			Description:  item.Description,
			Price:        item.Price,
			Quantity:     item.Quantity,
			Category:     item.Category,
			IsSpicy:      item.IsSpicy,
			IsVegetarian: item.IsVegetarian,
			ImageURL:     item.ImageURL,
		})
	}
	return items
}

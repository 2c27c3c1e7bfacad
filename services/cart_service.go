package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartItemInput is a menu item being put in the cart.
type CartItemInput struct {
	MenuItemID   uint    `json:"menu_item_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Category     string  `json:"category"`
	IsSpicy      bool    `json:"is_spicy"`
	IsVegetarian bool    `json:"is_vegetarian"`
	ImageURL     string  `json:"image_url"`
}

// Quote is the priced view of a cart together with the payment choices that
// total allows.
type Quote struct {
	Subtotal        float64                `json:"subtotal"`
	DeliveryFee     float64                `json:"delivery_fee"`
	TotalAmount     float64                `json:"total_amount"`
	TotalDisplay    string                 `json:"total_display"`
	EligibleMethods []policy.PaymentMethod `json:"eligible_methods"`
	PaymentMethod   policy.PaymentMethod   `json:"payment_method"`
	MethodSwitched  bool                   `json:"method_switched"`
	ReceiptRequired bool                   `json:"receipt_required"`
}

// CartView is what every cart operation returns.
type CartView struct {
	Cart  *models.Cart `json:"cart"`
	Quote Quote        `json:"quote"`
}

// CartService keeps carts in the local database. Every mutation re-prices
// the cart and re-applies the payment policy, so a cash selection that a
// larger total no longer allows is switched on the spot.
type CartService struct {
	db          *gorm.DB
	payments    policy.PaymentPolicy
	deliveryFee float64
}

func NewCartService(db *gorm.DB, payments policy.PaymentPolicy, deliveryFee float64) *CartService {
	return &CartService{db: db, payments: payments, deliveryFee: deliveryFee}
}

// Get returns the user's cart, creating an empty one on first use.
func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	cart, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem puts an item in the cart; the same menu item is merged into one line.
func (s *CartService) AddItem(ctx context.Context, userID uint, in CartItemInput) (*CartView, error) {
	if err := validateCartItem(in); err != nil {
		return nil, err
	}

	var cart *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = s.load(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		for i := range cart.Items {
			item := &cart.Items[i]
			if in.MenuItemID != 0 && item.MenuItemID == in.MenuItemID {
				item.Quantity += in.Quantity
				item.UpdatedAt = now
				return tx.Save(item).Error
			}
		}

		item := models.CartItem{
			CartID:       cart.ID,
			MenuItemID:   in.MenuItemID,
			Name:         strings.TrimSpace(in.Name),
			Description:  in.Description,
			Price:        in.Price,
			Quantity:     in.Quantity,
			Category:     in.Category,
			IsSpicy:      in.IsSpicy,
			IsVegetarian: in.IsVegetarian,
			ImageURL:     in.ImageURL,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// UpdateQuantity sets a line's quantity; it must stay at least 1.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, policy.InvalidField("quantity", "must be at least 1")
	}
	cart, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, itemID)
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) (*CartView, error) {
	cart, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if findItem(cart, itemID) == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ? AND cart_id = ?", itemID, cart.ID).Error; err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return s.view(ctx, cart)
}

// SelectPaymentMethod records the customer's choice. A method the current
// total does not allow is refused rather than silently replaced.
func (s *CartService) SelectPaymentMethod(ctx context.Context, userID uint, raw string) (*CartView, error) {
	method, err := policy.ParsePaymentMethod(raw)
	if err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if total := s.total(cart); !s.payments.IsEligible(method, total) {
		return nil, fmt.Errorf("%w: %s is not available for %s", policy.ErrPaymentMethodIneligible, method, utils.FormatPeso(total))
	}
	cart.PaymentMethod = method
	if err := s.db.WithContext(ctx).Model(cart).Update("payment_method", method).Error; err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// Clear empties the cart after a successful checkout. The payment choice is
// kept for the next order.
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	return s.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// Price computes the quote for cart without touching the database.
func (s *CartService) Price(cart *models.Cart) Quote {
	subtotal := cart.Subtotal()
	fee := decimal.Zero
	if len(cart.Items) > 0 {
		fee = decimal.NewFromFloat(s.deliveryFee).Round(2)
	}
	total := subtotal.Add(fee).InexactFloat64()

	method, switched := s.payments.Reconcile(cart.PaymentMethod, total)
	return Quote{
		Subtotal:        subtotal.InexactFloat64(),
		DeliveryFee:     fee.InexactFloat64(),
		TotalAmount:     total,
		TotalDisplay:    utils.FormatPeso(total),
		EligibleMethods: s.payments.EligibleMethods(total),
		PaymentMethod:   method,
		MethodSwitched:  switched,
		ReceiptRequired: method != "" && s.payments.RequiresReceipt(method),
	}
}

// Threshold is the total above which cash is refused.
func (s *CartService) Threshold() float64 {
	return s.payments.HighValueThreshold
}

func (s *CartService) total(cart *models.Cart) float64 {
	return s.Price(cart).TotalAmount
}

// view prices the cart and persists an automatic method switch.
func (s *CartService) view(ctx context.Context, cart *models.Cart) (*CartView, error) {
	quote := s.Price(cart)
	if quote.MethodSwitched {
		utils.InfoLogger.Infof("cart %s: total %s no longer allows %s, switched to %s",
			cart.ID, quote.TotalDisplay, cart.PaymentMethod, quote.PaymentMethod)
		cart.PaymentMethod = quote.PaymentMethod
		if err := s.db.WithContext(ctx).Model(cart).Update("payment_method", quote.PaymentMethod).Error; err != nil {
			return nil, err
		}
	}
	return &CartView{Cart: cart, Quote: quote}, nil
}

func (s *CartService) load(ctx context.Context, db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	cart = models.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func findItem(cart *models.Cart, itemID uint) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i]
		}
	}
	return nil
}

func validateCartItem(in CartItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return policy.MissingField("name")
	}
	if in.Price < 0 {
		return policy.InvalidField("price", "must not be negative")
	}
	if in.Quantity < 1 {
		return policy.InvalidField("quantity", "must be at least 1")
	}
	return nil
}

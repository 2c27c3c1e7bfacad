package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// CheckoutForm is the delivery and contact data entered at checkout.
type CheckoutForm struct {
	CustomerName    string `form:"customer_name" json:"customer_name"`
	CustomerEmail   string `form:"customer_email" json:"customer_email"`
	CustomerPhone   string `form:"customer_phone" json:"customer_phone"`
	DeliveryAddress string `form:"delivery_address" json:"delivery_address"`
	DeliveryCity    string `form:"delivery_city" json:"delivery_city"`
	DeliveryZipCode string `form:"delivery_zip_code" json:"delivery_zip_code"`
	PaymentMethod   string `form:"payment_method" json:"payment_method"`
	Notes           string `form:"notes" json:"notes"`
}

var checkoutRequiredFields = []string{
	"customer_name",
	"customer_email",
	"customer_phone",
	"delivery_address",
	"delivery_city",
	"delivery_zip_code",
}

func (f CheckoutForm) values() map[string]string {
	return map[string]string{
		"customer_name":     f.CustomerName,
		"customer_email":    f.CustomerEmail,
		"customer_phone":    f.CustomerPhone,
		"delivery_address":  f.DeliveryAddress,
		"delivery_city":     f.DeliveryCity,
		"delivery_zip_code": f.DeliveryZipCode,
	}
}

// CheckoutResult identifies the order the store created.
type CheckoutResult struct {
	OrderID     uint                 `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	Status      policy.Status        `json:"status"`
	TotalAmount float64              `json:"total_amount"`
	Payment     policy.PaymentMethod `json:"payment_method"`
}

// SubmissionError wraps a refused or failed submission. Message is the
// store's own text, shown to the customer unchanged.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.Err }

func submissionFailed(err error) error {
	var apiErr interface{ Unauthorized() bool }
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return err
	}
	return &SubmissionError{Message: err.Error(), Err: err}
}

// CheckoutService turns the caller's cart and checkout form into one order.
type CheckoutService struct {
	carts    *CartService
	orders   OrderStore
	payments policy.PaymentPolicy
	inflight *InFlight
	log      *logrus.Entry
}

func NewCheckoutService(carts *CartService, orders OrderStore, payments policy.PaymentPolicy, inflight *InFlight) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		payments: payments,
		inflight: inflight,
		log:      utils.Component("checkout"),
	}
}

// Quote prices the caller's cart.
func (s *CheckoutService) Quote(ctx context.Context, sess models.Session) (*CartView, error) {
	return s.carts.Get(ctx, sess.UserID)
}

// Submit validates everything locally before the single create call. A
// double submit of the same cart joins the first attempt.
func (s *CheckoutService) Submit(ctx context.Context, sess models.Session, form CheckoutForm, receipt *models.Attachment) (*CheckoutResult, error) {
	view, err := s.carts.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	req, err := s.buildRequest(view, form, receipt)
	if err != nil {
		return nil, err
	}

	key := ActionKey("checkout", view.Cart.ID, "submit")
	res, err := s.inflight.Do(ctx, key, func() (interface{}, error) {
		created, err := s.orders.CreateOrder(ctx, sess.Token, *req)
		if err != nil {
			s.log.WithError(err).WithField("cart", view.Cart.ID).Warn("order submission failed")
			return nil, submissionFailed(err)
		}
		if err := s.carts.Clear(ctx, view.Cart.ID); err != nil {
			s.log.WithError(err).WithField("cart", view.Cart.ID).Error("order created but cart not cleared")
		}
		s.log.WithFields(logrus.Fields{
			"order":  created.OrderNumber,
			"user":   sess.UserID,
			"total":  view.Quote.TotalAmount,
			"method": req.PaymentMethod,
		}).Info("order submitted")
		return &CheckoutResult{
			OrderID:     created.ID,
			OrderNumber: created.OrderNumber,
			Status:      policy.StatusPending,
			TotalAmount: view.Quote.TotalAmount,
			Payment:     req.PaymentMethod,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*CheckoutResult), nil
}

func (s *CheckoutService) buildRequest(view *CartView, form CheckoutForm, receipt *models.Attachment) (*models.OrderRequest, error) {
	cart := view.Cart
	if len(cart.Items) == 0 {
		return nil, policy.ErrEmptyCart
	}
	for _, item := range cart.Items {
		if item.Quantity < 1 {
			return nil, policy.InvalidField("items", fmt.Sprintf("%s must have a quantity of at least 1", item.Name))
		}
		if item.Price < 0 {
			return nil, policy.InvalidField("items", fmt.Sprintf("%s has a negative price", item.Name))
		}
	}

	if err := policy.RequireFields(checkoutRequiredFields, form.values()); err != nil {
		return nil, err
	}
	if err := policy.ValidateEmail(form.CustomerEmail); err != nil {
		return nil, err
	}

	method := view.Quote.PaymentMethod
	if strings.TrimSpace(form.PaymentMethod) != "" {
		parsed, err := policy.ParsePaymentMethod(form.PaymentMethod)
		if err != nil {
			return nil, err
		}
		method = parsed
	}
	if err := s.payments.Validate(method, view.Quote.TotalAmount, receipt.Present()); err != nil {
		return nil, err
	}

	req := &models.OrderRequest{
		Items:           cart.OrderItems(),
		PaymentMethod:   method,
		DeliveryAddress: utils.SanitizeText(form.DeliveryAddress),
		DeliveryCity:    utils.SanitizeText(form.DeliveryCity),
		DeliveryZipCode: strings.TrimSpace(form.DeliveryZipCode),
		CustomerName:    utils.SanitizeText(form.CustomerName),
		CustomerEmail:   strings.TrimSpace(form.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(form.CustomerPhone),
		Notes:           utils.SanitizeText(form.Notes),
	}
	if receipt.Present() {
		req.ReceiptFile = receipt.DataURL()
	}
	return req, nil
}

package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

type CartController struct {
	responder
	Carts *services.CartService
}

func NewCartController(carts *services.CartService, loginPath string) *CartController {
	return &CartController{responder: responder{loginPath: loginPath}, Carts: carts}
}

// GetCart -> cart with its current quote
func (cc *CartController) GetCart(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	view, err := cc.Carts.Get(c.Request.Context(), sess.UserID)
	if err != nil {
		cc.fail(c, err)
		return
	}
	cc.respondCart(c, http.StatusOK, "Cart", view)
}

func (cc *CartController) AddItem(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	var req services.CartItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := cc.Carts.AddItem(c.Request.Context(), sess.UserID, req)
	if err != nil {
		cc.fail(c, err)
		return
	}
	cc.respondCart(c, http.StatusCreated, "Item added", view)
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := cc.Carts.UpdateQuantity(c.Request.Context(), sess.UserID, itemID, req.Quantity)
	if err != nil {
		cc.fail(c, err)
		return
	}
	cc.respondCart(c, http.StatusOK, "Item updated", view)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	view, err := cc.Carts.RemoveItem(c.Request.Context(), sess.UserID, itemID)
	if err != nil {
		cc.fail(c, err)
		return
	}
	cc.respondCart(c, http.StatusOK, "Item removed", view)
}

// SetPaymentMethod -> choose cash / gcash / security_bank for the cart
func (cc *CartController) SetPaymentMethod(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := cc.Carts.SelectPaymentMethod(c.Request.Context(), sess.UserID, req.PaymentMethod)
	if err != nil {
		cc.fail(c, err)
		return
	}
	cc.respondCart(c, http.StatusOK, "Payment method updated", view)
}

// respondCart tells the customer when the payment method was switched for them.
func (cc *CartController) respondCart(c *gin.Context, code int, message string, view *services.CartView) {
	if view.Quote.MethodSwitched {
		message = fmt.Sprintf("Cash is not available above %s; payment method switched to %s",
			utils.FormatPeso(cc.Carts.Threshold()), view.Quote.PaymentMethod)
	}
	utils.RespondJSON(c, code, message, view)
}

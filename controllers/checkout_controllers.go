package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

type CheckoutController struct {
	responder
	Checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService, loginPath string) *CheckoutController {
	return &CheckoutController{responder: responder{loginPath: loginPath}, Checkout: checkout}
}

// Submit -> place the cart as one order. Accepts multipart (with an optional
// receipt_file) or a plain form.
func (cc *CheckoutController) Submit(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}

	var form services.CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	receipt, err := readAttachment(c, "receipt_file")
	if err != nil {
		cc.fail(c, err)
		return
	}

	result, err := cc.Checkout.Submit(c.Request.Context(), sess, form, receipt)
	if err != nil {
		cc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", result)
}

// Quote -> totals and payment choices shown on the checkout page
func (cc *CheckoutController) Quote(c *gin.Context) {
	sess, ok := cc.session(c)
	if !ok {
		return
	}
	view, err := cc.Checkout.Quote(c.Request.Context(), sess)
	if err != nil {
		cc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Checkout quote", view)
}

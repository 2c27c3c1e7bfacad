package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// PolicyController previews the house rules without touching the store.
type PolicyController struct {
	responder
	Fees     policy.FeeSchedule
	Payments policy.PaymentPolicy
}

func NewPolicyController(fees policy.FeeSchedule, payments policy.PaymentPolicy) *PolicyController {
	return &PolicyController{Fees: fees, Payments: payments}
}

// Fee -> GET /policy/fee?occasion=Birthday&guests=6
func (pc *PolicyController) Fee(c *gin.Context) {
	guests, err := strconv.Atoi(c.Query("guests"))
	if err != nil {
		pc.fail(c, policy.InvalidField("guests", "must be a whole number"))
		return
	}
	occasion := c.Query("occasion")

	fee, err := pc.Fees.Fee(occasion, guests)
	if err != nil {
		pc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation fee", gin.H{
		"occasion_type": occasion,
		"guests":        guests,
		"base":          pc.Fees.Base(occasion),
		"surcharge":     pc.Fees.Surcharge(guests),
		"fee":           fee,
		"fee_display":   utils.FormatPeso(fee),
	})
}

// PaymentMethods -> GET /policy/payment-methods?total=1200
func (pc *PolicyController) PaymentMethods(c *gin.Context) {
	total, err := strconv.ParseFloat(c.Query("total"), 64)
	if err != nil || total < 0 {
		pc.fail(c, policy.InvalidField("total", "must be a non-negative amount"))
		return
	}

	methods := pc.Payments.EligibleMethods(total)
	receipts := make(map[policy.PaymentMethod]bool, len(methods))
	for _, method := range methods {
		receipts[method] = pc.Payments.RequiresReceipt(method)
	}
	utils.RespondJSON(c, http.StatusOK, "Eligible payment methods", gin.H{
		"total":            total,
		"total_display":    utils.FormatPeso(total),
		"eligible_methods": methods,
		"receipt_required": receipts,
		"threshold":        pc.Payments.HighValueThreshold,
	})
}

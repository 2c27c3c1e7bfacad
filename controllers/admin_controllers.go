package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

type AdminController struct {
	responder
	Receipts *services.ReceiptRecovery
}

func NewAdminController(receipts *services.ReceiptRecovery, loginPath string) *AdminController {
	return &AdminController{responder: responder{loginPath: loginPath}, Receipts: receipts}
}

// ListPendingReceipts -> receipts whose upload failed after the reservation was created
func (ac *AdminController) ListPendingReceipts(c *gin.Context) {
	pending, err := ac.Receipts.ListPending(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipts awaiting review", gin.H{
		"receipts": pending,
		"metrics":  ac.Receipts.Metrics(),
	})
}

// RetryReceipt -> upload a stored receipt again
func (ac *AdminController) RetryReceipt(c *gin.Context) {
	sess, ok := ac.session(c)
	if !ok {
		return
	}

	pending, err := ac.Receipts.Retry(c.Request.Context(), sess, c.Param("upload_id"))
	if err != nil {
		ac.failWith(c, err, pending)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt uploaded", pending)
}

package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

type ReservationController struct {
	responder
	Wizard *services.ReservationWizard
}

func NewReservationController(wizard *services.ReservationWizard, loginPath string) *ReservationController {
	return &ReservationController{responder: responder{loginPath: loginPath}, Wizard: wizard}
}

// GetWizard -> resume the caller's draft
func (rc *ReservationController) GetWizard(c *gin.Context) {
	sess, ok := rc.session(c)
	if !ok {
		return
	}
	view, err := rc.Wizard.Current(c.Request.Context(), sess)
	if err != nil {
		rc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Stage %d", view.Draft.Stage), view)
}

// SaveStage -> validate one stage and continue
func (rc *ReservationController) SaveStage(c *gin.Context) {
	sess, ok := rc.session(c)
	if !ok {
		return
	}
	stage, err := strconv.Atoi(c.Param("stage"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid stage"))
		return
	}
	var in services.StageInput
	if err := c.ShouldBind(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := rc.Wizard.SaveStage(c.Request.Context(), sess, stage, in)
	if err != nil {
		rc.failWith(c, err, view)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Stage %d", view.Draft.Stage), view)
}

func (rc *ReservationController) Back(c *gin.Context) {
	sess, ok := rc.session(c)
	if !ok {
		return
	}
	view, err := rc.Wizard.Back(c.Request.Context(), sess)
	if err != nil {
		rc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Stage %d", view.Draft.Stage), view)
}

// Submit -> create the reservation, then upload its receipt
func (rc *ReservationController) Submit(c *gin.Context) {
	sess, ok := rc.session(c)
	if !ok {
		return
	}
	var in services.StageInput
	if err := c.ShouldBind(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	receipt, err := readAttachment(c, "receipt")
	if err != nil {
		rc.fail(c, err)
		return
	}

	result, err := rc.Wizard.Submit(c.Request.Context(), sess, in, receipt)
	if err != nil {
		rc.fail(c, err)
		return
	}

	message := "Reservation submitted"
	if result.Warning != "" {
		message = result.Warning
	}
	utils.RespondJSON(c, http.StatusCreated, message, result)
}

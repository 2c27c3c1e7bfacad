package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// LifecycleController serves one entity kind; the router builds one each for
// orders, events and reservations.
type LifecycleController struct {
	responder
	Lifecycle *services.LifecycleService
	kind      policy.EntityKind
	param     string
}

func NewLifecycleController(lifecycle *services.LifecycleService, kind policy.EntityKind, loginPath string) *LifecycleController {
	return &LifecycleController{
		responder: responder{loginPath: loginPath},
		Lifecycle: lifecycle,
		kind:      kind,
		param:     string(kind) + "_id",
	}
}

// Param is the route parameter holding the entity id, e.g. "order_id".
func (lc *LifecycleController) Param() string {
	return lc.param
}

// Get -> current state from the store plus the caller's allowed moves
func (lc *LifecycleController) Get(c *gin.Context) {
	sess, id, ok := lc.target(c)
	if !ok {
		return
	}
	state, err := lc.Lifecycle.Get(c.Request.Context(), sess, lc.kind, id)
	if err != nil {
		lc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%s %d", lc.kind, id), state)
}

func (lc *LifecycleController) Transitions(c *gin.Context) {
	sess, id, ok := lc.target(c)
	if !ok {
		return
	}
	allowed, err := lc.Lifecycle.AllowedTransitions(c.Request.Context(), sess, lc.kind, id)
	if err != nil {
		lc.fail(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Allowed transitions", gin.H{"allowed_transitions": allowed})
}

// UpdateStatus -> admin moves the entity along its lifecycle
func (lc *LifecycleController) UpdateStatus(c *gin.Context) {
	sess, id, ok := lc.target(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	state, err := lc.Lifecycle.Transition(c.Request.Context(), sess, lc.kind, id, req.Status)
	if err != nil {
		lc.failWith(c, err, state)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%s status updated to %s", lc.kind, state.Status), state)
}

// Cancel -> customer cancels their own order or reservation
func (lc *LifecycleController) Cancel(c *gin.Context) {
	sess, id, ok := lc.target(c)
	if !ok {
		return
	}

	var (
		state *services.EntityState
		err   error
	)
	switch lc.kind {
	case policy.KindOrder:
		state, err = lc.Lifecycle.CancelOrder(c.Request.Context(), sess, id)
	case policy.KindReservation:
		state, err = lc.Lifecycle.CancelReservation(c.Request.Context(), sess, id)
	default:
		err = &policy.TransitionError{Kind: lc.kind, To: policy.StatusCancelled, Role: sess.LifecycleRole(), Err: policy.ErrForbidden}
	}
	if err != nil {
		lc.failWith(c, err, state)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%s cancelled", lc.kind), state)
}

func (lc *LifecycleController) target(c *gin.Context) (models.Session, uint, bool) {
	sess, ok := lc.session(c)
	if !ok {
		return sess, 0, false
	}
	id, ok := parseID(c, lc.param)
	return sess, id, ok
}

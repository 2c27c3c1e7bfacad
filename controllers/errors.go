package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/apiclient"
	"github.com/yeremiapane/restaurant-portal/middlewares"
	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/services"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// responder turns service errors into responses. Every controller embeds it.
type responder struct {
	loginPath string
}

func (r responder) fail(c *gin.Context, err error) {
	r.failWith(c, err, nil)
}

// failWith answers with err and data, e.g. the store's state after it
// refused a change.
func (r responder) failWith(c *gin.Context, err error, data interface{}) {
	_ = c.Error(err)

	var apiErr *apiclient.APIError
	hasAPIErr := errors.As(err, &apiErr)

	switch {
	case errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrPendingReceiptNotFound):
		utils.RespondErrorData(c, http.StatusNotFound, err, data)
		return
	case errors.Is(err, services.ErrReceiptAlreadyUploaded):
		utils.RespondErrorData(c, http.StatusConflict, err, data)
		return
	}

	switch policy.Classify(err) {
	case policy.CategoryValidation:
		utils.RespondErrorData(c, http.StatusUnprocessableEntity, err, data)
	case policy.CategoryPolicy:
		utils.RespondErrorData(c, http.StatusConflict, err, data)
	case policy.CategoryTransition:
		if errors.Is(err, policy.ErrForbidden) {
			utils.RespondErrorData(c, http.StatusForbidden, err, data)
			return
		}
		utils.RespondErrorData(c, http.StatusConflict, err, data)
	case policy.CategoryAuth:
		middlewares.AbortUnauthorized(c, r.loginPath, err)
	default:
		if hasAPIErr && apiErr.Rejected() && apiErr.StatusCode >= http.StatusBadRequest {
			utils.RespondErrorData(c, apiErr.StatusCode, err, data)
			return
		}
		utils.ErrorLogger.WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
		utils.RespondErrorData(c, http.StatusBadGateway, err, data)
	}
}

func (r responder) session(c *gin.Context) (models.Session, bool) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		middlewares.AbortUnauthorized(c, r.loginPath, errors.New("unauthorized"))
	}
	return sess, ok
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

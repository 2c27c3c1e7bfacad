package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// RoleCheck only lets callers with the given lifecycle role through. It must
// run after AuthMiddleware.
func RoleCheck(role policy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, exists := CurrentSession(c)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if sess.LifecycleRole() != role {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", role))
			c.Abort()
			return
		}

		c.Next()
	}
}

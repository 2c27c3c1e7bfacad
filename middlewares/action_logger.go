package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-portal/utils"
)

// ActionLogger records who attempted a state-changing action and whether it
// went through. param names the route parameter identifying the entity.
func ActionLogger(action, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := logrus.Fields{"action": action}
		if param != "" {
			fields[param] = c.Param(param)
		}
		if sess, ok := CurrentSession(c); ok {
			fields["user"] = sess.UserID
			fields["role"] = sess.Role
		}

		c.Next()

		fields["status"] = c.Writer.Status()
		if c.Writer.Status() < 300 {
			utils.InfoLogger.WithFields(fields).Info("action completed")
		} else {
			utils.ErrorLogger.WithFields(fields).Error("action refused")
		}
	}
}

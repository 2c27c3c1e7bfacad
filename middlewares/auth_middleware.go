package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/utils"
)

const (
	// SessionKey holds the caller's models.Session in the gin context.
	SessionKey = "session"
	// CredentialCookie carries the access token for browser clients.
	CredentialCookie = "portal_token"
)

var errMissingToken = errors.New("Authorization header missing")

// AuthMiddleware verifies the bearer token and stores the caller's session.
// Browser clients may send the token in the credential cookie instead.
func AuthMiddleware(secret []byte, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			AbortUnauthorized(c, loginPath, errMissingToken)
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			AbortUnauthorized(c, loginPath, err)
			return
		}

		c.Set(SessionKey, models.Session{
			UserID: claims.UserID,
			Role:   claims.Role,
			Token:  tokenString,
			Name:   claims.Name,
			Email:  claims.Email,
			Phone:  claims.Phone,
		})
		c.Next()
	}
}

// AbortUnauthorized clears the stored credential and points the client at
// the login page. It is also used when the store answers 401.
func AbortUnauthorized(c *gin.Context, loginPath string, err error) {
	c.SetCookie(CredentialCookie, "", -1, "/", "", false, true)
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    gin.H{"redirect": loginPath},
	})
}

// CurrentSession returns the session set by AuthMiddleware.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return models.Session{}, false
	}
	sess, ok := value.(models.Session)
	return sess, ok
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(CredentialCookie); err == nil {
		return cookie
	}
	return ""
}

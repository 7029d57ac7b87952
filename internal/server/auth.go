package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

// SessionUserKey is the gin context key holding the login of the authenticated caller.
const SessionUserKey = "session_user"

const realm = `Basic realm="Satellite"`

type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*models.User, error)
}

// BasicAuth rejects requests without valid basic credentials with 401.
func BasicAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		login, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c, "authentication required")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), login, password)
		if err != nil {
			if srvErrors.IsUnauthorizedError(err) {
				unauthorized(c, "unable to authenticate user "+login)
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, v1.ErrorResponse{
				DisplayMessage: "internal server error",
				Errors:         []string{"internal server error"},
			})
			return
		}

		c.Set(SessionUserKey, user.Login)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", realm)
	c.AbortWithStatusJSON(http.StatusUnauthorized, v1.ErrorResponse{DisplayMessage: msg, Errors: []string{msg}})
}

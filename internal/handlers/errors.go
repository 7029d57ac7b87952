package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case srvErrors.IsUnauthorizedError(err):
		return http.StatusUnauthorized
	case srvErrors.IsResourceNotFoundError(err):
		return http.StatusNotFound
	case srvErrors.IsValidationError(err),
		srvErrors.IsDuplicateReferenceError(err),
		srvErrors.IsCompositionRuleViolationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// abort writes the error body of err and stops the handler chain.
func abort(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		zap.S().Named("handlers").Errorw("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, v1.ErrorResponse{DisplayMessage: "internal server error", Errors: []string{"internal server error"}})
		return
	}

	body := v1.ErrorResponse{DisplayMessage: err.Error(), Errors: []string{err.Error()}}
	var verr *srvErrors.ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Messages()
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, v1.ErrorResponse{
		DisplayMessage: "malformed request: " + err.Error(),
		Errors:         []string{err.Error()},
	})
}

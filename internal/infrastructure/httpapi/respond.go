package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the error object of every non-2xx response.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	slog.Warn("http.error",
		"status", status,
		"code", code,
		"message", message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", c.GetString(requestIDKey),
	)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// respondErr maps service errors onto HTTP status codes.
func respondErr(c *gin.Context, err error) {
	var specErr *intake.InvalidSpecError
	switch {
	case errors.As(err, &specErr):
		var details interface{}
		if len(specErr.Violations) > 0 {
			details = specErr.Violations
		} else if specErr.Field != "" {
			details = []map[string]string{{"field": specErr.Field, "issue": specErr.Reason}}
		}
		respondError(c, http.StatusUnprocessableEntity, "invalid_spec", err.Error(), details)
	case errors.Is(err, routing.ErrUnknownClassification):
		respondError(c, http.StatusUnprocessableEntity, "unknown_classification", err.Error(), nil)
	case errors.Is(err, routing.ErrInvalidConfig):
		respondError(c, http.StatusUnprocessableEntity, "invalid_config", err.Error(), nil)
	case errors.Is(err, application.ErrIntakeNotFound), errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, application.ErrNoRouting), errors.Is(err, application.ErrNoSpec):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, intake.ErrInvalidTransition), errors.Is(err, application.ErrApprovalRequired),
		errors.Is(err, application.ErrIntakeLocked):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, application.ErrNotInitialized):
		respondError(c, http.StatusServiceUnavailable, "not_initialized", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
	}
}

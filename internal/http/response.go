package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expensedash/internal/analytics"
	"expensedash/internal/core"
	applog "expensedash/internal/log"
)

// errorBody is the JSON envelope of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analytics.ErrUnknownQuery):
		return http.StatusNotFound
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Server-side failures are logged
// and their details withheld from the client.
func respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body = errorBody{Error: ve.Err.Error(), Field: ve.Field}
	}

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Request failed", err,
			applog.ComponentHTTP, op,
			applog.NewFields().WithHTTPRequest(c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery, c.Request.UserAgent()))
		body = errorBody{Error: "internal error"}
		var se *core.StorageError
		if errors.As(err, &se) {
			body.Error = "storage unavailable"
		}
	}

	c.AbortWithStatusJSON(status, body)
}

package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// StatusFor maps a service error code onto an HTTP status.
func StatusFor(code string) int {
	switch code {
	case "not_found", "invalid_qr":
		return http.StatusNotFound
	case "validation", "benefit_not_selected":
		return http.StatusBadRequest
	case "invalid_pin", "forbidden":
		return http.StatusForbidden
	case "already_redeemed", "ticket_closed", "invalid_state":
		return http.StatusConflict
	case "backend":
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var messages = map[string]string{
	"not_found":            "Resource not found.",
	"invalid_qr":           "QR code does not match a ticket of this event.",
	"invalid_pin":          "Invalid PIN.",
	"forbidden":            "You don't have permission to access this resource.",
	"already_redeemed":     "Benefit has already been redeemed.",
	"ticket_closed":        "Ticket is no longer valid.",
	"benefit_not_selected": "Benefit is not included in this ticket.",
	"invalid_state":        "Scan session is not in the right state for this action.",
	"backend":              "A backing service is unavailable. Please try again.",
	"internal":             "Internal server error.",
}

// RespondWithServiceError writes the error response for an error returned by
// the services package. Validation messages are passed through and backend
// failures name the operation that failed. The wrapped driver error is only
// logged.
func RespondWithServiceError(c *gin.Context, err error) {
	code := services.Code(err)
	status := StatusFor(code)
	resp := ErrorResponse{
		Error:   HTTPStatusText(status),
		Code:    code,
		Message: messages[code],
	}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		resp.Message = verr.Message
		resp.Field = verr.Field
	}
	var berr *services.BackendError
	if errors.As(err, &berr) && berr.Op != "" {
		resp.Message = fmt.Sprintf("%s failed: a backing service is unavailable. Please try again.", berr.Op)
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, resp)
}

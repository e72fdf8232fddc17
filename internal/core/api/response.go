package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solatis/bulkmsg/internal/types"
)

// Response is the envelope of every HTTP reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes a successful response.
func Success(c *gin.Context, status int, message string, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Error aborts the chain and writes an error response.
func Error(c *gin.Context, code int, message string, err error) {
	c.Abort()
	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(code, resp)
}

// ValidationError writes a 400 response.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, message string, err error) {
	Error(c, http.StatusNotFound, message, err)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNodeNotFound),
		errors.Is(err, types.ErrListNotFound),
		errors.Is(err, types.ErrSessionNotFound),
		errors.Is(err, types.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrSystemList):
		return http.StatusForbidden
	case errors.Is(err, types.ErrDuplicateList):
		return http.StatusConflict
	case errors.Is(err, types.ErrFeedUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrFieldNotFound),
		errors.Is(err, types.ErrCoercionFailed),
		errors.Is(err, types.ErrInvalidOperator),
		errors.Is(err, types.ErrMissingOperand),
		errors.Is(err, types.ErrInvalidValue),
		errors.Is(err, types.ErrInvalidLogicalOperator),
		errors.Is(err, types.ErrNotAGroup),
		errors.Is(err, types.ErrNotACondition),
		errors.Is(err, types.ErrNoRecipients),
		errors.Is(err, types.ErrInvalidMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status its kind maps to.
func Fail(c *gin.Context, message string, err error) {
	Error(c, statusFor(err), message, err)
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Kind labels the class of failure so handlers and clients can branch on it
// without parsing messages.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindAlreadyProcessed  Kind = "ALREADY_PROCESSED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindInternal          Kind = "INTERNAL"
)

// Error is the API error carried from services up to the HTTP layer.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Kind    Kind   `json:"kind,omitempty"`
}

var (
	ErrInternalServerError = &Error{Message: "internal server error", Status: http.StatusInternalServerError, Kind: KindInternal}
	ErrBadRequest          = &Error{Message: "bad request", Status: http.StatusBadRequest, Kind: KindValidation}
	ErrNotFound            = &Error{Message: "record not found", Status: http.StatusNotFound, Kind: KindNotFound}
	ErrInvalidPassword     = &Error{Message: "invalid email or password", Status: http.StatusUnprocessableEntity, Kind: KindValidation}
	InActiveUserError      = errors.New("user inactive")
)

func (e *Error) Error() string {
	return e.Message
}

// New creates a new generic Error with the given status code.
func New(message string, status int) *Error {
	return &Error{Message: message, Status: status}
}

// ValidationError flags a missing or malformed required field.
func ValidationError(message string) *Error {
	return &Error{Message: message, Status: http.StatusBadRequest, Kind: KindValidation}
}

// InvalidTransition flags a target status unreachable from the current one.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Message: fmt.Sprintf("cannot transition incident from %s to %s", from, to),
		Status:  http.StatusConflict,
		Kind:    KindInvalidTransition,
	}
}

// AlreadyProcessed flags a duplicate terminal transition or ledger mutation.
func AlreadyProcessed(message string) *Error {
	return &Error{Message: message, Status: http.StatusConflict, Kind: KindAlreadyProcessed}
}

// Forbidden flags a role or ownership check failure.
func Forbidden(message string) *Error {
	return &Error{Message: message, Status: http.StatusForbidden, Kind: KindForbidden}
}

// NotFound flags an unknown incident, post or user id.
func NotFound(message string) *Error {
	return &Error{Message: message, Status: http.StatusNotFound, Kind: KindNotFound}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// CoverErr hides internal detail behind a safe message unless debug is on.
func CoverErr(err error, safe *Error, debug bool) *Error {
	if debug {
		return &Error{Message: err.Error(), Status: safe.Status, Kind: safe.Kind}
	}
	return safe
}

// GetUniqueContraintError maps postgres unique violations to a friendly 400.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return ValidationError("email already in use")
	case strings.Contains(msg, "username"):
		return ValidationError("username already in use")
	default:
		return ValidationError(msg)
	}
}

// ErrorHandler is plugged into the rate limiter middleware.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"message": "too many requests, try again later",
		"status":  http.StatusTooManyRequests,
	})
	c.Abort()
}

package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures so the HTTP boundary can map them to a status.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"
	KindForbidden          ErrorKind = "Forbidden"
	KindInvalidState       ErrorKind = "InvalidState"
	KindConflict           ErrorKind = "Conflict"
	KindVerificationFailed ErrorKind = "VerificationFailed"
	KindValidation         ErrorKind = "ValidationError"
	KindUnauthorized       ErrorKind = "Unauthorized"
	KindInternal           ErrorKind = "Internal"
)

// AppError is the error type returned by services.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *AppError {
	return newAppError(KindForbidden, format, args...)
}

func InvalidState(format string, args ...any) *AppError {
	return newAppError(KindInvalidState, format, args...)
}

func Conflict(format string, args ...any) *AppError {
	return newAppError(KindConflict, format, args...)
}

func VerificationFailed(format string, args ...any) *AppError {
	return newAppError(KindVerificationFailed, format, args...)
}

func Validation(format string, args ...any) *AppError {
	return newAppError(KindValidation, format, args...)
}

func Unauthorized(format string, args ...any) *AppError {
	return newAppError(KindUnauthorized, format, args...)
}

// Internal wraps an unexpected failure. Its message is never shown to clients.
func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState, KindConflict, KindVerificationFailed, KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}

// RespondError writes err in the standard envelope. Internal failures are logged and masked.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	message := err.Error()

	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		GetLogger().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		message = "Internal Server Error"
	}
	c.JSON(status, ErrorResponse{Message: message})
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("path", c.Request.URL.Path))
	c.JSON(status, ErrorResponse{Message: message})
}

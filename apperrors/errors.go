// Package apperrors defines the error taxonomy every handler funnels into.
// Handlers attach an *AppError to the Gin context; the error middleware maps
// it to an HTTP status and the uniform {"status": false, "message"} body.
package apperrors

import "net/http"

type Kind int

const (
	KindValidation Kind = iota // malformed or missing input
	KindNotFound               // entity absent
	KindAuth                   // missing/invalid token or bad credentials
	KindForbidden              // authenticated but not authorized
	KindConflict               // duplicate email, insufficient stock, already cancelled
	KindInternal               // unexpected store failure
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, only surfaced outside release mode
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *AppError { return &AppError{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *AppError   { return &AppError{Kind: KindNotFound, Message: msg} }
func Auth(msg string) *AppError       { return &AppError{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *AppError  { return &AppError{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *AppError   { return &AppError{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected error behind a generic client message.
func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

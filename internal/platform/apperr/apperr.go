package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeForbidden       Code = "FORBIDDEN"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *Error     { return &Error{Code: CodeInvalidArgument, Message: msg} }
func NotFound(msg string) *Error    { return &Error{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *Error    { return &Error{Code: CodeConflict, Message: msg} }
func Forbidden(msg string) *Error   { return &Error{Code: CodeForbidden, Message: msg} }
func Unavailable(msg string) *Error { return &Error{Code: CodeUnavailable, Message: msg} }
func Internal(msg string) *Error    { return &Error{Code: CodeInternal, Message: msg} }

func ToHTTPStatus(err error) int {
	var api *Error
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeForbidden:
			return http.StatusForbidden
		case CodeUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// FromErr converts any error to a response body. Non-Error values are
// masked as INTERNAL so driver details never reach the client.
func FromErr(err error) *Error {
	var api *Error
	if errors.As(err, &api) {
		return api
	}
	if IsUnavailable(err) {
		return Unavailable("storage unavailable, retry later")
	}
	return Internal("internal error")
}

// IsUnavailable reports whether err looks like a lost/unreachable store
// rather than a statement-level failure. Write paths rely on this to fail
// closed with a retryable 503.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

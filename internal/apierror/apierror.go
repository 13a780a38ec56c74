// Package apierror defines the closed error taxonomy shared by the upstream
// client, the cache layer and the HTTP handlers.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeRateLimit           Code = "RATE_LIMIT"
	CodeNetwork             Code = "NETWORK_ERROR"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUpstreamAPIError    Code = "UPSTREAM_API_ERROR"
	CodeUpstreamServerError Code = "UPSTREAM_SERVER_ERROR"
)

var statusByCode = map[Code]int{
	CodeInternal:            http.StatusInternalServerError,
	CodeRateLimit:           http.StatusTooManyRequests,
	CodeNetwork:             http.StatusServiceUnavailable,
	CodeValidation:          http.StatusBadGateway,
	CodeBadRequest:          http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeNotFound:            http.StatusNotFound,
	CodeUpstreamAPIError:    http.StatusBadGateway,
	CodeUpstreamServerError: http.StatusServiceUnavailable,
}

// Status returns the HTTP status served for c. Unknown codes map to 500.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Message is internal and may contain
// upstream text; it is never shown to end users.
type Error struct {
	Code           Code
	Message        string
	UpstreamStatus int
	Details        any
	Err            error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.UpstreamStatus != 0 {
		msg = fmt.Sprintf("%s (upstream status %d)", msg, e.UpstreamStatus)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) StatusCode() int { return e.Code.Status() }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func RateLimit(message string) *Error {
	return &Error{Code: CodeRateLimit, Message: message, UpstreamStatus: http.StatusTooManyRequests}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, UpstreamStatus: http.StatusUnauthorized}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message}
}

func Network(err error) *Error {
	return &Error{Code: CodeNetwork, Message: "network request failed", Err: err}
}

func Validation(message string, details any, err error) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details, Err: err}
}

// Upstream classifies a non-2xx upstream status that has no dedicated code.
func Upstream(status int, message string) *Error {
	code := CodeUpstreamAPIError
	if status >= 500 {
		code = CodeUpstreamServerError
	}
	return &Error{Code: code, Message: message, UpstreamStatus: status}
}

// CodeOf returns the classified code of err, or CodeInternal when err is
// not (and does not wrap) an *Error.
func CodeOf(err error) Code {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Retryable reports whether err is a transient failure worth another attempt.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeNetwork, CodeUpstreamServerError:
		return true
	}
	return false
}

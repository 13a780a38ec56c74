package apierror

import (
	"errors"
	"time"
)

var messages = map[Code]string{
	CodeInternal:            "Something went wrong. Please try again.",
	CodeRateLimit:           "Too many requests. Please wait and try again.",
	CodeNetwork:             "Network issue while contacting the upstream service.",
	CodeValidation:          "Received unexpected data format from upstream service.",
	CodeBadRequest:          "Invalid request parameters.",
	CodeUnauthorized:        "Authentication failed for upstream service.",
	CodeNotFound:            "Requested resource was not found.",
	CodeUpstreamAPIError:    "Upstream API request failed.",
	CodeUpstreamServerError: "Upstream service is temporarily unavailable.",
}

// Message returns the user-safe text for code.
func Message(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[CodeInternal]
}

// FormattedError is the stable JSON envelope written for every failed
// API request.
type FormattedError struct {
	Message    string `json:"error"`
	Code       Code   `json:"code"`
	StatusCode int    `json:"-"`
	Timestamp  string `json:"timestamp"`
	Details    any    `json:"details,omitempty"`
}

var now = time.Now

// Format maps any error to exactly one FormattedError. Details are only
// filled when includeDetails is set.
func Format(err error, includeDetails bool) FormattedError {
	out := FormattedError{
		Code:      CodeInternal,
		Timestamp: now().UTC().Format(time.RFC3339),
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		out.Code = apiErr.Code
		if includeDetails {
			if apiErr.Details != nil {
				out.Details = apiErr.Details
			} else {
				out.Details = apiErr.Error()
			}
		}
	} else if includeDetails && err != nil {
		out.Details = err.Error()
	}

	out.Message = Message(out.Code)
	out.StatusCode = out.Code.Status()
	return out
}

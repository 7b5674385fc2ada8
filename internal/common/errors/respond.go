// internal/common/errors/respond.go
package errors

import (
	"fmt"
	"time"
)

// ErrorMarker prefixes every error surfaced to the end user. Surfaced errors
// are ordinary response values, never panics or bare transport faults.
const ErrorMarker = "[error]"

// UserMessage renders any error as a user-visible response line. StandardError
// values keep their message and details; anything else is normalized first.
func UserMessage(err error) string {
	stdErr := Normalize(err)
	if stdErr.Details != "" {
		return fmt.Sprintf("%s %s: %s", ErrorMarker, stdErr.Message, stdErr.Details)
	}
	return fmt.Sprintf("%s %s", ErrorMarker, stdErr.Message)
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

// Package errors provides standardized error handling for the assistant pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeKnowledgeLookupFailed ErrorCode = "KNOWLEDGE_LOOKUP_FAILED"
	ErrCodeWebLookupFailed       ErrorCode = "WEB_LOOKUP_FAILED"
	ErrCodeSearchTimeout         ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound         ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"

	ErrCodeTicketCredentialsMissing ErrorCode = "TICKET_CREDENTIALS_MISSING"
	ErrCodeTicketSubmitFailed       ErrorCode = "TICKET_SUBMIT_FAILED"
	ErrCodeTicketValidationFailed   ErrorCode = "TICKET_VALIDATION_FAILED"

	ErrCodeLLMTimeout        ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed  ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeSessionStoreError ErrorCode = "SESSION_STORE_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewKnowledgeLookupFailedError creates a retryable knowledge provider error.
func NewKnowledgeLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKnowledgeLookupFailed,
		Message:   "Knowledge repository lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebLookupFailedError creates a retryable web provider error.
func NewWebLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebLookupFailed,
		Message:   "Web search lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable lookup timeout error.
func NewSearchTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Lookup timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Knowledge index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates a non-retryable extraction error. Callers
// recover locally with the rule-based extractor; this never reaches the user.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Ticket detail extraction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketCredentialsMissingError creates a non-retryable credentials error.
func NewTicketCredentialsMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketCredentialsMissing,
		Message:   "ServiceNow credentials missing (SN_INSTANCE, SN_USER, SN_PASS)",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketSubmitFailedError creates an error carrying the last underlying
// submission failure after retries were exhausted.
func NewTicketSubmitFailedError(lastErr error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketSubmitFailed,
		Message:   "ServiceNow API failed after retries",
		Details:   lastErr.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketValidationFailedError creates a non-retryable draft validation error.
func NewTicketValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketValidationFailed,
		Message:   "Ticket draft validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable reasoning-capability timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Reasoning capability timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMRequestFailedError creates a retryable reasoning-capability error.
func NewLLMRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Reasoning capability request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError creates a retryable session persistence error.
func NewSessionStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreError,
		Message:   "Conversation session store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches DomainErrors by code and message so wrapped sentinels compare
// equal through errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery     = NewDomainError(ErrCodeValidation, "query is empty")
	ErrInvalidSlot    = NewDomainError(ErrCodeValidation, "slot must be left or right")
	ErrInvalidPage    = NewDomainError(ErrCodeValidation, "page must be a positive number")
	ErrUnknownSource  = NewDomainError(ErrCodeValidation, "unknown source")
	ErrMissingSession = NewDomainError(ErrCodeValidation, "session id is required")
	ErrInvalidEvent   = NewDomainError(ErrCodeValidation, "telemetry event is invalid")
)

// Availability errors
var (
	ErrBackendUnreachable  = NewDomainError(ErrCodeUnavailable, "search backend is not reachable")
	ErrSourceNotConfigured = NewDomainError(ErrCodeUnavailable, "search source is not configured")
	ErrCompareUnavailable  = NewDomainError(ErrCodeUnavailable, "compare mode requires both sources")
)

// Operation errors
var (
	ErrAlreadyVoted    = NewDomainError(ErrCodeInvalidOperation, "a vote was already recorded for this query")
	ErrNothingToVote   = NewDomainError(ErrCodeInvalidOperation, "no comparison results to vote on")
	ErrQuerySuperseded = NewDomainError(ErrCodeInvalidOperation, "query was superseded by a newer submission")
)

// Backend errors
var (
	ErrBackendStatus  = NewDomainError(ErrCodeInternalError, "backend returned a non-success status")
	ErrBackendRequest = NewDomainError(ErrCodeInternalError, "backend request failed")
)

// Telemetry collector errors
var (
	ErrEventNotFound = NewDomainError(ErrCodeNotFound, "telemetry event not found")
)

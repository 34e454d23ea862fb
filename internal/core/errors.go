package core

import (
	"errors"
	"fmt"
)

// Domain error codes. Adapters map these onto transport-level statuses.
const (
	ErrCodeValidation        = "validation"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeMissingLocation   = "missing_location"
	ErrCodeInsufficientStock = "insufficient_stock"
)

// DomainError is a business-rule violation: the request was well-formed but
// the operation is not allowed in the current state. Infrastructure failures
// are returned as plain wrapped errors instead.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with a formatted message.
func NewDomainError(code, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsDomainError unwraps err to a *DomainError if one is in the chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

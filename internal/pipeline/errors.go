package pipeline

import (
	"fmt"
)

// ErrorType classifies a pipeline fault.
type ErrorType string

const (
	ErrorTypeSource     ErrorType = "source"
	ErrorTypeReference  ErrorType = "reference"
	ErrorTypeExecution  ErrorType = "execution"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeValidation ErrorType = "validation"
)

// PartnerError is a whole-partner fault. Row- and field-level faults are
// absorbed as diagnostics; only an error of this kind removes a partner's
// contribution from the merged output, and even then sibling partners
// continue.
type PartnerError struct {
	Type    ErrorType              `json:"type"`
	Partner string                 `json:"partner"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *PartnerError) Error() string {
	if e == nil {
		return "unknown partner error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] partner %q: %s: %v", e.Type, e.Partner, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] partner %q: %s", e.Type, e.Partner, e.Message)
}

// Unwrap returns the underlying error.
func (e *PartnerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewSourceError reports a partner whose raw rows could not be acquired.
func NewSourceError(partner string, cause error) *PartnerError {
	return &PartnerError{
		Type:    ErrorTypeSource,
		Partner: partner,
		Message: "failed to acquire raw rows",
		Cause:   cause,
	}
}

// NewCancelledError reports a partner run aborted by external cancellation.
func NewCancelledError(partner string, cause error) *PartnerError {
	return &PartnerError{
		Type:    ErrorTypeCancelled,
		Partner: partner,
		Message: "run cancelled",
		Cause:   cause,
	}
}

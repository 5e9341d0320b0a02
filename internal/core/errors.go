package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrClientHasInvoices      = errors.New("client has invoices")
	ErrSequenceExhausted      = errors.New("invoice sequence exhausted for year")
	ErrMalformedInvoiceNumber = errors.New("malformed invoice number")
	ErrValidation             = errors.New("validation failed")
)

// ValidationError reports an invalid input field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

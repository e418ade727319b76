package invoicer

import (
	"errors"
	"fmt"

	"github.com/elevatehq/invoicer/layout"
	"github.com/elevatehq/invoicer/sequence"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("invoicer: not found")
	ErrAlreadyExists = errors.New("invoicer: already exists")
	ErrInvalidInput  = errors.New("invoicer: invalid input")

	// Invoice errors
	ErrInvoiceNotFound = errors.New("invoicer: invoice not found")
	ErrAlreadyIssued   = errors.New("invoicer: invoice already issued")
	ErrRecordImmutable = errors.New("invoicer: issued invoice is immutable")

	// Counter errors
	ErrCounterNotFound = errors.New("invoicer: counter not found")

	// Store errors
	ErrStoreClosed = errors.New("invoicer: store is closed")
)

// ErrAllocationFailed is re-exported from the sequence package: the
// durable counter could not be incremented. No number was consumed, so
// the issuance attempt is safe to retry.
var ErrAllocationFailed = sequence.ErrAllocationFailed

// ErrLayoutOverflow is re-exported from the layout package: the content
// would invade the reserved footer region under the fail-closed policy.
// Not retryable without changing the record.
var ErrLayoutOverflow = layout.ErrOverflow

// AllocationError is the typed counter failure raised by the allocator.
type AllocationError = sequence.AllocationError

// LayoutOverflowError is the typed overflow failure raised by the layout
// engine under the fail-closed policy.
type LayoutOverflowError = layout.OverflowError

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invoicer: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrCounterNotFound)
}

// IsRetryable returns true if the operation may be retried as-is.
// Allocation failures consume no number and are always safe to retry;
// layout overflow requires record changes first and is not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrAllocationFailed)
}

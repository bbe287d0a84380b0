package tally

import (
	"errors"
	"fmt"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("tally: not found")
	ErrAlreadyExists = errors.New("tally: already exists")
	ErrInvalidInput  = errors.New("tally: invalid input")

	// Bill errors
	ErrBillNotFound      = errors.New("tally: bill not found")
	ErrBillNumberTaken   = errors.New("tally: bill number already in use")
	ErrEmptyBill         = errors.New("tally: bill has no line items")
	ErrEmptyReason       = errors.New("tally: reason is required")
	ErrInvalidTransition = errors.New("tally: invalid status transition")
	ErrPaymentsExist     = errors.New("tally: bill has recorded payments")

	// Payment errors
	ErrOverpayment    = errors.New("tally: payment exceeds balance due")
	ErrBillNotPayable = errors.New("tally: bill does not accept payments")
	ErrInvalidMethod  = errors.New("tally: unknown payment method")

	// Concurrency errors
	ErrConflict = errors.New("tally: concurrent modification, retry with a fresh copy")

	// Store errors
	ErrStoreNotReady     = errors.New("tally: store not ready")
	ErrStoreClosed       = errors.New("tally: store is closed")
	ErrTransactionFailed = errors.New("tally: transaction failed")
	ErrMigrationFailed   = errors.New("tally: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("tally: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap makes ValidationError match ErrInvalidInput via errors.Is.
func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// TransitionError reports a lifecycle action attempted from a status
// that does not permit it.
type TransitionError struct {
	Action string
	From   bill.Status
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("tally: cannot %s a %s bill", e.Action, e.From)
}

// Unwrap makes TransitionError match ErrInvalidTransition via errors.Is.
func (e TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// OverpaymentError reports a payment larger than the outstanding balance.
type OverpaymentError struct {
	Amount  types.Money
	Balance types.Money
}

func (e OverpaymentError) Error() string {
	return fmt.Sprintf("tally: payment %s exceeds balance due %s", e.Amount, e.Balance)
}

// Unwrap makes OverpaymentError match ErrOverpayment via errors.Is.
func (e OverpaymentError) Unwrap() error {
	return ErrOverpayment
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "tally: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("tally: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBillNotFound)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict returns true if the error is a concurrency or uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrBillNumberTaken) ||
		errors.Is(err, ErrPaymentsExist)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}

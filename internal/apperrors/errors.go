package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is not in a state that allows the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected storage or programming failure.
var ErrInternal = errors.New("internal error")

// ErrReferential indicates that a document reference does not resolve.
var ErrReferential = errors.New("referenced document not found")

// ErrScopeResolution indicates that no country/brand/legal-entity mapping exists.
var ErrScopeResolution = errors.New("scope resolution failed")

// ErrRateNotFound indicates that no conversion rate exists for a non-base currency.
var ErrRateNotFound = errors.New("currency rate not found")

// ErrConcurrencyConflict indicates that the bounded retry on the run version counter was exhausted.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrBalanceViolation indicates that a document or run does not balance or has malformed entries.
var ErrBalanceViolation = errors.New("balance violation")

// AppError carries a status-like code alongside a message and the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError returns an error matching ErrValidation.
func NewValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// ConflictError is raised by storage adapters only when a uniqueness constraint rejects a write.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Is lets callers match a ConflictError against ErrDuplicate.
func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicate
}

// IsConflict reports whether err is (or wraps) a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsConflictOn reports whether err is a *ConflictError raised by the named constraint.
func IsConflictOn(err error, constraint string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Constraint == constraint
}

// RateNotFoundError reports a missing conversion rate for a currency on or before Date.
type RateNotFoundError struct {
	Currency string
	Date     time.Time
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no rate for currency %s on or before %s", e.Currency, e.Date.Format(time.DateOnly))
}

func (e *RateNotFoundError) Is(target error) bool {
	return target == ErrRateNotFound
}

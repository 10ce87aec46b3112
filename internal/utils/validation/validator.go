package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Rhymond/go-money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

// initValidator creates the validator with the ledger's custom rules.
func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	// decimal.Decimal is checked directly; registering a custom type func for it loops.
	if err := vld.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && value.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'positive_decimal': %w", err)
	}

	if err := vld.RegisterValidation("iso_currency", func(fl validator.FieldLevel) bool {
		return IsKnownCurrency(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'iso_currency': %w", err)
	}

	return vld, nil
}

// Validator returns the shared validator instance.
func Validator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	return validate, errValidate
}

// IsKnownCurrency reports whether code is an ISO 4217 currency known to go-money.
func IsKnownCurrency(code string) bool {
	return code != "" && money.GetCurrency(code) != nil
}

// Struct validates s and converts field failures into a single validation error.
func Struct(s any) error {
	vld, err := Validator()
	if err != nil {
		return err
	}
	if err := vld.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, describe(fe))
		}
		return apperrors.NewValidationError(strings.Join(msgs, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", fe.Field(), fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param())
	case "positive_decimal":
		return fmt.Sprintf("%s must be > 0", fe.Field())
	case "iso_currency":
		return fmt.Sprintf("%s %q is not a known ISO 4217 currency", fe.Field(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

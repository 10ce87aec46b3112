package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const defaultFraction = 2

// FormatWithCurrencyPrecision formats an amount with the minor-unit precision of an ISO currency.
// Example: 12.3456 RUB returns "12.35", 12.3456 JPY returns "12".
// Codes go-money does not know fall back to two places.
func FormatWithCurrencyPrecision(amount decimal.Decimal, code string) string {
	fraction := defaultFraction
	if c := money.GetCurrency(code); c != nil {
		fraction = c.Fraction
	}
	return FormatWithPrecision(amount, fraction)
}

// FormatWithPrecision formats an amount with the given precision, padding trailing zeros.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

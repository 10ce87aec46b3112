package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// rateTableConverter converts with the latest rate dated on or before the posting day.
type rateTableConverter struct {
	rates        portsrepo.CurrencyRateReader
	baseCurrency string
}

// NewCurrencyConverter creates the rate-table backed CurrencyConverter.
func NewCurrencyConverter(rates portsrepo.CurrencyRateReader, baseCurrency string) portssvc.CurrencyConverter {
	return &rateTableConverter{rates: rates, baseCurrency: strings.ToUpper(baseCurrency)}
}

var _ portssvc.CurrencyConverter = (*rateTableConverter)(nil)

func (c *rateTableConverter) BaseCurrency() string {
	return c.baseCurrency
}

func (c *rateTableConverter) ConvertToBase(ctx context.Context, amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	if currency == c.baseCurrency {
		return amount, nil
	}

	day := startOfDayUTC(date)
	rate, err := c.rates.FindEffectiveRate(ctx, currency, day)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, &apperrors.RateNotFoundError{Currency: currency, Date: day}
		}
		return decimal.Zero, fmt.Errorf("failed to find rate for %s: %w", currency, err)
	}
	return amount.Mul(rate), nil
}

func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Package rates resolves conversion rates for tradable currency pairs.
package rates

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finvex/fxorders/pkg/models"
)

// ErrRateUnavailable indicates a pair with no entry in the rate table.
// Validation rejects unknown pairs before orders reach the provider, so
// hitting this error means a configuration or programming defect.
var ErrRateUnavailable = errors.New("rate unavailable")

// Provider looks up the conversion rate for a currency pair.
type Provider interface {
	Rate(pair models.Pair) (decimal.Decimal, error)
}

// Fixed is a Provider backed by a static in-memory table. It stands in for
// a live market-data integration.
type Fixed struct {
	table map[models.Pair]decimal.Decimal
}

// NewFixed creates a provider with the built-in rate table.
func NewFixed() *Fixed {
	return &Fixed{table: map[models.Pair]decimal.Decimal{
		models.PairEURSEK: decimal.RequireFromString("11.0886"),
		models.PairSEKEUR: decimal.RequireFromString("0.0780"),
		models.PairDOLSEK: decimal.RequireFromString("10.2773"),
		models.PairSEKDOL: decimal.RequireFromString("0.0823"),
		models.PairPOUSEK: decimal.RequireFromString("12.4602"),
		models.PairSEKPOU: decimal.RequireFromString("0.0677"),
	}}
}

// Rate returns the fixed conversion rate for pair.
func (f *Fixed) Rate(pair models.Pair) (decimal.Decimal, error) {
	rate, ok := f.table[pair]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: failed fetching rate for pair %q", ErrRateUnavailable, pair)
	}
	return rate, nil
}

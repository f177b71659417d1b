// Package money formats order amounts. Every amount in the system is in Indian rupees.
package money

import (
	"github.com/shopspring/decimal"
)

// Symbol prefixes every rendered amount.
const Symbol = "₹"

// Places is the number of fractional digits amounts are rounded to.
const Places = 2

// Format renders an amount as "₹123.45".
func Format(amount decimal.Decimal) string {
	return Symbol + Round(amount).StringFixed(Places)
}

// Round rounds half away from zero to the paise.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

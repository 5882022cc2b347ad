// Package settlement holds the balance arithmetic for buyer and seller
// transactions. Everything here is pure; persistence lives in trade.
package settlement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "Pending"
	StatusPaid    = "Paid"
)

// Decimal places the ledger columns hold.
const (
	MoneyPlaces  int32 = 2
	WeightPlaces int32 = 3
)

var ErrNotNumeric = errors.New("amount is not a number")

// Remaining returns total - paid. The result may be negative.
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

// SellerTotal is weight * price per kg rounded half away from zero to
// MoneyPlaces, so the stored total and the remaining balance derived from it
// agree to the cent.
func SellerTotal(weight, pricePerKg decimal.Decimal) decimal.Decimal {
	return weight.Mul(pricePerKg).Round(MoneyPlaces)
}

// FitsPlaces reports whether d can be stored with at most places decimal
// digits without rounding. Trailing zeros do not count.
func FitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Exponent() >= -places || d.Equal(d.Truncate(places))
}

// Settle applies a payment of amount to a transaction and returns the new
// paid and remaining figures. Overpayment is not rejected here.
func Settle(total, paid, amount decimal.Decimal) (newPaid, newRemaining decimal.Decimal) {
	newPaid = paid.Add(amount)
	return newPaid, Remaining(total, newPaid)
}

func StatusOf(remaining decimal.Decimal) string {
	if remaining.IsPositive() {
		return StatusPending
	}
	return StatusPaid
}

// ParseAmount accepts the raw text a user typed for an amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrNotNumeric
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	return d, nil
}

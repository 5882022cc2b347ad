package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBuyerScenario(t *testing.T) {
	total, paid := d("10000"), d("4000")

	remaining := Remaining(total, paid)
	assert.True(t, remaining.Equal(d("6000")))
	assert.Equal(t, StatusPending, StatusOf(remaining))

	newPaid, newRemaining := Settle(total, paid, d("6000"))
	assert.True(t, newPaid.Equal(d("10000")))
	assert.True(t, newRemaining.IsZero())
	assert.Equal(t, StatusPaid, StatusOf(newRemaining))
}

func TestSellerScenario(t *testing.T) {
	total := SellerTotal(d("50"), d("300"))
	assert.True(t, total.Equal(d("15000")))
	assert.True(t, Remaining(total, d("15000")).IsZero())
}

func TestSellerTotalRoundsToCents(t *testing.T) {
	// 12.345 kg at 410.10 is 5062.6845 exactly
	assert.Equal(t, "5062.68", SellerTotal(d("12.345"), d("410.10")).String())
	// 12.345 kg at 300.50 is 3709.6725
	assert.Equal(t, "3709.67", SellerTotal(d("12.345"), d("300.50")).String())
	assert.Equal(t, "0.01", SellerTotal(d("0.001"), d("5")).String())

	total := SellerTotal(d("12.345"), d("300.50"))
	assert.True(t, FitsPlaces(total, MoneyPlaces))
	assert.True(t, Remaining(total, d("3709.67")).IsZero())
}

func TestFitsPlaces(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   bool
	}{
		{"10000", MoneyPlaces, true},
		{"250.50", MoneyPlaces, true},
		{"1.500", MoneyPlaces, true},
		{"0.004", MoneyPlaces, false},
		{"1.005", MoneyPlaces, false},
		{"12.345", WeightPlaces, true},
		{"12.3450", WeightPlaces, true},
		{"0.0001", WeightPlaces, false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FitsPlaces(d(tc.in), tc.places))
		})
	}
}

func TestRepeatedSettlements(t *testing.T) {
	cases := []struct {
		name    string
		total   string
		paid    string
		amounts []string
	}{
		{"single", "10000", "0", []string{"2500"}},
		{"several", "10000", "1000", []string{"100", "250.50", "3000"}},
		{"overpay goes negative", "500", "400", []string{"50", "100"}},
		{"fractional", "999.99", "0.01", []string{"0.33", "0.33", "0.34"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, paid := d(tc.total), d(tc.paid)
			sum := decimal.Zero
			remaining := Remaining(total, paid)
			for _, a := range tc.amounts {
				paid, remaining = Settle(total, paid, d(a))
				sum = sum.Add(d(a))
			}
			want := d(tc.total).Sub(d(tc.paid)).Sub(sum)
			assert.True(t, remaining.Equal(want), "remaining %s, want %s", remaining, want)
			assert.True(t, remaining.Equal(total.Sub(paid)))
		})
	}
}

func TestOverpaymentIsPaidStatus(t *testing.T) {
	_, remaining := Settle(d("100"), d("100"), d("1"))
	assert.True(t, remaining.IsNegative())
	assert.Equal(t, StatusPaid, StatusOf(remaining))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 6000.50 ")
	require.NoError(t, err)
	assert.True(t, v.Equal(d("6000.5")))

	for _, bad := range []string{"", "abc", "12,5"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrNotNumeric, bad)
	}
}

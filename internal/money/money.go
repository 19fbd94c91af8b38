// Package money provides the fixed-precision arithmetic helpers shared by
// every financial computation in the broker. All amounts are
// shopspring/decimal values rounded to the cent; repeated markup and CPM math
// must never accumulate floating-point drift.
package money

import "github.com/shopspring/decimal"

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
	two      = decimal.NewFromInt(2)
)

// PerThousand converts a per-thousand rate into an amount for a quantity:
// rate * quantity / 1000, rounded to the cent. Every CPM consumer goes
// through this function so all callers round identically.
func PerThousand(rate decimal.Decimal, quantity int64) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(quantity)).Div(thousand).Round(2)
}

// Percent returns amount * pct / 100, rounded to the cent.
func Percent(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}

// SplitHalf divides an amount into two cent-exact halves. The second half
// absorbs the odd cent so the two always sum back to the amount.
func SplitHalf(amount decimal.Decimal) (first, second decimal.Decimal) {
	first = amount.Div(two).Round(2)
	second = amount.Sub(first)
	return first, second
}

// MarginPercent returns (revenue - cost) / revenue * 100 rounded to three
// decimals, or zero when revenue is zero.
func MarginPercent(cost, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return revenue.Sub(cost).Div(revenue).Mul(hundred).Round(3)
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPerThousand(t *testing.T) {
	tests := []struct {
		name     string
		rate     string
		quantity int64
		want     string
	}{
		{"exact thousands", "13.60", 5000, "68.00"},
		{"single thousand", "10.00", 1000, "10.00"},
		{"partial thousand rounds", "13.60", 1234, "16.78"},
		{"zero quantity", "13.60", 0, "0.00"},
		{"linear in quantity", "10.00", 10000, "100.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerThousand(d(tt.rate), tt.quantity)
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestPercent(t *testing.T) {
	assert.True(t, d("12.24").Equal(Percent(d("68.00"), d("18"))))
	assert.True(t, d("140.00").Equal(Percent(d("400.00"), d("35"))))
	assert.True(t, Percent(decimal.Zero, d("35")).IsZero())
}

func TestSplitHalfConservesCents(t *testing.T) {
	amounts := []string{"769.76", "0.01", "100.00", "99.99", "-50.01", "0.03"}
	for _, s := range amounts {
		amount := d(s)
		first, second := SplitHalf(amount)
		assert.True(t, amount.Equal(first.Add(second)), "halves of %s must sum back", s)
	}
}

func TestSplitHalfOddCent(t *testing.T) {
	first, second := SplitHalf(d("0.03"))
	assert.True(t, first.Add(second).Equal(d("0.03")))
	assert.True(t, first.Sub(second).Abs().LessThanOrEqual(d("0.01")))
}

func TestMarginPercent(t *testing.T) {
	assert.True(t, d("85.529").Equal(MarginPercent(d("130.24"), d("900.00"))))
	assert.True(t, MarginPercent(d("100"), decimal.Zero).IsZero(), "zero revenue must not divide")
	assert.True(t, MarginPercent(d("150"), d("100")).IsNegative(), "sold below cost gives negative margin")
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive(d("0.01")))
	assert.False(t, IsPositive(decimal.Zero))
	assert.False(t, IsPositive(d("-1")))
}

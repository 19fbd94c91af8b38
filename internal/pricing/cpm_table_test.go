package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLookupCPMExactMatch(t *testing.T) {
	entry, ok := LookupCPM("6 x 9")
	require.True(t, ok)
	assert.True(t, d("13.60").Equal(entry.PaperCostCPM))
	assert.True(t, d("10.00").Equal(entry.PrintCPM))
}

func TestLookupCPMIsExactStringMatch(t *testing.T) {
	// No normalization: "6x9" and "6 X 9" are unknown sizes.
	for _, size := range []string{"6x9", "6 X 9", " 6 x 9", "6 x 9 ", "7 x 10", ""} {
		_, ok := LookupCPM(size)
		assert.False(t, ok, "size %q must miss", size)
	}
}

func TestPaperSellCPMIsCostTimesMarkup(t *testing.T) {
	for _, entry := range CPMSizes() {
		want := entry.PaperCostCPM.Mul(d("1.18"))
		assert.True(t, want.Equal(entry.PaperSellCPM),
			"%s: sell %s want %s", entry.FinishedSize, entry.PaperSellCPM, want)
	}
}

func TestCPMSizesSortedAndComplete(t *testing.T) {
	entries := CPMSizes()
	require.Len(t, entries, 8)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].FinishedSize, entries[i].FinishedSize)
	}
}

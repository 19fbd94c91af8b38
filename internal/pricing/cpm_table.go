package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// paperMarkupPercent is the fixed paper markup on partner-routed CPM jobs.
// The partner sources the paper and retains this markup in full.
var paperMarkupPercent = decimal.NewFromInt(18)

// CPMEntry holds the per-thousand rates for one finished size.
// PaperSellCPM is always PaperCostCPM * 1.18.
type CPMEntry struct {
	FinishedSize      string
	PaperCostCPM      decimal.Decimal
	PaperSellCPM      decimal.Decimal
	PrintCPM          decimal.Decimal
	PoundsPerThousand decimal.Decimal
}

// cpmRates is the static rate table keyed by finished-size string.
// Lookup is exact-string-match; an unknown size forces line-item costing.
var cpmRates = buildRateTable([]rateRow{
	{"4.25 x 6", "8.50", "7.25", "95"},
	{"5.5 x 8.5", "11.20", "8.75", "118"},
	{"6 x 9", "13.60", "10.00", "140"},
	{"6 x 11", "16.20", "11.50", "165"},
	{"8.5 x 11", "21.40", "13.75", "210"},
	{"8.5 x 14", "26.80", "15.25", "260"},
	{"9 x 12", "29.50", "16.00", "285"},
	{"11 x 17", "42.75", "19.50", "420"},
})

type rateRow struct {
	size     string
	paper    string
	print    string
	poundsPM string
}

func buildRateTable(rows []rateRow) map[string]CPMEntry {
	sellFactor := decimal.NewFromInt(1).Add(paperMarkupPercent.Div(decimal.NewFromInt(100)))
	table := make(map[string]CPMEntry, len(rows))
	for _, r := range rows {
		paper := decimal.RequireFromString(r.paper)
		table[r.size] = CPMEntry{
			FinishedSize:      r.size,
			PaperCostCPM:      paper,
			PaperSellCPM:      paper.Mul(sellFactor),
			PrintCPM:          decimal.RequireFromString(r.print),
			PoundsPerThousand: decimal.RequireFromString(r.poundsPM),
		}
	}
	return table
}

// LookupCPM returns the rate entry for a finished size. The second return is
// false when the size has no entry, which forces the caller onto the
// line-item costing path.
func LookupCPM(finishedSize string) (CPMEntry, bool) {
	e, ok := cpmRates[finishedSize]
	return e, ok
}

// CPMSizes returns all finished sizes in the table, sorted for stable output.
func CPMSizes() []CPMEntry {
	entries := make([]CPMEntry, 0, len(cpmRates))
	for _, e := range cpmRates {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FinishedSize < entries[j].FinishedSize
	})
	return entries
}

// PaperMarkupPercent returns the fixed 18% paper markup rate.
func PaperMarkupPercent() decimal.Decimal {
	return paperMarkupPercent
}

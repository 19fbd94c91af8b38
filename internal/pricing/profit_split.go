// Package pricing is the cost and profit-split calculator for brokered print
// jobs. Everything in this package is pure: no I/O, no persistence. Callers
// persist the returned split and recompute whenever any input changes.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/money"
)

// autoCutPercent is the default intermediary cut on non-partner jobs when the
// cut is not set manually.
var autoCutPercent = decimal.NewFromInt(35)

// SplitInput carries everything the calculator reads. It is assembled by the
// caller from the job aggregate so the computation itself stays pure.
type SplitInput struct {
	RoutingType  domain.RoutingType
	Quantity     int64
	SellPrice    decimal.Decimal
	FinishedSize string

	LineItems      []domain.LineItem
	PurchaseOrders []domain.PurchaseOrder

	// IntermediaryCut is the manually set cut; nil with CutIsAuto selects the
	// 35% auto cut, nil without CutIsAuto means no cut.
	IntermediaryCut *decimal.Decimal
	CutIsAuto       bool
}

// SplitResult is the computed split plus non-fatal conditions the caller must
// surface (negative spread is reportable, never clamped or silently dropped).
type SplitResult struct {
	Split    domain.ProfitSplit
	Warnings []string
}

// ComputeProfitSplit derives total cost, spread and the division of spread
// between the broker and the preferred partner. The costing path depends on
// the stored routing type:
//
//   - partner-routed with a CPM entry: rate-table costing, spread split
//     evenly, partner additionally retains the full paper markup;
//   - partner-routed without CPM data: actual broker-to-partner PO buy costs,
//     preserving any recorded paper markup as entered;
//   - direct and third-party routed: line-item cost/revenue sums with an
//     optional intermediary cut.
//
// A missing or non-positive sell price is refused with a validation error so
// a garbage split is never persisted.
func ComputeProfitSplit(in SplitInput) (SplitResult, error) {
	if !money.IsPositive(in.SellPrice) {
		return SplitResult{}, domain.NewValidationError("sellPrice", "must be set and positive before profit can be computed")
	}
	if !in.RoutingType.IsValid() {
		return SplitResult{}, domain.NewValidationError("routingType", "unknown routing type")
	}

	var res SplitResult
	switch in.RoutingType {
	case domain.RoutingPartner:
		if entry, ok := LookupCPM(in.FinishedSize); ok {
			res = partnerSplitFromCPM(in, entry)
		} else {
			res = partnerSplitFromPurchaseOrders(in)
		}
	default:
		res = lineItemSplit(in)
	}

	res.Split.ComputedAt = time.Now().UTC()
	if res.Split.Spread.Sign() < 0 {
		res.Warnings = append(res.Warnings, "negative spread: job is sold below cost")
	}
	if res.Split.FinalProfit.Sign() < 0 {
		res.Warnings = append(res.Warnings, "negative final profit after intermediary cut")
	}
	return res, nil
}

// partnerSplitFromCPM prices a partner-routed job off the rate table.
// The spread is split evenly; the partner keeps the paper markup on top
// because it handles paper sourcing.
func partnerSplitFromCPM(in SplitInput, entry CPMEntry) SplitResult {
	paperCost := money.PerThousand(entry.PaperCostCPM, in.Quantity)
	paperMarkup := money.Percent(paperCost, paperMarkupPercent)
	mfgCost := money.PerThousand(entry.PrintCPM, in.Quantity)

	totalCost := paperCost.Add(paperMarkup).Add(mfgCost)
	spread := in.SellPrice.Sub(totalCost)

	brokerShare, partnerHalf := money.SplitHalf(spread)
	partnerShare := partnerHalf.Add(paperMarkup)

	return SplitResult{Split: domain.ProfitSplit{
		Method:             domain.ProfitMethodCPM,
		TotalCost:          totalCost,
		Revenue:            in.SellPrice,
		Spread:             spread,
		PaperMarkup:        paperMarkup,
		PartnerShare:       partnerShare,
		BrokerShare:        brokerShare,
		FinalProfit:        brokerShare,
		GrossMarginPercent: money.MarginPercent(totalCost, in.SellPrice),
	}}
}

// partnerSplitFromPurchaseOrders falls back to actual broker-to-partner buy
// costs when no CPM entry matches (or line-item costing was preferred).
// Recorded paper markup on the POs is used as entered, never recomputed at
// 18%, so historical and manually entered values survive recomputes.
func partnerSplitFromPurchaseOrders(in SplitInput) SplitResult {
	totalCost := decimal.Zero
	paperMarkup := decimal.Zero
	counted := 0
	for _, po := range in.PurchaseOrders {
		if po.OriginParty != domain.PartyBroker || po.TargetParty != domain.PartyPartner {
			continue
		}
		totalCost = totalCost.Add(po.BuyCost)
		if po.PaperMarkup != nil {
			paperMarkup = paperMarkup.Add(*po.PaperMarkup)
		}
		counted++
	}

	spread := in.SellPrice.Sub(totalCost)
	brokerShare, partnerHalf := money.SplitHalf(spread)
	partnerShare := partnerHalf.Add(paperMarkup)

	res := SplitResult{Split: domain.ProfitSplit{
		Method:             domain.ProfitMethodPurchaseOrders,
		TotalCost:          totalCost,
		Revenue:            in.SellPrice,
		Spread:             spread,
		PaperMarkup:        paperMarkup,
		PartnerShare:       partnerShare,
		BrokerShare:        brokerShare,
		FinalProfit:        brokerShare,
		GrossMarginPercent: money.MarginPercent(totalCost, in.SellPrice),
	}}
	if counted == 0 {
		res.Warnings = append(res.Warnings, "no broker-to-partner purchase orders recorded; total cost is zero")
	}
	return res
}

// lineItemSplit prices direct and third-party routed jobs off line items.
// The intermediary cut is subtracted from the broker's net, never from the
// vendor's cost, and may exceed gross profit (negative final profit is
// representable, not clamped).
func lineItemSplit(in SplitInput) SplitResult {
	totalCost := decimal.Zero
	revenue := decimal.Zero
	for _, li := range in.LineItems {
		totalCost = totalCost.Add(li.Quantity.Mul(li.UnitCost).Round(2))
		revenue = revenue.Add(li.Quantity.Mul(li.UnitPrice).Round(2))
	}

	grossProfit := revenue.Sub(totalCost)

	cut := decimal.Zero
	switch {
	case in.IntermediaryCut != nil:
		cut = *in.IntermediaryCut
	case in.CutIsAuto:
		cut = money.Percent(grossProfit, autoCutPercent)
	}

	finalProfit := grossProfit.Sub(cut)

	res := SplitResult{Split: domain.ProfitSplit{
		Method:             domain.ProfitMethodLineItems,
		TotalCost:          totalCost,
		Revenue:            revenue,
		Spread:             grossProfit,
		PaperMarkup:        decimal.Zero,
		PartnerShare:       decimal.Zero,
		BrokerShare:        finalProfit,
		IntermediaryCut:    cut,
		FinalProfit:        finalProfit,
		GrossMarginPercent: money.MarginPercent(totalCost, revenue),
	}}
	if len(in.LineItems) == 0 {
		res.Warnings = append(res.Warnings, "no line items recorded; cost and revenue are zero")
	}
	return res
}

package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/broker-api/internal/domain"
)

func decPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestComputeProfitSplitPartnerCPM(t *testing.T) {
	// 5000 x "6 x 9" sold at $900: paper 68.00 + markup 12.24 + print 50.00.
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType:  domain.RoutingPartner,
		Quantity:     5000,
		SellPrice:    d("900.00"),
		FinishedSize: "6 x 9",
	})
	require.NoError(t, err)

	split := res.Split
	assert.Equal(t, domain.ProfitMethodCPM, split.Method)
	assert.True(t, d("130.24").Equal(split.TotalCost), "total cost %s", split.TotalCost)
	assert.True(t, d("12.24").Equal(split.PaperMarkup))
	assert.True(t, d("769.76").Equal(split.Spread))
	assert.True(t, d("384.88").Equal(split.BrokerShare))
	assert.True(t, d("397.12").Equal(split.PartnerShare))
	assert.Empty(t, res.Warnings)
}

func TestComputeProfitSplitShareConservation(t *testing.T) {
	// partnerShare + brokerShare must equal spread + paperMarkup to the cent,
	// including when the spread carries an odd cent.
	sellPrices := []string{"900.00", "900.01", "130.25", "131.11", "5000.33"}
	for _, sell := range sellPrices {
		res, err := ComputeProfitSplit(SplitInput{
			RoutingType:  domain.RoutingPartner,
			Quantity:     5000,
			SellPrice:    d(sell),
			FinishedSize: "6 x 9",
		})
		require.NoError(t, err)
		split := res.Split
		sum := split.PartnerShare.Add(split.BrokerShare)
		want := split.Spread.Add(split.PaperMarkup)
		assert.True(t, want.Equal(sum), "sell %s: shares %s want %s", sell, sum, want)
	}
}

func TestComputeProfitSplitCPMLinearity(t *testing.T) {
	// CPM cost components scale linearly with quantity.
	at := func(qty int64) decimal.Decimal {
		res, err := ComputeProfitSplit(SplitInput{
			RoutingType:  domain.RoutingPartner,
			Quantity:     qty,
			SellPrice:    d("900.00"),
			FinishedSize: "6 x 9",
		})
		require.NoError(t, err)
		return res.Split.TotalCost
	}
	assert.True(t, at(10000).Equal(at(5000).Mul(d("2"))))
}

func TestComputeProfitSplitPartnerWithoutCPMUsesPurchaseOrders(t *testing.T) {
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType:  domain.RoutingPartner,
		Quantity:     5000,
		SellPrice:    d("900.00"),
		FinishedSize: "7 x 10", // not in the rate table
		PurchaseOrders: []domain.PurchaseOrder{
			{OriginParty: domain.PartyBroker, TargetParty: domain.PartyPartner, BuyCost: d("200.00"), PaperMarkup: decPtr("15.00")},
			{OriginParty: domain.PartyBroker, TargetParty: domain.PartyPartner, BuyCost: d("100.00")},
			// partner-to-vendor POs are the partner's cost, not the broker's
			{OriginParty: domain.PartyPartner, TargetParty: domain.PartyVendor, BuyCost: d("999.00")},
		},
	})
	require.NoError(t, err)

	split := res.Split
	assert.Equal(t, domain.ProfitMethodPurchaseOrders, split.Method)
	assert.True(t, d("300.00").Equal(split.TotalCost))
	assert.True(t, d("15.00").Equal(split.PaperMarkup), "recorded markup used as entered")
	assert.True(t, d("600.00").Equal(split.Spread))
	assert.True(t, d("300.00").Equal(split.BrokerShare))
	assert.True(t, d("315.00").Equal(split.PartnerShare))
}

func TestComputeProfitSplitThirdPartyAutoCut(t *testing.T) {
	// $1000 revenue, $600 cost, auto 35% cut: gross 400, cut 140, final 260.
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType: domain.RoutingThirdParty,
		SellPrice:   d("1000.00"),
		CutIsAuto:   true,
		LineItems: []domain.LineItem{
			{Quantity: d("1"), UnitCost: d("600.00"), UnitPrice: d("1000.00")},
		},
	})
	require.NoError(t, err)

	split := res.Split
	assert.Equal(t, domain.ProfitMethodLineItems, split.Method)
	assert.True(t, d("600.00").Equal(split.TotalCost))
	assert.True(t, d("1000.00").Equal(split.Revenue))
	assert.True(t, d("400.00").Equal(split.Spread))
	assert.True(t, d("140.00").Equal(split.IntermediaryCut))
	assert.True(t, d("260.00").Equal(split.FinalProfit))
	assert.Empty(t, res.Warnings)
}

func TestComputeProfitSplitManualCutOverridesAuto(t *testing.T) {
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType:     domain.RoutingThirdParty,
		SellPrice:       d("1000.00"),
		CutIsAuto:       true,
		IntermediaryCut: decPtr("50.00"),
		LineItems: []domain.LineItem{
			{Quantity: d("1"), UnitCost: d("600.00"), UnitPrice: d("1000.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, d("50.00").Equal(res.Split.IntermediaryCut))
	assert.True(t, d("350.00").Equal(res.Split.FinalProfit))
}

func TestComputeProfitSplitCutMayExceedGross(t *testing.T) {
	// A manual cut larger than gross profit goes negative, it is not clamped.
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType:     domain.RoutingThirdParty,
		SellPrice:       d("1000.00"),
		IntermediaryCut: decPtr("500.00"),
		LineItems: []domain.LineItem{
			{Quantity: d("1"), UnitCost: d("600.00"), UnitPrice: d("1000.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, d("-100.00").Equal(res.Split.FinalProfit))
	assert.Contains(t, res.Warnings, "negative final profit after intermediary cut")
}

func TestComputeProfitSplitDirectNoCut(t *testing.T) {
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType: domain.RoutingDirect,
		SellPrice:   d("1000.00"),
		LineItems: []domain.LineItem{
			{Quantity: d("5000"), UnitCost: d("0.10"), UnitPrice: d("0.18")},
		},
	})
	require.NoError(t, err)

	split := res.Split
	assert.True(t, d("500.00").Equal(split.TotalCost))
	assert.True(t, d("900.00").Equal(split.Revenue))
	assert.True(t, split.IntermediaryCut.IsZero())
	assert.True(t, d("400.00").Equal(split.FinalProfit))
}

func TestComputeProfitSplitNegativeSpreadWarns(t *testing.T) {
	res, err := ComputeProfitSplit(SplitInput{
		RoutingType:  domain.RoutingPartner,
		Quantity:     5000,
		SellPrice:    d("100.00"), // below the 130.24 cost
		FinishedSize: "6 x 9",
	})
	require.NoError(t, err, "negative spread is a warning, not an error")
	assert.True(t, res.Split.Spread.IsNegative())
	assert.Contains(t, res.Warnings, "negative spread: job is sold below cost")
}

func TestComputeProfitSplitRejectsNonPositiveSellPrice(t *testing.T) {
	for _, sell := range []string{"0", "-1.00"} {
		_, err := ComputeProfitSplit(SplitInput{
			RoutingType:  domain.RoutingPartner,
			Quantity:     5000,
			SellPrice:    d(sell),
			FinishedSize: "6 x 9",
		})
		require.Error(t, err)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "sellPrice", verr.Field)
	}
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/broker-api/internal/domain"
)

func newLineItem(cost, price, markup string) *domain.LineItem {
	return &domain.LineItem{
		Quantity:      d("1000"),
		UnitCost:      d(cost),
		UnitPrice:     d(price),
		MarkupPercent: d(markup),
	}
}

func TestApplyLineItemEditCostHoldsPrice(t *testing.T) {
	li := newLineItem("0.10", "0.15", "50")
	require.NoError(t, ApplyLineItemEdit(li, LineItemFieldCost, d("0.12")))

	assert.True(t, d("0.12").Equal(li.UnitCost))
	assert.True(t, d("0.15").Equal(li.UnitPrice), "price must hold on a cost edit")
	assert.True(t, d("25").Equal(li.MarkupPercent))
}

func TestApplyLineItemEditMarkupHoldsCost(t *testing.T) {
	li := newLineItem("0.10", "0.15", "50")
	require.NoError(t, ApplyLineItemEdit(li, LineItemFieldMarkup, d("80")))

	assert.True(t, d("0.10").Equal(li.UnitCost), "cost must hold on a markup edit")
	assert.True(t, d("0.18").Equal(li.UnitPrice))
	assert.True(t, d("80").Equal(li.MarkupPercent))
}

func TestApplyLineItemEditPriceHoldsCost(t *testing.T) {
	li := newLineItem("0.10", "0.15", "50")
	require.NoError(t, ApplyLineItemEdit(li, LineItemFieldPrice, d("0.20")))

	assert.True(t, d("0.10").Equal(li.UnitCost), "cost must hold on a price edit")
	assert.True(t, d("0.20").Equal(li.UnitPrice))
	assert.True(t, d("100").Equal(li.MarkupPercent))
}

func TestApplyLineItemEditRoundTrip(t *testing.T) {
	// Editing markup and then editing the resulting price back must restore
	// the original markup.
	li := newLineItem("0.10", "0.15", "50")
	require.NoError(t, ApplyLineItemEdit(li, LineItemFieldMarkup, d("80")))
	require.NoError(t, ApplyLineItemEdit(li, LineItemFieldPrice, d("0.15")))
	assert.True(t, d("50").Equal(li.MarkupPercent))
}

func TestApplyLineItemEditZeroCostGuards(t *testing.T) {
	li := newLineItem("0", "0.15", "0")

	err := ApplyLineItemEdit(li, LineItemFieldMarkup, d("50"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr, "markup cannot drive price without a cost")

	// A price edit with zero cost keeps the price and zeroes the markup.
	require.NoError(t, ApplyLineItemEdit(li, LineItemFieldPrice, d("0.20")))
	assert.True(t, d("0.20").Equal(li.UnitPrice))
	assert.True(t, li.MarkupPercent.IsZero())
}

func TestApplyLineItemEditRejectsBadInput(t *testing.T) {
	li := newLineItem("0.10", "0.15", "50")

	assert.Error(t, ApplyLineItemEdit(li, LineItemFieldCost, d("0")))
	assert.Error(t, ApplyLineItemEdit(li, LineItemFieldMarkup, d("-5")))
	assert.Error(t, ApplyLineItemEdit(li, LineItemFieldPrice, d("-0.01")))
	assert.Error(t, ApplyLineItemEdit(li, "weight", d("1")))

	// the failed edits must not have touched the item
	assert.True(t, d("0.10").Equal(li.UnitCost))
	assert.True(t, d("0.15").Equal(li.UnitPrice))
	assert.True(t, d("50").Equal(li.MarkupPercent))
}

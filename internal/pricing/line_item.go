package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/money"
)

// Editable line-item fields. Whichever field is edited becomes the driving
// value; one of the other two is held and the third is recomputed so
// unitPrice == unitCost * (1 + markupPercent/100) always holds.
const (
	LineItemFieldCost   = "cost"
	LineItemFieldPrice  = "price"
	LineItemFieldMarkup = "markup"
)

var one = decimal.NewFromInt(1)

// ApplyLineItemEdit applies a single-field edit to a line item and recomputes
// the dependent field:
//
//   - cost edit: price is held, markup recomputed;
//   - markup edit: cost is held, price recomputed;
//   - price edit: cost is held, markup recomputed.
//
// The item is mutated in place only on success.
func ApplyLineItemEdit(li *domain.LineItem, field string, value decimal.Decimal) error {
	switch field {
	case LineItemFieldCost:
		if !money.IsPositive(value) {
			return domain.NewValidationError("unitCost", "must be positive")
		}
		li.UnitCost = value
		li.MarkupPercent = markupFrom(value, li.UnitPrice)
	case LineItemFieldMarkup:
		if value.Sign() < 0 {
			return domain.NewValidationError("markupPercent", "must not be negative")
		}
		if !money.IsPositive(li.UnitCost) {
			return domain.NewValidationError("unitCost", "must be set before markup can drive the price")
		}
		li.MarkupPercent = value
		li.UnitPrice = li.UnitCost.Mul(one.Add(value.Div(hundred))).Round(4)
	case LineItemFieldPrice:
		if value.Sign() < 0 {
			return domain.NewValidationError("unitPrice", "must not be negative")
		}
		li.UnitPrice = value
		li.MarkupPercent = markupFrom(li.UnitCost, value)
	default:
		return domain.NewValidationError("field", "must be one of cost, price, markup")
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// markupFrom derives markup percent from a cost/price pair. A zero cost
// yields zero markup rather than a division blowup; the caller's price stands
// as entered.
func markupFrom(cost, price decimal.Decimal) decimal.Decimal {
	if !money.IsPositive(cost) {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(hundred).Round(3)
}

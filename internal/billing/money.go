// Package billing holds the document model and the money arithmetic shared by
// invoices and quotes. All computation is float64; rounding to two decimal
// places happens at presentation time only.
package billing

import "math"

// LineAmounts holds the derived amounts for a single line item.
type LineAmounts struct {
	OriginalAmount float64 `json:"original_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	Amount         float64 `json:"amount"`
}

// Totals holds the derived document-level amounts.
type Totals struct {
	OriginalSubtotal   float64 `json:"original_subtotal"`
	Subtotal           float64 `json:"subtotal"`
	TotalItemDiscounts float64 `json:"total_item_discounts"`
	TotalDiscount      float64 `json:"total_discount"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Total              float64 `json:"total"`
}

// ComputeLine derives the amounts for one line item from its editable fields.
// The discount percentage is applied as entered; values outside [0,100] are the
// caller's responsibility to validate.
func ComputeLine(quantity, unitPrice, discountPercentage float64) LineAmounts {
	original := quantity * unitPrice
	discount := original * discountPercentage / 100
	return LineAmounts{
		OriginalAmount: original,
		DiscountAmount: discount,
		Amount:         original - discount,
	}
}

// ComputeTotals derives the document-level totals from the line items and the
// flat additional discount. A negative Total (additional discount exceeding the
// subtotal) is permitted and never clamped; the editing surface is expected to
// warn, not this function.
func ComputeTotals(items []LineItem, additionalDiscount float64) Totals {
	var t Totals
	for i := range items {
		t.OriginalSubtotal += items[i].OriginalAmount
		t.Subtotal += items[i].Amount
		t.TotalItemDiscounts += items[i].DiscountAmount
	}
	t.TotalDiscount = t.TotalItemDiscounts + additionalDiscount
	if t.OriginalSubtotal > 0 {
		t.DiscountPercentage = Round2(t.TotalDiscount / t.OriginalSubtotal * 100)
	}
	t.Total = t.Subtotal - additionalDiscount
	return t
}

// Round2 rounds to two decimal places for display and serialization.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

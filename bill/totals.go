package bill

import (
	"time"

	"github.com/xraph/tally/types"
)

// ComputeTotals recalculates every derived amount on the bill from its
// line items, payments, and bill-level discount. It is idempotent:
// calling it twice in a row leaves the bill unchanged.
//
// Per line item:
//
//	total = quantity×unitPrice − discount + unitPrice.Percent(taxRate)
//
// Tax is charged on the unit price, not the extended line amount. That
// is the billing contract clinics have reconciled against since the
// first release, so it stays.
//
// The grand total clamps at zero: discounts can zero a bill but never
// make the clinic owe the patient.
func ComputeTotals(b *Bill) {
	subtotal := types.Zero(b.Currency)
	totalDiscount := b.Discount
	if totalDiscount.Currency == "" {
		totalDiscount = types.Zero(b.Currency)
	}
	totalTax := types.Zero(b.Currency)

	for i := range b.LineItems {
		li := &b.LineItems[i]

		extended := li.UnitPrice.Multiply(li.Quantity)
		discount := li.Discount
		if discount.Currency == "" {
			discount = types.Zero(b.Currency)
		}
		tax := li.UnitPrice.Percent(li.TaxRate)

		li.Discount = discount
		li.Total = extended.Subtract(discount).Add(tax)

		subtotal = subtotal.Add(extended)
		totalDiscount = totalDiscount.Add(discount)
		totalTax = totalTax.Add(tax)
	}

	grand := subtotal.Subtract(totalDiscount).Add(totalTax)
	if grand.IsNegative() {
		grand = types.Zero(b.Currency)
	}

	paid := types.Zero(b.Currency)
	for _, p := range b.Payments {
		paid = paid.Add(p.Amount)
	}

	b.Subtotal = subtotal
	b.TotalDiscount = totalDiscount
	b.TotalTax = totalTax
	b.GrandTotal = grand
	b.AmountPaid = paid
	b.BalanceDue = grand.Subtract(paid)
}

// Derive returns the status the bill should carry at the given instant,
// based on its payments and due date. It never mutates the bill.
//
// Terminal statuses and drafts are sticky. For issued bills:
//   - nothing paid, past due date  -> overdue
//   - nothing paid                 -> issued
//   - balance cleared              -> paid
//   - otherwise                    -> partial
//
// Overdue is reversible: a payment moves the bill to partial or paid,
// and an extended due date moves it back to issued.
func Derive(b *Bill, now time.Time) Status {
	switch b.Status {
	case StatusDraft, StatusCancelled, StatusWrittenOff, StatusVoided:
		return b.Status
	}

	if b.AmountPaid.IsZero() || b.AmountPaid.IsNegative() {
		if b.DueDate != nil && now.After(*b.DueDate) {
			return StatusOverdue
		}
		return StatusIssued
	}

	if !b.BalanceDue.IsPositive() {
		return StatusPaid
	}

	return StatusPartial
}

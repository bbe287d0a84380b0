// Package bill defines the patient bill aggregate: models, totals
// computation, and status derivation. Everything in this package is pure.
// Persistence and lifecycle policy live in the root package and the
// store backends.
package bill

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// Status is the lifecycle state of a bill.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusIssued     Status = "issued"
	StatusPartial    Status = "partial"
	StatusPaid       Status = "paid"
	StatusOverdue    Status = "overdue"
	StatusCancelled  Status = "cancelled"
	StatusWrittenOff Status = "written_off"
	StatusVoided     Status = "voided"
)

// IsTerminal reports whether the status permits no further mutation.
// Paid is deliberately excluded: it is closed to payments and voiding
// but still a reportable, reachable end state of the derivation.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusWrittenOff, StatusVoided:
		return true
	}
	return false
}

// IsOpen reports whether the bill can still accept payments.
func (s Status) IsOpen() bool {
	switch s {
	case StatusIssued, StatusPartial, StatusOverdue:
		return true
	}
	return false
}

// Method identifies how a payment was made.
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
	MethodEWallet      Method = "e_wallet"
	MethodInsurance    Method = "insurance"
)

// Valid reports whether the method is one of the known payment methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCreditCard, MethodEWallet, MethodInsurance:
		return true
	}
	return false
}

// Bill is the billing aggregate for a single patient visit.
// All monetary fields share Currency. Totals are derived: call
// ComputeTotals after any mutation of line items, payments, or Discount.
type Bill struct {
	types.Entity
	ID         id.BillID  `json:"id"`
	ClinicID   string     `json:"clinic_id"`
	BillNumber string     `json:"bill_number,omitempty"`
	PatientRef string     `json:"patient_ref"`
	DoctorRef  string     `json:"doctor_ref,omitempty"`
	Status     Status     `json:"status"`
	Currency   string     `json:"currency"`
	LineItems  []LineItem `json:"line_items"`
	Payments   []Payment  `json:"payments,omitempty"`

	// Bill-level discount, applied on top of line item discounts.
	Discount types.Money `json:"discount"`

	// Derived amounts, maintained by ComputeTotals.
	Subtotal      types.Money `json:"subtotal"`
	TotalDiscount types.Money `json:"total_discount"`
	TotalTax      types.Money `json:"total_tax"`
	GrandTotal    types.Money `json:"grand_total"`
	AmountPaid    types.Money `json:"amount_paid"`
	BalanceDue    types.Money `json:"balance_due"`

	IssueDate      *time.Time `json:"issue_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	VoidedAt       *time.Time `json:"voided_at,omitempty"`
	VoidReason     string     `json:"void_reason,omitempty"`
	WrittenOffAt   *time.Time `json:"written_off_at,omitempty"`
	WriteOffReason string     `json:"write_off_reason,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty"`
	Notes          string     `json:"notes,omitempty"`

	// Version increments on every successful store update. Stores reject
	// updates whose Version does not match the persisted value.
	Version  int64             `json:"version"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LineItem is a single billable charge on a bill.
type LineItem struct {
	ID          id.LineItemID `json:"id"`
	BillID      id.BillID     `json:"bill_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   types.Money   `json:"unit_price"`
	Discount    types.Money   `json:"discount"`
	TaxRate     int64         `json:"tax_rate"` // whole percent, 0-100
	Total       types.Money   `json:"total"`    // derived

	// Optional link to the charge's origin (treatment, prescription, lab order).
	SourceType string `json:"source_type,omitempty"`
	SourceRef  string `json:"source_ref,omitempty"`
}

// Payment is an immutable record of money received against a bill.
// Payments are append-only: corrections are new bills, never edits.
type Payment struct {
	ID         id.PaymentID `json:"id"`
	BillID     id.BillID    `json:"bill_id"`
	Amount     types.Money  `json:"amount"`
	Method     Method       `json:"method"`
	PaidAt     time.Time    `json:"paid_at"`
	Reference  string       `json:"reference,omitempty"`
	ReceivedBy string       `json:"received_by,omitempty"`
	Notes      string       `json:"notes,omitempty"`
}

// Clone returns a deep copy of the bill. Slices, maps, and time pointers
// are copied so mutations of the clone never leak into the original.
func (b *Bill) Clone() *Bill {
	if b == nil {
		return nil
	}

	out := *b

	if b.LineItems != nil {
		out.LineItems = make([]LineItem, len(b.LineItems))
		copy(out.LineItems, b.LineItems)
	}
	if b.Payments != nil {
		out.Payments = make([]Payment, len(b.Payments))
		copy(out.Payments, b.Payments)
	}
	if b.Metadata != nil {
		out.Metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			out.Metadata[k] = v
		}
	}

	out.IssueDate = cloneTime(b.IssueDate)
	out.DueDate = cloneTime(b.DueDate)
	out.PaidAt = cloneTime(b.PaidAt)
	out.VoidedAt = cloneTime(b.VoidedAt)
	out.WrittenOffAt = cloneTime(b.WrittenOffAt)
	out.CancelledAt = cloneTime(b.CancelledAt)

	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// billModel is the PostgreSQL row shape for a bill aggregate. Line items
// and payments travel with the bill as JSONB columns so a single row
// update replaces the whole aggregate.
type billModel struct {
	grove.BaseModel `grove:"table:tally_bills"`

	ID         string `grove:"id,pk"`
	ClinicID   string `grove:"clinic_id"`
	BillNumber string `grove:"bill_number"`
	PatientRef string `grove:"patient_ref"`
	DoctorRef  string `grove:"doctor_ref"`
	Status     string `grove:"status"`
	Currency   string `grove:"currency"`

	LineItems json.RawMessage `grove:"line_items,type:jsonb"`
	Payments  json.RawMessage `grove:"payments,type:jsonb"`

	DiscountAmountCents      int64  `grove:"discount_amount_cents"`
	DiscountCurrency         string `grove:"discount_currency"`
	SubtotalAmountCents      int64  `grove:"subtotal_amount_cents"`
	SubtotalCurrency         string `grove:"subtotal_currency"`
	TotalDiscountAmountCents int64  `grove:"total_discount_amount_cents"`
	TotalDiscountCurrency    string `grove:"total_discount_currency"`
	TotalTaxAmountCents      int64  `grove:"total_tax_amount_cents"`
	TotalTaxCurrency         string `grove:"total_tax_currency"`
	GrandTotalAmountCents    int64  `grove:"grand_total_amount_cents"`
	GrandTotalCurrency       string `grove:"grand_total_currency"`
	AmountPaidAmountCents    int64  `grove:"amount_paid_amount_cents"`
	AmountPaidCurrency       string `grove:"amount_paid_currency"`
	BalanceDueAmountCents    int64  `grove:"balance_due_amount_cents"`
	BalanceDueCurrency       string `grove:"balance_due_currency"`

	IssueDate      *time.Time `grove:"issue_date"`
	DueDate        *time.Time `grove:"due_date"`
	PaidAt         *time.Time `grove:"paid_at"`
	VoidedAt       *time.Time `grove:"voided_at"`
	VoidReason     string     `grove:"void_reason"`
	WrittenOffAt   *time.Time `grove:"written_off_at"`
	WriteOffReason string     `grove:"write_off_reason"`
	CancelledAt    *time.Time `grove:"cancelled_at"`
	CancelReason   string     `grove:"cancel_reason"`
	Notes          string     `grove:"notes"`

	Version  int64             `grove:"version"`
	Metadata map[string]string `grove:"metadata,type:jsonb"`

	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toBillModel(b *bill.Bill) *billModel {
	lineItems, _ := json.Marshal(b.LineItems) //nolint:errcheck // best-effort
	payments, _ := json.Marshal(b.Payments)   //nolint:errcheck // best-effort

	return &billModel{
		ID:         b.ID.String(),
		ClinicID:   b.ClinicID,
		BillNumber: b.BillNumber,
		PatientRef: b.PatientRef,
		DoctorRef:  b.DoctorRef,
		Status:     string(b.Status),
		Currency:   b.Currency,

		LineItems: lineItems,
		Payments:  payments,

		DiscountAmountCents:      b.Discount.Amount,
		DiscountCurrency:         b.Discount.Currency,
		SubtotalAmountCents:      b.Subtotal.Amount,
		SubtotalCurrency:         b.Subtotal.Currency,
		TotalDiscountAmountCents: b.TotalDiscount.Amount,
		TotalDiscountCurrency:    b.TotalDiscount.Currency,
		TotalTaxAmountCents:      b.TotalTax.Amount,
		TotalTaxCurrency:         b.TotalTax.Currency,
		GrandTotalAmountCents:    b.GrandTotal.Amount,
		GrandTotalCurrency:       b.GrandTotal.Currency,
		AmountPaidAmountCents:    b.AmountPaid.Amount,
		AmountPaidCurrency:       b.AmountPaid.Currency,
		BalanceDueAmountCents:    b.BalanceDue.Amount,
		BalanceDueCurrency:       b.BalanceDue.Currency,

		IssueDate:      b.IssueDate,
		DueDate:        b.DueDate,
		PaidAt:         b.PaidAt,
		VoidedAt:       b.VoidedAt,
		VoidReason:     b.VoidReason,
		WrittenOffAt:   b.WrittenOffAt,
		WriteOffReason: b.WriteOffReason,
		CancelledAt:    b.CancelledAt,
		CancelReason:   b.CancelReason,
		Notes:          b.Notes,

		Version:  b.Version,
		Metadata: b.Metadata,

		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func fromBillModel(m *billModel) (*bill.Bill, error) {
	billID, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}

	var lineItems []bill.LineItem
	if len(m.LineItems) > 0 {
		_ = json.Unmarshal(m.LineItems, &lineItems) //nolint:errcheck // best-effort
	}
	var payments []bill.Payment
	if len(m.Payments) > 0 {
		_ = json.Unmarshal(m.Payments, &payments) //nolint:errcheck // best-effort
	}

	return &bill.Bill{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         billID,
		ClinicID:   m.ClinicID,
		BillNumber: m.BillNumber,
		PatientRef: m.PatientRef,
		DoctorRef:  m.DoctorRef,
		Status:     bill.Status(m.Status),
		Currency:   m.Currency,
		LineItems:  lineItems,
		Payments:   payments,

		Discount:      types.Money{Amount: m.DiscountAmountCents, Currency: m.DiscountCurrency},
		Subtotal:      types.Money{Amount: m.SubtotalAmountCents, Currency: m.SubtotalCurrency},
		TotalDiscount: types.Money{Amount: m.TotalDiscountAmountCents, Currency: m.TotalDiscountCurrency},
		TotalTax:      types.Money{Amount: m.TotalTaxAmountCents, Currency: m.TotalTaxCurrency},
		GrandTotal:    types.Money{Amount: m.GrandTotalAmountCents, Currency: m.GrandTotalCurrency},
		AmountPaid:    types.Money{Amount: m.AmountPaidAmountCents, Currency: m.AmountPaidCurrency},
		BalanceDue:    types.Money{Amount: m.BalanceDueAmountCents, Currency: m.BalanceDueCurrency},

		IssueDate:      m.IssueDate,
		DueDate:        m.DueDate,
		PaidAt:         m.PaidAt,
		VoidedAt:       m.VoidedAt,
		VoidReason:     m.VoidReason,
		WrittenOffAt:   m.WrittenOffAt,
		WriteOffReason: m.WriteOffReason,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
		Notes:          m.Notes,

		Version:  m.Version,
		Metadata: m.Metadata,
	}, nil
}

package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// ==================== Bill models ====================

type billModel struct {
	grove.BaseModel `grove:"table:tally_bills"`

	ID         string `grove:"id,pk"       bson:"_id"`
	ClinicID   string `grove:"clinic_id"   bson:"clinic_id"`
	BillNumber string `grove:"bill_number" bson:"bill_number"`
	PatientRef string `grove:"patient_ref" bson:"patient_ref"`
	DoctorRef  string `grove:"doctor_ref"  bson:"doctor_ref"`
	Status     string `grove:"status"      bson:"status"`
	Currency   string `grove:"currency"    bson:"currency"`

	LineItems []lineItemModel `grove:"line_items" bson:"line_items"`
	Payments  []paymentModel  `grove:"payments"   bson:"payments"`

	DiscountAmountCents      int64  `grove:"discount_amount_cents"       bson:"discount_amount_cents"`
	DiscountCurrency         string `grove:"discount_currency"           bson:"discount_currency"`
	SubtotalAmountCents      int64  `grove:"subtotal_amount_cents"       bson:"subtotal_amount_cents"`
	SubtotalCurrency         string `grove:"subtotal_currency"           bson:"subtotal_currency"`
	TotalDiscountAmountCents int64  `grove:"total_discount_amount_cents" bson:"total_discount_amount_cents"`
	TotalDiscountCurrency    string `grove:"total_discount_currency"     bson:"total_discount_currency"`
	TotalTaxAmountCents      int64  `grove:"total_tax_amount_cents"      bson:"total_tax_amount_cents"`
	TotalTaxCurrency         string `grove:"total_tax_currency"          bson:"total_tax_currency"`
	GrandTotalAmountCents    int64  `grove:"grand_total_amount_cents"    bson:"grand_total_amount_cents"`
	GrandTotalCurrency       string `grove:"grand_total_currency"        bson:"grand_total_currency"`
	AmountPaidAmountCents    int64  `grove:"amount_paid_amount_cents"    bson:"amount_paid_amount_cents"`
	AmountPaidCurrency       string `grove:"amount_paid_currency"        bson:"amount_paid_currency"`
	BalanceDueAmountCents    int64  `grove:"balance_due_amount_cents"    bson:"balance_due_amount_cents"`
	BalanceDueCurrency       string `grove:"balance_due_currency"        bson:"balance_due_currency"`

	IssueDate      *time.Time `grove:"issue_date"       bson:"issue_date,omitempty"`
	DueDate        *time.Time `grove:"due_date"         bson:"due_date,omitempty"`
	PaidAt         *time.Time `grove:"paid_at"          bson:"paid_at,omitempty"`
	VoidedAt       *time.Time `grove:"voided_at"        bson:"voided_at,omitempty"`
	VoidReason     string     `grove:"void_reason"      bson:"void_reason"`
	WrittenOffAt   *time.Time `grove:"written_off_at"   bson:"written_off_at,omitempty"`
	WriteOffReason string     `grove:"write_off_reason" bson:"write_off_reason"`
	CancelledAt    *time.Time `grove:"cancelled_at"     bson:"cancelled_at,omitempty"`
	CancelReason   string     `grove:"cancel_reason"    bson:"cancel_reason"`
	Notes          string     `grove:"notes"            bson:"notes"`

	Version  int64             `grove:"version"  bson:"version"`
	Metadata map[string]string `grove:"metadata" bson:"metadata,omitempty"`

	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

type lineItemModel struct {
	ID                string `bson:"id"`
	BillID            string `bson:"bill_id"`
	Name              string `bson:"name"`
	Description       string `bson:"description,omitempty"`
	Quantity          int64  `bson:"quantity"`
	UnitPriceCents    int64  `bson:"unit_price_cents"`
	UnitPriceCurrency string `bson:"unit_price_currency"`
	DiscountCents     int64  `bson:"discount_cents"`
	DiscountCurrency  string `bson:"discount_currency"`
	TaxRate           int64  `bson:"tax_rate"`
	TotalCents        int64  `bson:"total_cents"`
	TotalCurrency     string `bson:"total_currency"`
	SourceType        string `bson:"source_type,omitempty"`
	SourceRef         string `bson:"source_ref,omitempty"`
}

type paymentModel struct {
	ID             string    `bson:"id"`
	BillID         string    `bson:"bill_id"`
	AmountCents    int64     `bson:"amount_cents"`
	AmountCurrency string    `bson:"amount_currency"`
	Method         string    `bson:"method"`
	PaidAt         time.Time `bson:"paid_at"`
	Reference      string    `bson:"reference,omitempty"`
	ReceivedBy     string    `bson:"received_by,omitempty"`
	Notes          string    `bson:"notes,omitempty"`
}

func toBillModel(b *bill.Bill) *billModel {
	lineItems := make([]lineItemModel, len(b.LineItems))
	for i, li := range b.LineItems {
		lineItems[i] = lineItemModel{
			ID:                li.ID.String(),
			BillID:            li.BillID.String(),
			Name:              li.Name,
			Description:       li.Description,
			Quantity:          li.Quantity,
			UnitPriceCents:    li.UnitPrice.Amount,
			UnitPriceCurrency: li.UnitPrice.Currency,
			DiscountCents:     li.Discount.Amount,
			DiscountCurrency:  li.Discount.Currency,
			TaxRate:           li.TaxRate,
			TotalCents:        li.Total.Amount,
			TotalCurrency:     li.Total.Currency,
			SourceType:        li.SourceType,
			SourceRef:         li.SourceRef,
		}
	}

	payments := make([]paymentModel, len(b.Payments))
	for i, p := range b.Payments {
		payments[i] = paymentModel{
			ID:             p.ID.String(),
			BillID:         p.BillID.String(),
			AmountCents:    p.Amount.Amount,
			AmountCurrency: p.Amount.Currency,
			Method:         string(p.Method),
			PaidAt:         p.PaidAt,
			Reference:      p.Reference,
			ReceivedBy:     p.ReceivedBy,
			Notes:          p.Notes,
		}
	}

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

	lineItems := make([]bill.LineItem, len(m.LineItems))
	for i, li := range m.LineItems {
		liID, liErr := id.ParseLineItemID(li.ID)
		if liErr != nil {
			return nil, liErr
		}
		bID, bErr := id.ParseBillID(li.BillID)
		if bErr != nil {
			return nil, bErr
		}
		lineItems[i] = bill.LineItem{
			ID:          liID,
			BillID:      bID,
			Name:        li.Name,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   types.Money{Amount: li.UnitPriceCents, Currency: li.UnitPriceCurrency},
			Discount:    types.Money{Amount: li.DiscountCents, Currency: li.DiscountCurrency},
			TaxRate:     li.TaxRate,
			Total:       types.Money{Amount: li.TotalCents, Currency: li.TotalCurrency},
			SourceType:  li.SourceType,
			SourceRef:   li.SourceRef,
		}
	}

	payments := make([]bill.Payment, len(m.Payments))
	for i, p := range m.Payments {
		pID, pErr := id.ParsePaymentID(p.ID)
		if pErr != nil {
			return nil, pErr
		}
		bID, bErr := id.ParseBillID(p.BillID)
		if bErr != nil {
			return nil, bErr
		}
		payments[i] = bill.Payment{
			ID:         pID,
			BillID:     bID,
			Amount:     types.Money{Amount: p.AmountCents, Currency: p.AmountCurrency},
			Method:     bill.Method(p.Method),
			PaidAt:     p.PaidAt,
			Reference:  p.Reference,
			ReceivedBy: p.ReceivedBy,
			Notes:      p.Notes,
		}
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

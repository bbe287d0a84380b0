package bill

import (
	"testing"
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

func testBill(items ...LineItem) *Bill {
	b := &Bill{
		Entity:    types.NewEntity(),
		ID:        id.NewBillID(),
		ClinicID:  "clinic-1",
		Status:    StatusDraft,
		Currency:  "idr",
		LineItems: items,
	}
	ComputeTotals(b)
	return b
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name          string
		items         []LineItem
		billDiscount  types.Money
		subtotal      types.Money
		totalDiscount types.Money
		totalTax      types.Money
		grandTotal    types.Money
	}{
		{
			name:       "empty bill",
			subtotal:   types.IDR(0),
			totalTax:   types.IDR(0),
			grandTotal: types.IDR(0),
			totalDiscount: types.IDR(0),
		},
		{
			name: "consultation twice with tax",
			items: []LineItem{
				{Name: "Consultation", Quantity: 2, UnitPrice: types.IDR(50000), TaxRate: 10},
			},
			subtotal:      types.IDR(100000),
			totalDiscount: types.IDR(0),
			totalTax:      types.IDR(5000), // 10% of the unit price, once per line
			grandTotal:    types.IDR(105000),
		},
		{
			name: "line discount",
			items: []LineItem{
				{Name: "Lab panel", Quantity: 1, UnitPrice: types.IDR(200000), Discount: types.IDR(20000)},
			},
			subtotal:      types.IDR(200000),
			totalDiscount: types.IDR(20000),
			totalTax:      types.IDR(0),
			grandTotal:    types.IDR(180000),
		},
		{
			name: "bill level discount stacks with line discounts",
			items: []LineItem{
				{Name: "X-ray", Quantity: 1, UnitPrice: types.IDR(150000), Discount: types.IDR(10000)},
				{Name: "Meds", Quantity: 3, UnitPrice: types.IDR(25000)},
			},
			billDiscount:  types.IDR(15000),
			subtotal:      types.IDR(225000),
			totalDiscount: types.IDR(25000),
			totalTax:      types.IDR(0),
			grandTotal:    types.IDR(200000),
		},
		{
			name: "discount exceeding total clamps grand total at zero",
			items: []LineItem{
				{Name: "Checkup", Quantity: 1, UnitPrice: types.IDR(50000)},
			},
			billDiscount:  types.IDR(80000),
			subtotal:      types.IDR(50000),
			totalDiscount: types.IDR(80000),
			totalTax:      types.IDR(0),
			grandTotal:    types.IDR(0),
		},
		{
			name: "multiple taxed lines",
			items: []LineItem{
				{Name: "Consultation", Quantity: 2, UnitPrice: types.IDR(50000), TaxRate: 10},
				{Name: "Injection", Quantity: 1, UnitPrice: types.IDR(30000), TaxRate: 11},
			},
			subtotal:      types.IDR(130000),
			totalDiscount: types.IDR(0),
			totalTax:      types.IDR(8300), // 5000 + 3300
			grandTotal:    types.IDR(138300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBill(tt.items...)
			b.Discount = tt.billDiscount
			ComputeTotals(b)

			if !b.Subtotal.Equal(tt.subtotal) {
				t.Errorf("Subtotal: got %v, want %v", b.Subtotal, tt.subtotal)
			}
			if !b.TotalDiscount.Equal(tt.totalDiscount) {
				t.Errorf("TotalDiscount: got %v, want %v", b.TotalDiscount, tt.totalDiscount)
			}
			if !b.TotalTax.Equal(tt.totalTax) {
				t.Errorf("TotalTax: got %v, want %v", b.TotalTax, tt.totalTax)
			}
			if !b.GrandTotal.Equal(tt.grandTotal) {
				t.Errorf("GrandTotal: got %v, want %v", b.GrandTotal, tt.grandTotal)
			}
			if !b.BalanceDue.Equal(tt.grandTotal) {
				t.Errorf("BalanceDue: got %v, want %v", b.BalanceDue, tt.grandTotal)
			}
		})
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	b := testBill(
		LineItem{Name: "Consultation", Quantity: 2, UnitPrice: types.IDR(50000), TaxRate: 10},
		LineItem{Name: "Meds", Quantity: 3, UnitPrice: types.IDR(25000), Discount: types.IDR(5000)},
	)
	b.Payments = append(b.Payments, Payment{Amount: types.IDR(50000), Method: MethodCash})
	ComputeTotals(b)

	first := *b
	ComputeTotals(b)

	if !b.Subtotal.Equal(first.Subtotal) ||
		!b.TotalDiscount.Equal(first.TotalDiscount) ||
		!b.TotalTax.Equal(first.TotalTax) ||
		!b.GrandTotal.Equal(first.GrandTotal) ||
		!b.AmountPaid.Equal(first.AmountPaid) ||
		!b.BalanceDue.Equal(first.BalanceDue) {
		t.Errorf("second ComputeTotals changed derived fields: %+v != %+v", b, first)
	}
	for i := range b.LineItems {
		if !b.LineItems[i].Total.Equal(first.LineItems[i].Total) {
			t.Errorf("line %d total changed: %v != %v", i, b.LineItems[i].Total, first.LineItems[i].Total)
		}
	}
}

func TestComputeTotalsPayments(t *testing.T) {
	b := testBill(LineItem{Name: "Consultation", Quantity: 2, UnitPrice: types.IDR(50000), TaxRate: 10})
	b.Payments = []Payment{
		{Amount: types.IDR(50000), Method: MethodCash},
		{Amount: types.IDR(55000), Method: MethodBankTransfer},
	}
	ComputeTotals(b)

	if !b.AmountPaid.Equal(types.IDR(105000)) {
		t.Errorf("AmountPaid: got %v, want %v", b.AmountPaid, types.IDR(105000))
	}
	if !b.BalanceDue.IsZero() {
		t.Errorf("BalanceDue: got %v, want zero", b.BalanceDue)
	}
}

func TestLineItemTotal(t *testing.T) {
	b := testBill(LineItem{
		Name:      "Consultation",
		Quantity:  2,
		UnitPrice: types.IDR(50000),
		Discount:  types.IDR(10000),
		TaxRate:   10,
	})

	// 2×50000 − 10000 + 10% of 50000
	want := types.IDR(95000)
	if !b.LineItems[0].Total.Equal(want) {
		t.Errorf("line total: got %v, want %v", b.LineItems[0].Total, want)
	}
}

func TestDerive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name    string
		status  Status
		paid    types.Money
		balance types.Money
		dueDate *time.Time
		want    Status
	}{
		{"draft stays draft", StatusDraft, types.IDR(0), types.IDR(105000), nil, StatusDraft},
		{"voided sticky", StatusVoided, types.IDR(0), types.IDR(105000), &past, StatusVoided},
		{"cancelled sticky", StatusCancelled, types.IDR(0), types.IDR(105000), &past, StatusCancelled},
		{"written off sticky", StatusWrittenOff, types.IDR(50000), types.IDR(0), &past, StatusWrittenOff},
		{"issued unpaid before due", StatusIssued, types.IDR(0), types.IDR(105000), &future, StatusIssued},
		{"issued unpaid no due date", StatusIssued, types.IDR(0), types.IDR(105000), nil, StatusIssued},
		{"issued unpaid past due", StatusIssued, types.IDR(0), types.IDR(105000), &past, StatusOverdue},
		{"overdue reverts when due date extended", StatusOverdue, types.IDR(0), types.IDR(105000), &future, StatusIssued},
		{"partial payment", StatusIssued, types.IDR(50000), types.IDR(55000), &future, StatusPartial},
		{"overdue becomes partial on payment", StatusOverdue, types.IDR(50000), types.IDR(55000), &past, StatusPartial},
		{"fully paid", StatusPartial, types.IDR(105000), types.IDR(0), &past, StatusPaid},
		{"paid stays paid", StatusPaid, types.IDR(105000), types.IDR(0), &past, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bill{
				Status:     tt.status,
				Currency:   "idr",
				AmountPaid: tt.paid,
				BalanceDue: tt.balance,
				DueDate:    tt.dueDate,
			}
			if got := Derive(b, now); got != tt.want {
				t.Errorf("Derive: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	due := time.Now().Add(14 * 24 * time.Hour)
	b := testBill(LineItem{Name: "Consultation", Quantity: 1, UnitPrice: types.IDR(50000)})
	b.DueDate = &due
	b.Metadata = map[string]string{"visit": "v-1"}
	b.Payments = []Payment{{Amount: types.IDR(10000), Method: MethodCash}}

	c := b.Clone()

	c.LineItems[0].Quantity = 99
	c.Payments[0].Amount = types.IDR(1)
	c.Metadata["visit"] = "changed"
	*c.DueDate = c.DueDate.Add(time.Hour)

	if b.LineItems[0].Quantity != 1 {
		t.Error("clone mutation leaked into original line items")
	}
	if !b.Payments[0].Amount.Equal(types.IDR(10000)) {
		t.Error("clone mutation leaked into original payments")
	}
	if b.Metadata["visit"] != "v-1" {
		t.Error("clone mutation leaked into original metadata")
	}
	if !b.DueDate.Equal(due) {
		t.Error("clone mutation leaked into original due date")
	}
}

func TestStatusPredicates(t *testing.T) {
	terminal := []Status{StatusCancelled, StatusWrittenOff, StatusVoided}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
		if s.IsOpen() {
			t.Errorf("%q should not be open", s)
		}
	}

	open := []Status{StatusIssued, StatusPartial, StatusOverdue}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
		if !s.IsOpen() {
			t.Errorf("%q should be open", s)
		}
	}

	if StatusPaid.IsTerminal() || StatusPaid.IsOpen() {
		t.Error("paid should be neither terminal nor open")
	}
	if StatusDraft.IsOpen() {
		t.Error("draft should not be open")
	}
}

func TestMethodValid(t *testing.T) {
	valid := []Method{MethodCash, MethodBankTransfer, MethodCreditCard, MethodEWallet, MethodInsurance}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if Method("check").Valid() {
		t.Error("unknown method should be invalid")
	}
	if Method("").Valid() {
		t.Error("empty method should be invalid")
	}
}

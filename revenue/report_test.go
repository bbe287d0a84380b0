package revenue

import (
	"testing"
	"time"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

var reportNow = time.Date(2026, 3, 15, 15, 30, 0, 0, time.UTC)

func paidBill(amount int64, issued time.Time, payments ...bill.Payment) *bill.Bill {
	b := &bill.Bill{
		ID:        id.NewBillID(),
		ClinicID:  "clinic-1",
		Status:    bill.StatusPaid,
		Currency:  "idr",
		IssueDate: &issued,
		Payments:  payments,
		LineItems: []bill.LineItem{
			{Name: "Visit", Quantity: 1, UnitPrice: types.IDR(amount)},
		},
	}
	b.Entity = types.NewEntity()
	bill.ComputeTotals(b)
	return b
}

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		period Period
		want   time.Time
	}{
		{PeriodToday, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2026, 3, 8, 15, 30, 0, 0, time.UTC)},
		{PeriodMonth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			if got := tt.period.Start(reportNow); !got.Equal(tt.want) {
				t.Errorf("Start: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"today", "week", "month", "year"} {
		if _, err := ParsePeriod(s); err != nil {
			t.Errorf("ParsePeriod(%q): unexpected error %v", s, err)
		}
	}
	if _, err := ParsePeriod("quarter"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, PeriodMonth, reportNow, nil)

	if r.BillCount != 0 {
		t.Errorf("BillCount: got %d, want 0", r.BillCount)
	}
	if !r.Total.IsZero() {
		t.Errorf("Total: got %v, want zero", r.Total)
	}
	if !r.AverageBill.IsZero() {
		t.Errorf("AverageBill: got %v, want zero", r.AverageBill)
	}
	if len(r.ByMethod) != 0 {
		t.Errorf("ByMethod: got %d entries, want 0", len(r.ByMethod))
	}
	if len(r.Daily) != 7 {
		t.Errorf("Daily: got %d entries, want 7", len(r.Daily))
	}
	for _, d := range r.Daily {
		if d.Count != 0 || !d.Total.IsZero() {
			t.Errorf("empty report should have zero daily entries, got %+v", d)
		}
	}
}

func TestBuildTotalsAndAverage(t *testing.T) {
	paid := reportNow.Add(-2 * time.Hour)
	bills := []*bill.Bill{
		paidBill(100000, reportNow.AddDate(0, 0, -1),
			bill.Payment{Amount: types.IDR(100000), Method: bill.MethodCash, PaidAt: paid}),
		paidBill(50000, reportNow.AddDate(0, 0, -2),
			bill.Payment{Amount: types.IDR(50000), Method: bill.MethodEWallet, PaidAt: paid}),
	}

	r := Build(bills, PeriodMonth, reportNow, nil)

	if r.BillCount != 2 {
		t.Fatalf("BillCount: got %d, want 2", r.BillCount)
	}
	if !r.Total.Equal(types.IDR(150000)) {
		t.Errorf("Total: got %v, want %v", r.Total, types.IDR(150000))
	}
	if !r.AverageBill.Equal(types.IDR(75000)) {
		t.Errorf("AverageBill: got %v, want %v", r.AverageBill, types.IDR(75000))
	}
	if r.Currency != "idr" {
		t.Errorf("Currency: got %q, want idr", r.Currency)
	}
}

func TestBuildFiltersByPeriod(t *testing.T) {
	paid := reportNow.Add(-time.Hour)
	inRange := paidBill(100000, reportNow.AddDate(0, 0, -1),
		bill.Payment{Amount: types.IDR(100000), Method: bill.MethodCash, PaidAt: paid})
	tooOld := paidBill(70000, reportNow.AddDate(0, -2, 0),
		bill.Payment{Amount: types.IDR(70000), Method: bill.MethodCash, PaidAt: paid})

	r := Build([]*bill.Bill{inRange, tooOld}, PeriodMonth, reportNow, nil)

	if r.BillCount != 1 {
		t.Errorf("BillCount: got %d, want 1", r.BillCount)
	}
	if !r.Total.Equal(types.IDR(100000)) {
		t.Errorf("Total: got %v, want %v", r.Total, types.IDR(100000))
	}
}

func TestBuildIgnoresUnpaid(t *testing.T) {
	open := paidBill(100000, reportNow.AddDate(0, 0, -1))
	open.Status = bill.StatusPartial

	r := Build([]*bill.Bill{open}, PeriodMonth, reportNow, nil)

	if r.BillCount != 0 || !r.Total.IsZero() {
		t.Errorf("unpaid bill counted: count=%d total=%v", r.BillCount, r.Total)
	}
}

func TestBuildUsesCreatedAtFallback(t *testing.T) {
	paid := reportNow.Add(-time.Hour)
	b := paidBill(40000, reportNow,
		bill.Payment{Amount: types.IDR(40000), Method: bill.MethodCash, PaidAt: paid})
	b.IssueDate = nil
	b.CreatedAt = reportNow.AddDate(0, 0, -1)

	r := Build([]*bill.Bill{b}, PeriodMonth, reportNow, nil)

	if r.BillCount != 1 {
		t.Errorf("BillCount: got %d, want 1", r.BillCount)
	}
}

func TestBuildMethodBreakdownSorted(t *testing.T) {
	paid := reportNow.Add(-time.Hour)
	bills := []*bill.Bill{
		paidBill(30000, reportNow.AddDate(0, 0, -1),
			bill.Payment{Amount: types.IDR(30000), Method: bill.MethodEWallet, PaidAt: paid}),
		paidBill(100000, reportNow.AddDate(0, 0, -1),
			bill.Payment{Amount: types.IDR(60000), Method: bill.MethodCash, PaidAt: paid},
			bill.Payment{Amount: types.IDR(40000), Method: bill.MethodCash, PaidAt: paid}),
	}

	r := Build(bills, PeriodMonth, reportNow, nil)

	if len(r.ByMethod) != 2 {
		t.Fatalf("ByMethod: got %d entries, want 2", len(r.ByMethod))
	}
	if r.ByMethod[0].Method != bill.MethodCash {
		t.Errorf("first method: got %q, want cash", r.ByMethod[0].Method)
	}
	if r.ByMethod[0].Count != 2 || !r.ByMethod[0].Total.Equal(types.IDR(100000)) {
		t.Errorf("cash breakdown: got count=%d total=%v", r.ByMethod[0].Count, r.ByMethod[0].Total)
	}
	if r.ByMethod[1].Method != bill.MethodEWallet {
		t.Errorf("second method: got %q, want e_wallet", r.ByMethod[1].Method)
	}
}

func TestBuildDailySeries(t *testing.T) {
	twoDaysAgo := reportNow.AddDate(0, 0, -2)
	bills := []*bill.Bill{
		paidBill(100000, reportNow.AddDate(0, 0, -3),
			bill.Payment{Amount: types.IDR(40000), Method: bill.MethodCash, PaidAt: reportNow.AddDate(0, 0, -3)},
			bill.Payment{Amount: types.IDR(60000), Method: bill.MethodCash, PaidAt: twoDaysAgo}),
	}

	r := Build(bills, PeriodMonth, reportNow, nil)

	if len(r.Daily) != 7 {
		t.Fatalf("Daily: got %d entries, want 7", len(r.Daily))
	}
	// Oldest first, today last.
	if !r.Daily[6].Date.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last entry should be today, got %v", r.Daily[6].Date)
	}

	// The bill settles on the day of its most recent payment.
	wantDay := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	var found bool
	for _, d := range r.Daily {
		if d.Date.Equal(wantDay) {
			found = true
			if d.Count != 1 || !d.Total.Equal(types.IDR(100000)) {
				t.Errorf("settle day: got count=%d total=%v", d.Count, d.Total)
			}
		} else if d.Count != 0 {
			t.Errorf("unexpected revenue on %v", d.Date)
		}
	}
	if !found {
		t.Error("settle day missing from series")
	}
}

func TestBuildSkipsMalformed(t *testing.T) {
	paid := reportNow.Add(-time.Hour)
	good := paidBill(100000, reportNow.AddDate(0, 0, -1),
		bill.Payment{Amount: types.IDR(100000), Method: bill.MethodCash, PaidAt: paid})

	broken := paidBill(50000, reportNow.AddDate(0, 0, -1),
		bill.Payment{Amount: types.IDR(50000), Method: bill.MethodCash, PaidAt: paid})
	broken.BalanceDue = types.IDR(999) // no longer reconciles

	foreign := paidBill(80000, reportNow.AddDate(0, 0, -1),
		bill.Payment{Amount: types.IDR(80000), Method: bill.MethodCash, PaidAt: paid})
	foreign.GrandTotal = types.USD(8000)

	r := Build([]*bill.Bill{good, broken, foreign}, PeriodMonth, reportNow, nil)

	if r.BillCount != 1 {
		t.Errorf("BillCount: got %d, want 1", r.BillCount)
	}
	if r.Skipped != 2 {
		t.Errorf("Skipped: got %d, want 2", r.Skipped)
	}
	if !r.Total.Equal(types.IDR(100000)) {
		t.Errorf("Total: got %v, want %v", r.Total, types.IDR(100000))
	}
}

func TestBuildDeterministic(t *testing.T) {
	paid := reportNow.Add(-time.Hour)
	bills := []*bill.Bill{
		paidBill(100000, reportNow.AddDate(0, 0, -1),
			bill.Payment{Amount: types.IDR(100000), Method: bill.MethodCash, PaidAt: paid}),
		paidBill(100000, reportNow.AddDate(0, 0, -1),
			bill.Payment{Amount: types.IDR(100000), Method: bill.MethodInsurance, PaidAt: paid}),
	}

	a := Build(bills, PeriodWeek, reportNow, nil)
	b := Build(bills, PeriodWeek, reportNow, nil)

	if len(a.ByMethod) != len(b.ByMethod) {
		t.Fatal("non-deterministic method breakdown length")
	}
	for i := range a.ByMethod {
		if a.ByMethod[i].Method != b.ByMethod[i].Method {
			t.Errorf("non-deterministic order at %d: %q != %q", i, a.ByMethod[i].Method, b.ByMethod[i].Method)
		}
	}
	// Equal totals tie-break on method name.
	if a.ByMethod[0].Method != bill.MethodCash {
		t.Errorf("tie-break: got %q first, want cash", a.ByMethod[0].Method)
	}
}

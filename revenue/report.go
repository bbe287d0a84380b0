package revenue

import (
	"log/slog"
	"sort"
	"time"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/types"
)

// Build folds bills into a revenue report for the period ending at now.
//
// Only paid bills count as revenue. A bill is in range when its issue
// date (creation date for bills issued before the field existed) falls
// within [period start, now]. Malformed bills, inconsistent totals or
// a currency differing from the report's, are skipped and logged, never
// fatal: one bad record must not take down the dashboard.
//
// The report currency is taken from the first in-range paid bill; an
// empty report defaults to "idr".
func Build(bills []*bill.Bill, period Period, now time.Time, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := period.Start(now)
	report := &Report{
		Period:      period,
		PeriodStart: start,
		GeneratedAt: now,
	}

	byMethod := make(map[bill.Method]*MethodRevenue)
	byDay := make(map[time.Time]*DailyRevenue)

	for _, b := range bills {
		if b == nil || b.Status != bill.StatusPaid {
			continue
		}

		at := effectiveDate(b)
		if at.Before(start) || at.After(now) {
			continue
		}

		if report.Currency == "" {
			report.Currency = b.GrandTotal.Currency
			report.Total = types.Zero(report.Currency)
		}

		if reason := malformed(b, report.Currency); reason != "" {
			report.Skipped++
			logger.Warn("skipping malformed bill in revenue report",
				"bill_id", b.ID.String(),
				"bill_number", b.BillNumber,
				"reason", reason)
			continue
		}

		report.Total = report.Total.Add(b.GrandTotal)
		report.BillCount++

		for _, p := range b.Payments {
			mr, ok := byMethod[p.Method]
			if !ok {
				mr = &MethodRevenue{Method: p.Method, Total: types.Zero(report.Currency)}
				byMethod[p.Method] = mr
			}
			mr.Count++
			mr.Total = mr.Total.Add(p.Amount)
		}

		if settled, ok := lastPaymentDay(b, now.Location()); ok {
			dr, found := byDay[settled]
			if !found {
				dr = &DailyRevenue{Date: settled, Total: types.Zero(report.Currency)}
				byDay[settled] = dr
			}
			dr.Count++
			dr.Total = dr.Total.Add(b.GrandTotal)
		}
	}

	if report.Currency == "" {
		report.Currency = "idr"
		report.Total = types.Zero(report.Currency)
	}

	if report.BillCount > 0 {
		report.AverageBill = types.Money{
			Amount:   report.Total.Amount / int64(report.BillCount),
			Currency: report.Currency,
		}
	} else {
		report.AverageBill = types.Zero(report.Currency)
	}

	report.ByMethod = sortMethods(byMethod)
	report.Daily = trailingDays(byDay, now, report.Currency)

	return report
}

// effectiveDate is the date a bill is attributed to for range filtering.
func effectiveDate(b *bill.Bill) time.Time {
	if b.IssueDate != nil && !b.IssueDate.IsZero() {
		return *b.IssueDate
	}
	return b.CreatedAt
}

// malformed returns a non-empty reason when the bill's derived fields
// are internally inconsistent or its currency does not match the report.
func malformed(b *bill.Bill, currency string) string {
	if b.GrandTotal.Currency != currency {
		return "currency mismatch"
	}
	if !b.AmountPaid.SameCurrency(b.GrandTotal) || !b.BalanceDue.SameCurrency(b.GrandTotal) {
		return "mixed currencies in derived fields"
	}
	if b.BalanceDue.Amount != b.GrandTotal.Amount-b.AmountPaid.Amount {
		return "balance does not reconcile"
	}
	if b.GrandTotal.IsNegative() {
		return "negative grand total"
	}
	return ""
}

// lastPaymentDay returns the midnight of the bill's most recent payment.
func lastPaymentDay(b *bill.Bill, loc *time.Location) (time.Time, bool) {
	var last time.Time
	for _, p := range b.Payments {
		if p.PaidAt.After(last) {
			last = p.PaidAt
		}
	}
	if last.IsZero() {
		return time.Time{}, false
	}
	local := last.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), true
}

// sortMethods orders method breakdowns by total descending, then by
// method name for a stable order when totals tie.
func sortMethods(m map[bill.Method]*MethodRevenue) []MethodRevenue {
	out := make([]MethodRevenue, 0, len(m))
	for _, mr := range m {
		out = append(out, *mr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Amount != out[j].Total.Amount {
			return out[i].Total.Amount > out[j].Total.Amount
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// trailingDays returns the last seven calendar days ending at now,
// oldest first, with zero entries for days without settled bills.
func trailingDays(byDay map[time.Time]*DailyRevenue, now time.Time, currency string) []DailyRevenue {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	out := make([]DailyRevenue, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		if dr, ok := byDay[day]; ok {
			out = append(out, *dr)
			continue
		}
		out = append(out, DailyRevenue{Date: day, Total: types.Zero(currency)})
	}
	return out
}

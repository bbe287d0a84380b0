// Package revenue builds read-side revenue reports from bills.
// Everything here is a pure fold over the input: no storage, no clocks,
// no mutation of the bills.
package revenue

import (
	"fmt"
	"time"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/types"
)

// Period selects the reporting window.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s), nil
	}
	return "", fmt.Errorf("revenue: unknown period %q", s)
}

// Start returns the inclusive lower bound of the period ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default: // today
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

// Report is a snapshot of collected revenue over a period.
type Report struct {
	Period      Period      `json:"period"`
	PeriodStart time.Time   `json:"period_start"`
	GeneratedAt time.Time   `json:"generated_at"`
	Currency    string      `json:"currency"`
	Total       types.Money `json:"total"`
	BillCount   int         `json:"bill_count"`
	AverageBill types.Money `json:"average_bill"`
	ByMethod    []MethodRevenue `json:"by_method"`
	Daily       []DailyRevenue  `json:"daily"`
	Skipped     int             `json:"skipped,omitempty"` // malformed bills excluded from the report
}

// MethodRevenue is collected revenue attributed to one payment method.
type MethodRevenue struct {
	Method bill.Method `json:"method"`
	Count  int         `json:"count"`
	Total  types.Money `json:"total"`
}

// DailyRevenue is collected revenue settled on one calendar day.
type DailyRevenue struct {
	Date  time.Time   `json:"date"` // midnight, report location
	Count int         `json:"count"`
	Total types.Money `json:"total"`
}

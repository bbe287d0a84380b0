package tally

import (
	"context"
	"time"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/revenue"
)

// RevenueReport builds a revenue report over a clinic's bills for the
// period ending now. The fold itself is pure; this method supplies the
// snapshot read and the clock. The snapshot does not block writers, so
// the report is best-effort as of read time.
func (l *Ledger) RevenueReport(ctx context.Context, clinicID string, period revenue.Period) (*revenue.Report, error) {
	start := time.Now()

	bills, err := l.store.ListBills(ctx, clinicID, bill.ListOpts{
		Status: bill.StatusPaid,
		Start:  period.Start(l.now()),
	})
	if err != nil {
		return nil, err
	}

	report := revenue.Build(bills, period, l.now(), l.logger)

	l.plugins.EmitReportGenerated(ctx, report, time.Since(start))
	l.logger.Debug("revenue report generated",
		"clinic_id", clinicID,
		"period", string(period),
		"bill_count", report.BillCount,
		"total", report.Total.String(),
		"skipped", report.Skipped,
	)

	return report, nil
}

// Package observability provides a metrics extension for Tally that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/tally/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin            = (*MetricsExtension)(nil)
	_ plugin.OnInit            = (*MetricsExtension)(nil)
	_ plugin.OnBillCreated     = (*MetricsExtension)(nil)
	_ plugin.OnBillIssued      = (*MetricsExtension)(nil)
	_ plugin.OnBillPaid        = (*MetricsExtension)(nil)
	_ plugin.OnBillVoided      = (*MetricsExtension)(nil)
	_ plugin.OnBillWrittenOff  = (*MetricsExtension)(nil)
	_ plugin.OnBillCancelled   = (*MetricsExtension)(nil)
	_ plugin.OnBillOverdue     = (*MetricsExtension)(nil)
	_ plugin.OnPaymentApplied  = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRejected = (*MetricsExtension)(nil)
	_ plugin.OnReportGenerated = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Tally plugin to automatically track billing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Bill metrics
	BillCreated    Counter
	BillIssued     Counter
	BillPaid       Counter
	BillVoided     Counter
	BillWrittenOff Counter
	BillCancelled  Counter
	BillOverdue    Counter

	// Payment metrics
	PaymentApplied  Counter
	PaymentRejected Counter

	// Report metrics
	ReportGenerated Counter
	ReportLatency   Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Bill metrics
		BillCreated:    factory.Counter("tally.bill.created"),
		BillIssued:     factory.Counter("tally.bill.issued"),
		BillPaid:       factory.Counter("tally.bill.paid"),
		BillVoided:     factory.Counter("tally.bill.voided"),
		BillWrittenOff: factory.Counter("tally.bill.written_off"),
		BillCancelled:  factory.Counter("tally.bill.cancelled"),
		BillOverdue:    factory.Counter("tally.bill.overdue"),

		// Payment metrics
		PaymentApplied:  factory.Counter("tally.payment.applied"),
		PaymentRejected: factory.Counter("tally.payment.rejected"),

		// Report metrics
		ReportGenerated: factory.Counter("tally.report.generated"),
		ReportLatency:   factory.Histogram("tally.report.latency_ms"),

		// Error metrics
		StoreErrors:  factory.Counter("tally.store.errors"),
		PluginErrors: factory.Counter("tally.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements plugin.OnBillCreated.
func (m *MetricsExtension) OnBillCreated(_ context.Context, _ interface{}) error {
	m.BillCreated.Inc()
	return nil
}

// OnBillIssued implements plugin.OnBillIssued.
func (m *MetricsExtension) OnBillIssued(_ context.Context, _ interface{}) error {
	m.BillIssued.Inc()
	return nil
}

// OnBillPaid implements plugin.OnBillPaid.
func (m *MetricsExtension) OnBillPaid(_ context.Context, _ interface{}) error {
	m.BillPaid.Inc()
	return nil
}

// OnBillVoided implements plugin.OnBillVoided.
func (m *MetricsExtension) OnBillVoided(_ context.Context, _ interface{}, _ string) error {
	m.BillVoided.Inc()
	return nil
}

// OnBillWrittenOff implements plugin.OnBillWrittenOff.
func (m *MetricsExtension) OnBillWrittenOff(_ context.Context, _ interface{}, _ string) error {
	m.BillWrittenOff.Inc()
	return nil
}

// OnBillCancelled implements plugin.OnBillCancelled.
func (m *MetricsExtension) OnBillCancelled(_ context.Context, _ interface{}, _ string) error {
	m.BillCancelled.Inc()
	return nil
}

// OnBillOverdue implements plugin.OnBillOverdue.
func (m *MetricsExtension) OnBillOverdue(_ context.Context, _ interface{}) error {
	m.BillOverdue.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied implements plugin.OnPaymentApplied.
func (m *MetricsExtension) OnPaymentApplied(_ context.Context, _, _ interface{}) error {
	m.PaymentApplied.Inc()
	return nil
}

// OnPaymentRejected implements plugin.OnPaymentRejected.
func (m *MetricsExtension) OnPaymentRejected(_ context.Context, _ string, _ error) error {
	m.PaymentRejected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Reporting hooks
// ──────────────────────────────────────────────────

// OnReportGenerated implements plugin.OnReportGenerated.
func (m *MetricsExtension) OnReportGenerated(_ context.Context, _ interface{}, elapsed time.Duration) error {
	m.ReportGenerated.Inc()
	m.ReportLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

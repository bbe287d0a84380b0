// Package plugin provides an extensible plugin system for Tally.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated is called when a new draft bill is created.
type OnBillCreated interface {
	Plugin
	OnBillCreated(ctx context.Context, b interface{}) error
}

// OnBillIssued is called when a bill is issued to a patient.
type OnBillIssued interface {
	Plugin
	OnBillIssued(ctx context.Context, b interface{}) error
}

// OnBillPaid is called when a bill's balance reaches zero.
type OnBillPaid interface {
	Plugin
	OnBillPaid(ctx context.Context, b interface{}) error
}

// OnBillVoided is called when a bill is voided.
type OnBillVoided interface {
	Plugin
	OnBillVoided(ctx context.Context, b interface{}, reason string) error
}

// OnBillWrittenOff is called when a bill's balance is written off.
type OnBillWrittenOff interface {
	Plugin
	OnBillWrittenOff(ctx context.Context, b interface{}, reason string) error
}

// OnBillCancelled is called when a bill is cancelled.
type OnBillCancelled interface {
	Plugin
	OnBillCancelled(ctx context.Context, b interface{}, reason string) error
}

// OnBillOverdue is called when the overdue sweep marks a bill past due.
type OnBillOverdue interface {
	Plugin
	OnBillOverdue(ctx context.Context, b interface{}) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied is called after a payment is recorded on a bill.
type OnPaymentApplied interface {
	Plugin
	OnPaymentApplied(ctx context.Context, b interface{}, payment interface{}) error
}

// OnPaymentRejected is called when a payment attempt is rejected
// (overpayment, wrong state, validation failure).
type OnPaymentRejected interface {
	Plugin
	OnPaymentRejected(ctx context.Context, billID string, reason error) error
}

// ──────────────────────────────────────────────────
// Reporting hooks
// ──────────────────────────────────────────────────

// OnReportGenerated is called when a revenue report is built.
type OnReportGenerated interface {
	Plugin
	OnReportGenerated(ctx context.Context, report interface{}, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Payment validators
// ──────────────────────────────────────────────────

// PaymentValidator provides custom payment acceptance rules, checked
// before a payment is applied. Returning an error rejects the payment.
type PaymentValidator interface {
	Plugin
	ValidatePayment(ctx context.Context, b interface{}, payment interface{}) error
}

// ──────────────────────────────────────────────────
// Bill formatters
// ──────────────────────────────────────────────────

// BillFormatter formats bills for export.
type BillFormatter interface {
	Plugin
	Format() string                                                 // "pdf", "html", "csv", etc.
	Render(ctx context.Context, b interface{}, w interface{}) error // w is io.Writer
}

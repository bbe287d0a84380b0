// Package audithook bridges Tally lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/tally/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin            = (*Extension)(nil)
	_ plugin.OnBillCreated     = (*Extension)(nil)
	_ plugin.OnBillIssued      = (*Extension)(nil)
	_ plugin.OnBillPaid        = (*Extension)(nil)
	_ plugin.OnBillVoided      = (*Extension)(nil)
	_ plugin.OnBillWrittenOff  = (*Extension)(nil)
	_ plugin.OnBillCancelled   = (*Extension)(nil)
	_ plugin.OnBillOverdue     = (*Extension)(nil)
	_ plugin.OnPaymentApplied  = (*Extension)(nil)
	_ plugin.OnPaymentRejected = (*Extension)(nil)
	_ plugin.OnReportGenerated = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Tally lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements plugin.OnBillCreated.
func (e *Extension) OnBillCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillCreated, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_created",
	)
}

// OnBillIssued implements plugin.OnBillIssued.
func (e *Extension) OnBillIssued(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillIssued, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_issued",
	)
}

// OnBillPaid implements plugin.OnBillPaid.
func (e *Extension) OnBillPaid(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillPaid, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryPayment, nil,
		"event", "bill_paid",
	)
}

// OnBillVoided implements plugin.OnBillVoided.
func (e *Extension) OnBillVoided(ctx context.Context, _ interface{}, reason string) error {
	return e.record(ctx, ActionBillVoided, SeverityWarning, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_voided",
		"void_reason", reason,
	)
}

// OnBillWrittenOff implements plugin.OnBillWrittenOff.
func (e *Extension) OnBillWrittenOff(ctx context.Context, _ interface{}, reason string) error {
	return e.record(ctx, ActionBillWrittenOff, SeverityWarning, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_written_off",
		"write_off_reason", reason,
	)
}

// OnBillCancelled implements plugin.OnBillCancelled.
func (e *Extension) OnBillCancelled(ctx context.Context, _ interface{}, reason string) error {
	return e.record(ctx, ActionBillCancelled, SeverityWarning, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_cancelled",
		"cancel_reason", reason,
	)
}

// OnBillOverdue implements plugin.OnBillOverdue.
func (e *Extension) OnBillOverdue(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillOverdue, SeverityWarning, OutcomeSuccess,
		ResourceBill, "", CategoryBilling, nil,
		"event", "bill_overdue",
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied implements plugin.OnPaymentApplied.
func (e *Extension) OnPaymentApplied(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionPaymentApplied, SeverityInfo, OutcomeSuccess,
		ResourcePayment, "", CategoryPayment, nil,
		"event", "payment_applied",
	)
}

// OnPaymentRejected implements plugin.OnPaymentRejected.
func (e *Extension) OnPaymentRejected(ctx context.Context, billID string, reason error) error {
	return e.record(ctx, ActionPaymentRejected, SeverityWarning, OutcomeFailure,
		ResourcePayment, billID, CategoryPayment, reason,
		"event", "payment_rejected",
		"bill_id", billID,
	)
}

// ──────────────────────────────────────────────────
// Reporting hooks
// ──────────────────────────────────────────────────

// OnReportGenerated implements plugin.OnReportGenerated.
func (e *Extension) OnReportGenerated(ctx context.Context, _ interface{}, elapsed time.Duration) error {
	return e.record(ctx, ActionReportGenerated, SeverityInfo, OutcomeSuccess,
		ResourceReport, "", CategoryReporting, nil,
		"event", "report_generated",
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

package audithook

// Action constants for audit events.
const (
	// Bill actions
	ActionBillCreated    = "bill.created"
	ActionBillIssued     = "bill.issued"
	ActionBillPaid       = "bill.paid"
	ActionBillVoided     = "bill.voided"
	ActionBillWrittenOff = "bill.written_off"
	ActionBillCancelled  = "bill.cancelled"
	ActionBillOverdue    = "bill.overdue"

	// Payment actions
	ActionPaymentApplied  = "payment.applied"
	ActionPaymentRejected = "payment.rejected"

	// Report actions
	ActionReportGenerated = "report.generated"
)

// Resource constants for audit events.
const (
	ResourceBill    = "bill"
	ResourcePayment = "payment"
	ResourceReport  = "report"
)

// Category constants for audit events.
const (
	CategoryBilling   = "billing"
	CategoryPayment   = "payment"
	CategoryReporting = "reporting"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)

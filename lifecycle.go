package tally

import (
	"context"
	"time"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
)

// IssueBill moves a draft to issued: assigns the bill number, issue date,
// and a due date (issue date + payment terms, unless already set). The
// bill number is assigned exactly once and never regenerated.
func (l *Ledger) IssueBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	unlock := l.locks.acquire(billID.String())
	defer unlock()

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if current.Status != bill.StatusDraft {
		return nil, TransitionError{Action: "issue", From: current.Status}
	}
	if len(current.LineItems) == 0 {
		return nil, ErrEmptyBill
	}

	now := l.now()
	next := current.Clone()
	next.BillNumber = l.billNumber(next, now)
	next.IssueDate = &now
	if next.DueDate == nil {
		due := now.Add(l.paymentTerms)
		next.DueDate = &due
	}
	next.Status = bill.StatusIssued
	bill.ComputeTotals(next)
	next.Touch()

	if err := l.store.UpdateBill(ctx, next); err != nil {
		return nil, err
	}

	l.plugins.EmitBillIssued(ctx, next)
	l.logger.Info("bill issued",
		"bill_id", next.ID.String(),
		"bill_number", next.BillNumber,
		"grand_total", next.GrandTotal.String(),
		"due_date", next.DueDate,
	)

	return next, nil
}

// VoidBill voids an issued bill that has received no money. Bills with
// payments cannot be voided; write them off instead so the received
// amount stays on record.
func (l *Ledger) VoidBill(ctx context.Context, billID id.BillID, reason string) (*bill.Bill, error) {
	return l.close(ctx, billID, reason, "void")
}

// WriteOffBill writes off the outstanding balance of an issued bill as
// bad debt. Unlike voiding, it is permitted after partial payment: the
// balance due is zeroed while the amount paid is preserved for audit.
func (l *Ledger) WriteOffBill(ctx context.Context, billID id.BillID, reason string) (*bill.Bill, error) {
	return l.close(ctx, billID, reason, "write_off")
}

// CancelBill cancels a bill. For drafts this is a pre-issuance
// cancellation; for issued bills it carries the same guards as voiding.
func (l *Ledger) CancelBill(ctx context.Context, billID id.BillID, reason string) (*bill.Bill, error) {
	return l.close(ctx, billID, reason, "cancel")
}

// close applies one of the terminal lifecycle actions under the bill lock.
// A rejected action leaves the bill untouched.
func (l *Ledger) close(ctx context.Context, billID id.BillID, reason, action string) (*bill.Bill, error) {
	if reason == "" {
		return nil, ErrEmptyReason
	}

	unlock := l.locks.acquire(billID.String())
	defer unlock()

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	switch action {
	case "cancel":
		if current.Status != bill.StatusDraft && !current.Status.IsOpen() {
			return nil, TransitionError{Action: action, From: current.Status}
		}
	default:
		if !current.Status.IsOpen() {
			return nil, TransitionError{Action: action, From: current.Status}
		}
	}

	// Received money survives a write-off but blocks void and cancel.
	if action != "write_off" && current.AmountPaid.IsPositive() {
		return nil, ErrPaymentsExist
	}

	now := l.now()
	next := current.Clone()

	switch action {
	case "void":
		next.Status = bill.StatusVoided
		next.VoidedAt = &now
		next.VoidReason = reason
	case "write_off":
		next.Status = bill.StatusWrittenOff
		next.WrittenOffAt = &now
		next.WriteOffReason = reason
		next.BalanceDue = Zero(next.Currency)
	case "cancel":
		next.Status = bill.StatusCancelled
		next.CancelledAt = &now
		next.CancelReason = reason
	}
	next.Touch()

	if err := l.store.UpdateBill(ctx, next); err != nil {
		return nil, err
	}

	switch action {
	case "void":
		l.plugins.EmitBillVoided(ctx, next, reason)
	case "write_off":
		l.plugins.EmitBillWrittenOff(ctx, next, reason)
	case "cancel":
		l.plugins.EmitBillCancelled(ctx, next, reason)
	}

	l.logger.Info("bill closed",
		"bill_id", next.ID.String(),
		"action", action,
		"reason", reason,
	)

	return next, nil
}

// RefreshStatus re-derives one bill's status at the current time and
// persists it when it changed. The sweep worker calls this for every
// open bill; callers can use it to surface an overdue flip immediately.
func (l *Ledger) RefreshStatus(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	if err := l.transitionDerived(ctx, billID, l.now()); err != nil {
		return nil, err
	}
	return l.store.GetBill(ctx, billID)
}

// ExtendDueDate pushes an open bill's due date out, reverting overdue
// bills to issued on the next derivation.
func (l *Ledger) ExtendDueDate(ctx context.Context, billID id.BillID, due time.Time) (*bill.Bill, error) {
	unlock := l.locks.acquire(billID.String())
	defer unlock()

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsOpen() {
		return nil, TransitionError{Action: "extend", From: current.Status}
	}
	if current.DueDate != nil && due.Before(*current.DueDate) {
		return nil, ValidationError{Field: "due_date", Message: "must not move earlier"}
	}

	next := current.Clone()
	next.DueDate = &due
	next.Status = bill.Derive(next, l.now())
	next.Touch()

	if err := l.store.UpdateBill(ctx, next); err != nil {
		return nil, err
	}

	return next, nil
}

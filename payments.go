package tally

import (
	"context"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// PaymentInput describes a payment to record against a bill.
type PaymentInput struct {
	Amount     types.Money
	Method     bill.Method
	ReceivedBy string
	Reference  string
	Notes      string
}

// ApplyPayment records a payment against an open bill as one atomic unit:
// the payment is appended, totals recomputed, and status re-derived, then
// the whole bill replaces the stored copy. Rejections (overpayment, wrong
// state, validation) leave the bill unchanged.
//
// Calls against the same bill serialize behind a per-bill lock; calls
// against different bills never block each other. The store's version
// check covers writers outside this process: on ErrConflict the caller
// retries the whole call.
func (l *Ledger) ApplyPayment(ctx context.Context, billID id.BillID, in PaymentInput) (*bill.Bill, error) {
	if !in.Amount.IsPositive() {
		err := ValidationError{Field: "amount", Message: "must be positive"}
		l.plugins.EmitPaymentRejected(ctx, billID.String(), err)
		return nil, err
	}
	if !in.Method.Valid() {
		l.plugins.EmitPaymentRejected(ctx, billID.String(), ErrInvalidMethod)
		return nil, ErrInvalidMethod
	}

	unlock := l.locks.acquire(billID.String())
	defer unlock()

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if !current.Status.IsOpen() {
		err := TransitionError{Action: "pay", From: current.Status}
		l.plugins.EmitPaymentRejected(ctx, billID.String(), err)
		return nil, err
	}
	if !in.Amount.SameCurrency(current.GrandTotal) {
		err := ValidationError{Field: "amount", Message: "currency mismatch"}
		l.plugins.EmitPaymentRejected(ctx, billID.String(), err)
		return nil, err
	}
	if in.Amount.GreaterThan(current.BalanceDue) {
		err := OverpaymentError{Amount: in.Amount, Balance: current.BalanceDue}
		l.plugins.EmitPaymentRejected(ctx, billID.String(), err)
		return nil, err
	}

	now := l.now()
	payment := bill.Payment{
		ID:         id.NewPaymentID(),
		BillID:     current.ID,
		Amount:     in.Amount,
		Method:     in.Method,
		PaidAt:     now,
		Reference:  in.Reference,
		ReceivedBy: in.ReceivedBy,
		Notes:      in.Notes,
	}

	next := current.Clone()

	if err := l.plugins.ValidatePayment(ctx, next, &payment); err != nil {
		l.plugins.EmitPaymentRejected(ctx, billID.String(), err)
		return nil, err
	}

	next.Payments = append(next.Payments, payment)
	bill.ComputeTotals(next)
	next.Status = bill.Derive(next, now)
	if next.Status == bill.StatusPaid && next.PaidAt == nil {
		next.PaidAt = &now
	}
	next.Touch()

	if err := l.store.UpdateBill(ctx, next); err != nil {
		return nil, err
	}

	l.plugins.EmitPaymentApplied(ctx, next, &payment)
	if next.Status == bill.StatusPaid {
		l.plugins.EmitBillPaid(ctx, next)
	}

	l.logger.Info("payment applied",
		"bill_id", next.ID.String(),
		"payment_id", payment.ID.String(),
		"amount", payment.Amount.String(),
		"method", string(payment.Method),
		"balance_due", next.BalanceDue.String(),
		"status", string(next.Status),
	)

	return next, nil
}

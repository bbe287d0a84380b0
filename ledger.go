package tally

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/types"
)

// BillNumberFunc generates the human-facing bill number at issue time.
// Numbers must be unique within a clinic; they are assigned once and
// never regenerated.
type BillNumberFunc func(b *bill.Bill, at time.Time) string

// Ledger is the main billing engine.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	locks   *billLocks

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	paymentTerms  time.Duration
	sweepInterval time.Duration
	billNumber    BillNumberFunc

	// Override in tests to pin the clock.
	now func() time.Time
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		locks:         newBillLocks(),
		stopChan:      make(chan struct{}),
		paymentTerms:  14 * 24 * time.Hour,
		sweepInterval: time.Hour,
		billNumber:    defaultBillNumber,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPaymentTerms sets the default gap between issue date and due date.
func WithPaymentTerms(terms time.Duration) Option {
	return func(l *Ledger) {
		l.paymentTerms = terms
	}
}

// WithOverdueSweepInterval sets how often the background sweep re-derives
// the status of past-due open bills.
func WithOverdueSweepInterval(interval time.Duration) Option {
	return func(l *Ledger) {
		l.sweepInterval = interval
	}
}

// WithBillNumberFunc replaces the default bill number generator.
func WithBillNumberFunc(fn BillNumberFunc) Option {
	return func(l *Ledger) {
		l.billNumber = fn
	}
}

// Plugins exposes the plugin registry, e.g. to look up a bill formatter.
func (l *Ledger) Plugins() *plugin.Registry {
	return l.plugins
}

// Start runs migrations, initializes plugins, and begins background workers.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.wg.Add(1)
	go l.overdueSweepWorker(ctx)

	l.logger.Info("tally started",
		"payment_terms", l.paymentTerms,
		"sweep_interval", l.sweepInterval,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Draft management
// ──────────────────────────────────────────────────

// CreateDraft validates and persists a new draft bill. IDs, timestamps,
// and derived totals are assigned here; the caller provides clinic,
// patient, line items, and optional discount and notes.
func (l *Ledger) CreateDraft(ctx context.Context, b *bill.Bill) (*bill.Bill, error) {
	if b == nil {
		return nil, ErrInvalidInput
	}

	draft := b.Clone()
	if draft.Currency == "" {
		draft.Currency = "idr"
	}
	draft.Currency = strings.ToLower(draft.Currency)

	if err := validateBill(draft); err != nil {
		return nil, err
	}

	draft.Entity = types.NewEntity()
	if draft.ID.IsNil() {
		draft.ID = id.NewBillID()
	}
	draft.Status = bill.StatusDraft
	draft.BillNumber = ""
	draft.Version = 1

	for i := range draft.LineItems {
		if draft.LineItems[i].ID.IsNil() {
			draft.LineItems[i].ID = id.NewLineItemID()
		}
		draft.LineItems[i].BillID = draft.ID
	}

	bill.ComputeTotals(draft)

	if err := l.store.CreateBill(ctx, draft); err != nil {
		return nil, err
	}

	l.plugins.EmitBillCreated(ctx, draft)
	l.logger.Debug("draft bill created",
		"bill_id", draft.ID.String(),
		"clinic_id", draft.ClinicID,
		"grand_total", draft.GrandTotal.String(),
	)

	return draft, nil
}

// UpdateDraft replaces the line items, discount, and notes of a draft.
// Only drafts are editable; issued bills change through lifecycle actions
// and payments.
func (l *Ledger) UpdateDraft(ctx context.Context, billID id.BillID, mutate func(*bill.Bill) error) (*bill.Bill, error) {
	if mutate == nil {
		return nil, ErrInvalidInput
	}

	unlock := l.locks.acquire(billID.String())
	defer unlock()

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if current.Status != bill.StatusDraft {
		return nil, TransitionError{Action: "edit", From: current.Status}
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	// Fields the mutator must not change.
	next.ID = current.ID
	next.ClinicID = current.ClinicID
	next.Status = bill.StatusDraft
	next.BillNumber = ""
	next.Payments = current.Payments
	next.Version = current.Version
	next.Entity = current.Entity

	for i := range next.LineItems {
		if next.LineItems[i].ID.IsNil() {
			next.LineItems[i].ID = id.NewLineItemID()
		}
		next.LineItems[i].BillID = next.ID
	}

	if err := validateBill(next); err != nil {
		return nil, err
	}

	bill.ComputeTotals(next)
	next.Touch()

	if err := l.store.UpdateBill(ctx, next); err != nil {
		return nil, err
	}

	return next, nil
}

// DraftFromCharges builds a draft from an external charge list, falling
// back to a default price for charges without one. Used by embedding
// applications to bill a visit from its treatment and prescription records.
func (l *Ledger) DraftFromCharges(ctx context.Context, clinicID, patientRef, currency string, charges []Charge, defaultPrice types.Money) (*bill.Bill, error) {
	items := make([]bill.LineItem, 0, len(charges))
	for _, c := range charges {
		price := c.UnitPrice
		if price.Amount == 0 && price.Currency == "" {
			price = defaultPrice
		}
		qty := c.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, bill.LineItem{
			Name:       c.Name,
			Quantity:   qty,
			UnitPrice:  price,
			TaxRate:    c.TaxRate,
			SourceType: c.SourceType,
			SourceRef:  c.SourceRef,
		})
	}

	return l.CreateDraft(ctx, &bill.Bill{
		ClinicID:   clinicID,
		PatientRef: patientRef,
		Currency:   currency,
		LineItems:  items,
	})
}

// Charge is one row of an external charge list, as produced by clinic
// systems for treatments, prescriptions, and lab orders.
type Charge struct {
	Name       string
	Quantity   int64
	UnitPrice  types.Money
	TaxRate    int64
	SourceType string
	SourceRef  string
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// GetBill retrieves a bill by ID.
func (l *Ledger) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return l.store.GetBill(ctx, billID)
}

// GetBillByNumber retrieves a bill by its clinic-scoped bill number.
func (l *Ledger) GetBillByNumber(ctx context.Context, clinicID, billNumber string) (*bill.Bill, error) {
	return l.store.GetBillByNumber(ctx, clinicID, billNumber)
}

// ListBills lists a clinic's bills, newest first.
func (l *Ledger) ListBills(ctx context.Context, clinicID string, opts bill.ListOpts) ([]*bill.Bill, error) {
	return l.store.ListBills(ctx, clinicID, opts)
}

// ──────────────────────────────────────────────────
// Overdue sweep
// ──────────────────────────────────────────────────

// overdueSweepWorker periodically re-derives the status of open bills so
// past-due ones surface as overdue without waiting for a payment attempt.
func (l *Ledger) overdueSweepWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.sweepOverdue(ctx)
		}
	}
}

// sweepOverdue marks issued bills past their due date as overdue.
func (l *Ledger) sweepOverdue(ctx context.Context) {
	now := l.now()

	bills, err := l.store.ListOpenBills(ctx)
	if err != nil {
		l.logger.Error("overdue sweep: listing open bills failed", "error", err)
		return
	}

	var flipped int
	for _, b := range bills {
		derived := bill.Derive(b, now)
		if derived == b.Status {
			continue
		}

		if err := l.transitionDerived(ctx, b.ID, now); err != nil {
			l.logger.Warn("overdue sweep: transition failed",
				"bill_id", b.ID.String(),
				"error", err,
			)
			continue
		}
		if derived == bill.StatusOverdue {
			flipped++
		}
	}

	if flipped > 0 {
		l.logger.Info("overdue sweep complete", "marked_overdue", flipped)
	}
}

// transitionDerived re-derives and persists one bill's status under its lock.
func (l *Ledger) transitionDerived(ctx context.Context, billID id.BillID, now time.Time) error {
	unlock := l.locks.acquire(billID.String())
	defer unlock()

	current, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}

	derived := bill.Derive(current, now)
	if derived == current.Status {
		return nil
	}

	next := current.Clone()
	next.Status = derived
	next.Touch()

	if err := l.store.UpdateBill(ctx, next); err != nil {
		return err
	}

	if derived == bill.StatusOverdue {
		l.plugins.EmitBillOverdue(ctx, next)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Validation
// ──────────────────────────────────────────────────

func validateBill(b *bill.Bill) error {
	if b.ClinicID == "" {
		return ValidationError{Field: "clinic_id", Message: "must not be empty"}
	}
	if b.PatientRef == "" {
		return ValidationError{Field: "patient_ref", Message: "must not be empty"}
	}
	if b.Currency == "" {
		return ValidationError{Field: "currency", Message: "must not be empty"}
	}
	if b.Discount.IsNegative() {
		return ValidationError{Field: "discount", Message: "must not be negative"}
	}
	if b.Discount.Currency != "" && b.Discount.Currency != b.Currency {
		return ValidationError{Field: "discount", Message: "currency mismatch"}
	}

	for i := range b.LineItems {
		if err := validateLineItem(&b.LineItems[i], i, b.Currency); err != nil {
			return err
		}
	}

	return nil
}

func validateLineItem(li *bill.LineItem, idx int, currency string) error {
	field := func(name string) string {
		return fmt.Sprintf("line_items[%d].%s", idx, name)
	}

	if li.Name == "" {
		return ValidationError{Field: field("name"), Message: "must not be empty"}
	}
	if li.Quantity <= 0 {
		return ValidationError{Field: field("quantity"), Message: "must be positive"}
	}
	if li.UnitPrice.IsNegative() {
		return ValidationError{Field: field("unit_price"), Message: "must not be negative"}
	}
	if li.UnitPrice.Currency != "" && li.UnitPrice.Currency != currency {
		return ValidationError{Field: field("unit_price"), Message: "currency mismatch"}
	}
	if li.Discount.IsNegative() {
		return ValidationError{Field: field("discount"), Message: "must not be negative"}
	}
	if li.Discount.Currency != "" && li.Discount.Currency != currency {
		return ValidationError{Field: field("discount"), Message: "currency mismatch"}
	}
	if li.Discount.Amount > li.UnitPrice.Amount*li.Quantity {
		return ValidationError{Field: field("discount"), Message: "exceeds line amount"}
	}
	if li.TaxRate < 0 || li.TaxRate > 100 {
		return ValidationError{Field: field("tax_rate"), Message: "must be between 0 and 100"}
	}

	return nil
}

// defaultBillNumber derives a bill number from the issue date and a fresh
// TypeID suffix, e.g. "B-20260314-8KQZ2M".
func defaultBillNumber(_ *bill.Bill, at time.Time) string {
	s := id.NewBillID().String()
	suffix := strings.ToUpper(s[len(s)-6:])
	return fmt.Sprintf("B-%s-%s", at.Format("20060102"), suffix)
}

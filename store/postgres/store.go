package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	tally "github.com/xraph/tally"
	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	tallystore "github.com/xraph/tally/store"
)

// compile-time interface check
var _ tallystore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tally/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tally/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	existing := new(billModel)
	err := s.pg.NewSelect(existing).
		Where("id = ?", b.ID.String()).
		Scan(ctx)
	if err == nil {
		return tally.ErrAlreadyExists
	}
	if !isNoRows(err) {
		return err
	}

	m := toBillModel(b)
	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	m := new(billModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", billID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrBillNotFound
		}
		return nil, err
	}
	return fromBillModel(m)
}

func (s *Store) GetBillByNumber(ctx context.Context, clinicID, billNumber string) (*bill.Bill, error) {
	if billNumber == "" {
		return nil, tally.ErrBillNotFound
	}
	m := new(billModel)
	err := s.pg.NewSelect(m).
		Where("clinic_id = ?", clinicID).
		Where("bill_number = ?", billNumber).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrBillNotFound
		}
		return nil, err
	}
	return fromBillModel(m)
}

func (s *Store) ListBills(ctx context.Context, clinicID string, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel
	q := s.pg.NewSelect(&models).Where("clinic_id = ?", clinicID)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.PatientRef != "" {
		q = q.Where("patient_ref = ?", opts.PatientRef)
	}
	if !opts.Start.IsZero() {
		q = q.Where("COALESCE(issue_date, created_at) >= ?", opts.Start)
	}
	if !opts.End.IsZero() {
		q = q.Where("COALESCE(issue_date, created_at) <= ?", opts.End)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) ListOpenBills(ctx context.Context) ([]*bill.Bill, error) {
	var models []billModel
	err := s.pg.NewSelect(&models).
		Where("status IN (?, ?, ?)",
			string(bill.StatusIssued),
			string(bill.StatusPartial),
			string(bill.StatusOverdue)).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

// UpdateBill replaces the stored aggregate. The update carries an optimistic
// version guard: it only lands when the row still holds the caller's Version,
// and the stored version advances by one.
func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	if b.BillNumber != "" {
		taken, err := s.billNumberTaken(ctx, b.ClinicID, b.BillNumber, b.ID.String())
		if err != nil {
			return err
		}
		if taken {
			return tally.ErrBillNumberTaken
		}
	}

	m := toBillModel(b)
	m.Version = b.Version + 1
	m.UpdatedAt = now()

	res, err := s.pg.NewUpdate(m).
		WherePK().
		Where("version = ?", b.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Zero rows means the bill is gone or someone else updated it first.
		if _, err := s.GetBill(ctx, b.ID); err != nil {
			return err
		}
		return tally.ErrConflict
	}

	b.Version = m.Version
	b.UpdatedAt = m.UpdatedAt
	return nil
}

// billNumberTaken reports whether another bill in the clinic already holds
// the number.
func (s *Store) billNumberTaken(ctx context.Context, clinicID, billNumber, excludeID string) (bool, error) {
	var count int64
	err := s.pg.NewRaw(`
		SELECT COUNT(*) FROM tally_bills
		WHERE clinic_id = ? AND bill_number = ? AND id != ?
	`, clinicID, billNumber, excludeID).Scan(ctx, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

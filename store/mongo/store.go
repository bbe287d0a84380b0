package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	tally "github.com/xraph/tally"
	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	tallystore "github.com/xraph/tally/store"
)

// Collection name constants.
const (
	colBills = "tally_bills"
)

// compile-time interface check
var _ tallystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all tally collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tally/mongo: migrate %s indexes: %w", col, err)
		}
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
	var existing billModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"_id": b.ID.String()}).
		Scan(ctx)
	if err == nil {
		return tally.ErrAlreadyExists
	}
	if !isNoDocuments(err) {
		return fmt.Errorf("tally/mongo: create bill: %w", err)
	}

	m := toBillModel(b)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tally/mongo: create bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": billID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrBillNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get bill: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) GetBillByNumber(ctx context.Context, clinicID, billNumber string) (*bill.Bill, error) {
	if billNumber == "" {
		return nil, tally.ErrBillNotFound
	}
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"clinic_id": clinicID, "bill_number": billNumber}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrBillNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get bill by number: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) ListBills(ctx context.Context, clinicID string, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel

	filter := bson.M{"clinic_id": clinicID}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if opts.PatientRef != "" {
		filter["patient_ref"] = opts.PatientRef
	}
	if !opts.Start.IsZero() || !opts.End.IsZero() {
		// Issued bills filter on issue_date, drafts fall back to created_at.
		rangeFilter := func(field string) bson.M {
			r := bson.M{}
			if !opts.Start.IsZero() {
				r["$gte"] = opts.Start
			}
			if !opts.End.IsZero() {
				r["$lte"] = opts.End
			}
			return bson.M{field: r}
		}
		filter["$or"] = []bson.M{
			{"issue_date": bson.M{"$ne": nil}, "$and": []bson.M{rangeFilter("issue_date")}},
			{"issue_date": nil, "$and": []bson.M{rangeFilter("created_at")}},
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tally/mongo: list bills: %w", err)
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
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"status": bson.M{"$in": []string{
			string(bill.StatusIssued),
			string(bill.StatusPartial),
			string(bill.StatusOverdue),
		}}}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally/mongo: list open bills: %w", err)
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

// UpdateBill replaces the stored aggregate. The filter carries an optimistic
// version guard: the update only matches when the document still holds the
// caller's Version, and the stored version advances by one.
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "version": b.Version}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: update bill: %w", err)
	}
	if res.MatchedCount() == 0 {
		// No match means the bill is gone or someone else updated it first.
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
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"clinic_id":   clinicID,
			"bill_number": billNumber,
			"_id":         bson.M{"$ne": excludeID},
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("tally/mongo: check bill number: %w", err)
	}
	return true, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tally collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colBills: {
			{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "patient_ref", Value: 1}}},
			{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "issue_date", Value: 1}}},
			{
				Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "bill_number", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"bill_number": bson.M{"$gt": ""}}),
			},
		},
	}
}

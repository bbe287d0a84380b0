// Package memory provides an in-memory Store for tests and embedded use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
)

// Store keeps all bills in a map guarded by a single RWMutex. Every read
// and write deep-copies, so callers never share memory with the store and
// a racing read observes a bill either before or after an update, never
// mid-mutation.
type Store struct {
	mu    sync.RWMutex
	bills map[string]*bill.Bill
}

func New() *Store {
	return &Store{
		bills: make(map[string]*bill.Bill),
	}
}

func (s *Store) CreateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[b.ID.String()]; exists {
		return tally.ErrAlreadyExists
	}
	s.bills[b.ID.String()] = b.Clone()
	return nil
}

func (s *Store) GetBill(_ context.Context, billID id.BillID) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.bills[billID.String()]; ok {
		return b.Clone(), nil
	}
	return nil, tally.ErrBillNotFound
}

func (s *Store) GetBillByNumber(_ context.Context, clinicID, billNumber string) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if billNumber == "" {
		return nil, tally.ErrBillNotFound
	}
	for _, b := range s.bills {
		if b.ClinicID == clinicID && b.BillNumber == billNumber {
			return b.Clone(), nil
		}
	}
	return nil, tally.ErrBillNotFound
}

func (s *Store) ListBills(_ context.Context, clinicID string, opts bill.ListOpts) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if b.ClinicID != clinicID {
			continue
		}
		if opts.Status != "" && b.Status != opts.Status {
			continue
		}
		if opts.PatientRef != "" && b.PatientRef != opts.PatientRef {
			continue
		}
		at := effectiveDate(b)
		if !opts.Start.IsZero() && at.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && at.After(opts.End) {
			continue
		}
		result = append(result, b.Clone())
	}

	// Newest first.
	sort.Slice(result, func(i, j int) bool {
		return effectiveDate(result[i]).After(effectiveDate(result[j]))
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) ListOpenBills(_ context.Context) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if b.Status.IsOpen() {
			result = append(result, b.Clone())
		}
	}
	return result, nil
}

func (s *Store) UpdateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.bills[b.ID.String()]
	if !exists {
		return tally.ErrBillNotFound
	}
	if current.Version != b.Version {
		return tally.ErrConflict
	}
	if b.BillNumber != "" {
		for _, other := range s.bills {
			if other.ID != b.ID && other.ClinicID == b.ClinicID && other.BillNumber == b.BillNumber {
				return tally.ErrBillNumberTaken
			}
		}
	}

	b.Version++
	s.bills[b.ID.String()] = b.Clone()
	return nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

func effectiveDate(b *bill.Bill) time.Time {
	if b.IssueDate != nil && !b.IssueDate.IsZero() {
		return *b.IssueDate
	}
	return b.CreatedAt
}

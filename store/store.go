// Package store defines the unified storage interface implemented by the
// memory, sqlite, postgres, and mongo backends.
package store

import (
	"context"

	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
)

// Store is the unified storage interface for all Tally entities.
//
// Bills persist as whole aggregates: line items and payments travel with
// their bill, and UpdateBill replaces the stored record atomically.
// UpdateBill enforces optimistic concurrency: it succeeds only when the
// incoming bill's Version matches the stored one, advances both to
// Version+1, and reports a conflict otherwise so the caller can re-fetch
// and retry.
type Store interface {
	// Bill methods
	CreateBill(ctx context.Context, b *bill.Bill) error
	GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error)
	GetBillByNumber(ctx context.Context, clinicID, billNumber string) (*bill.Bill, error)
	ListBills(ctx context.Context, clinicID string, opts bill.ListOpts) ([]*bill.Bill, error)
	ListOpenBills(ctx context.Context) ([]*bill.Bill, error)
	UpdateBill(ctx context.Context, b *bill.Bill) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

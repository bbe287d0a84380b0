package bill

import (
	"context"
	"time"

	"github.com/xraph/tally/id"
)

// Store is the persistence contract for bills. Update must replace the
// whole aggregate atomically and enforce the optimistic Version check.
type Store interface {
	Create(ctx context.Context, b *Bill) error
	Get(ctx context.Context, billID id.BillID) (*Bill, error)
	GetByNumber(ctx context.Context, clinicID, billNumber string) (*Bill, error)
	List(ctx context.Context, clinicID string, opts ListOpts) ([]*Bill, error)
	Update(ctx context.Context, b *Bill) error
}

// ListOpts filters and pages a bill listing. Zero values mean "no filter".
type ListOpts struct {
	Status     Status
	PatientRef string
	Start      time.Time
	End        time.Time
	Limit      int
	Offset     int
}

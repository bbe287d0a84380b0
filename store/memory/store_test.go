package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

func newBill(clinic, patient string) *bill.Bill {
	b := &bill.Bill{
		Entity:     types.NewEntity(),
		ID:         id.NewBillID(),
		ClinicID:   clinic,
		PatientRef: patient,
		Status:     bill.StatusDraft,
		Currency:   "idr",
		LineItems: []bill.LineItem{
			{ID: id.NewLineItemID(), Name: "Consultation", Quantity: 1, UnitPrice: types.IDR(150000)},
		},
		Version: 1,
	}
	bill.ComputeTotals(b)
	return b
}

func TestCreateAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	b := newBill("clinic_1", "patient_1")
	if err := s.CreateBill(ctx, b); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("got bill %s, want %s", got.ID, b.ID)
	}

	// Duplicate creation is rejected.
	if err := s.CreateBill(ctx, b); !errors.Is(err, tally.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Unknown bills surface ErrBillNotFound.
	if _, err := s.GetBill(ctx, id.NewBillID()); !errors.Is(err, tally.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
}

func TestDeepCopyIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	b := newBill("clinic_1", "patient_1")
	if err := s.CreateBill(ctx, b); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	// Mutating the caller's copy after Create must not leak into the store.
	b.LineItems[0].Name = "changed"
	b.PatientRef = "someone else"

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if got.LineItems[0].Name != "Consultation" {
		t.Error("store shares line item memory with caller")
	}
	if got.PatientRef != "patient_1" {
		t.Error("store shares bill memory with caller")
	}

	// Mutating a read result must not leak either.
	got.Status = bill.StatusPaid
	again, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if again.Status != bill.StatusDraft {
		t.Error("store shares memory with read results")
	}
}

func TestUpdateVersionCheck(t *testing.T) {
	s := New()
	ctx := context.Background()

	b := newBill("clinic_1", "patient_1")
	if err := s.CreateBill(ctx, b); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	fresh, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	fresh.Notes = "first writer"
	if err := s.UpdateBill(ctx, fresh); err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}
	if fresh.Version != 2 {
		t.Errorf("version = %d, want 2", fresh.Version)
	}

	// A writer still holding the old version loses.
	stale := b.Clone()
	stale.Notes = "second writer"
	if err := s.UpdateBill(ctx, stale); !errors.Is(err, tally.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// After re-fetching, the retry goes through.
	retry, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	retry.Notes = "second writer retry"
	if err := s.UpdateBill(ctx, retry); err != nil {
		t.Fatalf("retry UpdateBill: %v", err)
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if got.Notes != "second writer retry" || got.Version != 3 {
		t.Errorf("got notes %q version %d, want retry applied at version 3", got.Notes, got.Version)
	}
}

func TestUpdateMissingBill(t *testing.T) {
	s := New()
	ctx := context.Background()

	b := newBill("clinic_1", "patient_1")
	if err := s.UpdateBill(ctx, b); !errors.Is(err, tally.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
}

func TestBillNumberUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := newBill("clinic_1", "patient_1")
	first.BillNumber = "B-20260314-AAAAAA"
	first.Status = bill.StatusIssued
	if err := s.CreateBill(ctx, first); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	second := newBill("clinic_1", "patient_2")
	if err := s.CreateBill(ctx, second); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	second.BillNumber = "B-20260314-AAAAAA"
	if err := s.UpdateBill(ctx, second); !errors.Is(err, tally.ErrBillNumberTaken) {
		t.Fatalf("expected ErrBillNumberTaken, got %v", err)
	}

	// The same number in another clinic is fine.
	other := newBill("clinic_2", "patient_1")
	if err := s.CreateBill(ctx, other); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	other.BillNumber = "B-20260314-AAAAAA"
	if err := s.UpdateBill(ctx, other); err != nil {
		t.Fatalf("UpdateBill in other clinic: %v", err)
	}

	got, err := s.GetBillByNumber(ctx, "clinic_1", "B-20260314-AAAAAA")
	if err != nil {
		t.Fatalf("GetBillByNumber: %v", err)
	}
	if got.ID != first.ID {
		t.Error("lookup returned bill from wrong clinic")
	}

	// Empty numbers never match: drafts are not reachable by number.
	if _, err := s.GetBillByNumber(ctx, "clinic_1", ""); !errors.Is(err, tally.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound for empty number, got %v", err)
	}
}

func TestListBills(t *testing.T) {
	s := New()
	ctx := context.Background()

	mar := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		b := newBill("clinic_1", "patient_1")
		at := mar.AddDate(0, 0, i)
		b.IssueDate = &at
		b.Status = bill.StatusIssued
		if err := s.CreateBill(ctx, b); err != nil {
			t.Fatalf("CreateBill: %v", err)
		}
	}
	paid := newBill("clinic_1", "patient_2")
	paid.Status = bill.StatusPaid
	if err := s.CreateBill(ctx, paid); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	foreign := newBill("clinic_2", "patient_1")
	if err := s.CreateBill(ctx, foreign); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	all, err := s.ListBills(ctx, "clinic_1", bill.ListOpts{})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all bills = %d, want 4", len(all))
	}

	issued, err := s.ListBills(ctx, "clinic_1", bill.ListOpts{Status: bill.StatusIssued})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(issued) != 3 {
		t.Errorf("issued bills = %d, want 3", len(issued))
	}
	// Newest first by issue date.
	for i := 1; i < len(issued); i++ {
		if issued[i].IssueDate.After(*issued[i-1].IssueDate) {
			t.Error("expected newest-first ordering")
		}
	}

	byPatient, err := s.ListBills(ctx, "clinic_1", bill.ListOpts{PatientRef: "patient_2"})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(byPatient) != 1 {
		t.Errorf("patient_2 bills = %d, want 1", len(byPatient))
	}

	ranged, err := s.ListBills(ctx, "clinic_1", bill.ListOpts{
		Status: bill.StatusIssued,
		Start:  mar.AddDate(0, 0, 1),
		End:    mar.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(ranged) != 1 {
		t.Errorf("ranged bills = %d, want 1", len(ranged))
	}

	paged, err := s.ListBills(ctx, "clinic_1", bill.ListOpts{Status: bill.StatusIssued, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(paged) != 1 {
		t.Errorf("paged bills = %d, want 1", len(paged))
	}
}

func TestListOpenBills(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, st := range []bill.Status{
		bill.StatusDraft,
		bill.StatusIssued,
		bill.StatusPartial,
		bill.StatusOverdue,
		bill.StatusPaid,
		bill.StatusVoided,
	} {
		b := newBill("clinic_1", "patient_1")
		b.Status = st
		if err := s.CreateBill(ctx, b); err != nil {
			t.Fatalf("CreateBill: %v", err)
		}
	}

	open, err := s.ListOpenBills(ctx)
	if err != nil {
		t.Fatalf("ListOpenBills: %v", err)
	}
	if len(open) != 3 {
		t.Errorf("open bills = %d, want 3 (issued, partial, overdue)", len(open))
	}
	for _, b := range open {
		if !b.Status.IsOpen() {
			t.Errorf("bill %s has non-open status %s", b.ID, b.Status)
		}
	}
}

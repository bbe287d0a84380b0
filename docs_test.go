package tally_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/bill"
	"github.com/xraph/tally/revenue"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from the package docs
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize the engine
		eng := tally.New(store,
			tally.WithLogger(slog.Default()),
			tally.WithPaymentTerms(14*24*time.Hour),
			tally.WithOverdueSweepInterval(time.Hour),
		)

		// Start the engine
		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		// Create a draft bill for a patient visit
		b, err := eng.CreateDraft(ctx, &bill.Bill{
			ClinicID:   "clinic-jakarta-1",
			PatientRef: "patient-4711",
			Currency:   "idr",
			LineItems: []bill.LineItem{
				{Name: "Consultation", Quantity: 1, UnitPrice: tally.IDR(150000), TaxRate: 11},
			},
		})
		if err != nil {
			t.Fatal(err)
		}

		// Issue it: assigns the bill number and due date
		b, err = eng.IssueBill(ctx, b.ID)
		if err != nil {
			t.Fatal(err)
		}

		// Settle it with a cash payment
		b, err = eng.ApplyPayment(ctx, b.ID, tally.PaymentInput{
			Amount:     tally.IDR(166500),
			Method:     bill.MethodCash,
			ReceivedBy: "front-desk",
		})
		if err != nil {
			t.Fatal(err)
		}
		if b.Status != bill.StatusPaid {
			t.Fatalf("status = %s, want paid", b.Status)
		}

		// Fold the month's bills into dashboard numbers
		report, err := eng.RevenueReport(ctx, "clinic-jakarta-1", revenue.PeriodMonth)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Monthly revenue: %s over %d bills\n", report.Total.String(), report.BillCount)
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = tally.IDR(150000) // Rp150000
		_ = tally.USD(4900)   // $49.00
		_ = tally.Zero("idr") // Rp0

		// Arithmetic
		m1 := types.IDR(100)
		m2 := types.IDR(200)
		_ = m1.Add(m2)      // Rp300
		_ = m1.Multiply(3)  // Rp300
		_ = m1.Percent(10)  // Rp10, rounded half-up

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()      // "Rp100"
		_ = m1.FormatMajor() // "100"
	})
}

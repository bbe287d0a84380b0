// Package tally provides a composable clinic billing ledger for Go applications.
//
// Tally is designed as a library, not a service. Import it directly into your
// clinic-management application for maximum performance and flexibility. It
// provides:
//
//   - Integer-only monetary arithmetic with a single rounding rule
//   - Draft/issue/payment bill lifecycle with derived statuses
//   - Per-bill serialized payment processing with optimistic versioning
//   - Pure revenue aggregation for dashboards (period, method, daily series)
//   - Pluggable lifecycle hooks (audit, metrics, custom payment validation)
//   - Storage backends for memory, SQLite, Postgres, and MongoDB
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/tally"
//	    "github.com/xraph/tally/store/postgres"
//	)
//
//	// Initialize store (db is a *grove.DB opened with the pg driver)
//	store := postgres.New(db)
//
//	// Create the engine
//	t := tally.New(store)
//
//	// Start it (runs migrations and the overdue sweep worker)
//	if err := t.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Stop()
//
// # Core Concepts
//
// Bills collect line items for a patient visit:
//
//	b, err := t.CreateDraft(ctx, &bill.Bill{
//	    ClinicID:   "clinic-jakarta-1",
//	    PatientRef: "patient-4711",
//	    Currency:   "idr",
//	    LineItems: []bill.LineItem{
//	        {Name: "Consultation", Quantity: 1, UnitPrice: tally.IDR(150000), TaxRate: 11},
//	    },
//	})
//
// Issuing assigns a bill number and due date and opens the bill for payment:
//
//	b, err = t.IssueBill(ctx, b.ID)
//
// Payments settle the balance, moving the bill through partial to paid:
//
//	b, err = t.ApplyPayment(ctx, b.ID, tally.PaymentInput{
//	    Amount:     tally.IDR(166500),
//	    Method:     bill.MethodCash,
//	    ReceivedBy: "front-desk",
//	})
//
// Revenue reports fold the stored bills into dashboard numbers:
//
//	report, err := t.RevenueReport(ctx, "clinic-jakarta-1", revenue.PeriodMonth)
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest currency
// unit (rupiah for IDR, cents for USD). Percentages round half-up, and that
// one rule governs every tax and discount in the system.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	bill_01h2xcejqtf2nbrexx3vqjhp41  // Bill ID
//	li_01h2xcejqtf2nbrexx3vqjhp41    // Line item ID
//	pay_01h455vb4pex5vsknk084sn02q   // Payment ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package tally

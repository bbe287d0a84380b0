package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Tally store (SQLite).
var Migrations = migrate.NewGroup("tally")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_tally_bills",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_bills (
    id                          TEXT PRIMARY KEY,
    clinic_id                   TEXT NOT NULL DEFAULT '',
    bill_number                 TEXT NOT NULL DEFAULT '',
    patient_ref                 TEXT NOT NULL DEFAULT '',
    doctor_ref                  TEXT NOT NULL DEFAULT '',
    status                      TEXT NOT NULL DEFAULT 'draft',
    currency                    TEXT NOT NULL DEFAULT '',
    line_items                  TEXT NOT NULL DEFAULT '[]',
    payments                    TEXT NOT NULL DEFAULT '[]',
    discount_amount_cents       INTEGER NOT NULL DEFAULT 0,
    discount_currency           TEXT NOT NULL DEFAULT '',
    subtotal_amount_cents       INTEGER NOT NULL DEFAULT 0,
    subtotal_currency           TEXT NOT NULL DEFAULT '',
    total_discount_amount_cents INTEGER NOT NULL DEFAULT 0,
    total_discount_currency     TEXT NOT NULL DEFAULT '',
    total_tax_amount_cents      INTEGER NOT NULL DEFAULT 0,
    total_tax_currency          TEXT NOT NULL DEFAULT '',
    grand_total_amount_cents    INTEGER NOT NULL DEFAULT 0,
    grand_total_currency        TEXT NOT NULL DEFAULT '',
    amount_paid_amount_cents    INTEGER NOT NULL DEFAULT 0,
    amount_paid_currency        TEXT NOT NULL DEFAULT '',
    balance_due_amount_cents    INTEGER NOT NULL DEFAULT 0,
    balance_due_currency        TEXT NOT NULL DEFAULT '',
    issue_date                  TEXT,
    due_date                    TEXT,
    paid_at                     TEXT,
    voided_at                   TEXT,
    void_reason                 TEXT NOT NULL DEFAULT '',
    written_off_at              TEXT,
    write_off_reason            TEXT NOT NULL DEFAULT '',
    cancelled_at                TEXT,
    cancel_reason               TEXT NOT NULL DEFAULT '',
    notes                       TEXT NOT NULL DEFAULT '',
    version                     INTEGER NOT NULL DEFAULT 1,
    metadata                    TEXT NOT NULL DEFAULT '{}',
    created_at                  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at                  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tally_bills_clinic ON tally_bills (clinic_id);
CREATE INDEX IF NOT EXISTS idx_tally_bills_status ON tally_bills (clinic_id, status);
CREATE INDEX IF NOT EXISTS idx_tally_bills_patient ON tally_bills (clinic_id, patient_ref);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tally_bills_number ON tally_bills (clinic_id, bill_number) WHERE bill_number != '';
CREATE INDEX IF NOT EXISTS idx_tally_bills_issue_date ON tally_bills (clinic_id, issue_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_bills`)
				return err
			},
		},
	)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS invoices (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					fingerprint TEXT NOT NULL,
					invoice_number TEXT,
					vendor_name TEXT NOT NULL,
					vendor_tax_id TEXT,
					vendor_phone TEXT,
					vendor_address TEXT,
					amount TEXT NOT NULL,
					subtotal TEXT,
					tax_amount TEXT,
					tax_rate TEXT,
					currency TEXT NOT NULL,
					invoice_date DATETIME NOT NULL,
					date_extracted INTEGER NOT NULL DEFAULT 0,
					due_date DATETIME,
					category TEXT NOT NULL,
					description TEXT,
					line_items TEXT,
					findings TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					needs_review INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'unpaid',
					payment_date DATETIME,
					raw_text TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(owner_id, fingerprint)
				)`,
				`CREATE INDEX idx_invoices_owner ON invoices(owner_id)`,
				`CREATE INDEX idx_invoices_status ON invoices(owner_id, status)`,
				`CREATE INDEX idx_invoices_category ON invoices(owner_id, category)`,

				`CREATE TABLE IF NOT EXISTS bank_transactions (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					reconciled INTEGER NOT NULL DEFAULT 0,
					matched_invoice_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (matched_invoice_id) REFERENCES invoices(id)
				)`,
				`CREATE INDEX idx_bank_transactions_owner ON bank_transactions(owner_id, reconciled)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index fingerprints for duplicate lookups",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_invoices_fingerprint ON invoices(owner_id, fingerprint)`)
			return err
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

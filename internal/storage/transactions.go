package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/model"
)

// SaveTransactions saves imported bank transactions. Rows whose ID is
// already present are skipped so re-importing a statement is safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.BankTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBankTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO bank_transactions (
			id, owner_id, date, description, amount, reconciled, matched_invoice_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		var matchedID any
		if txn.MatchedInvoiceID != "" {
			matchedID = txn.MatchedInvoiceID
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.OwnerID,
			txn.Date,
			txn.Description,
			txn.Amount.String(),
			txn.Reconciled,
			matchedID,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetUnreconciledTransactions retrieves an owner's bank transactions
// that have not been matched to an invoice, oldest first.
func (s *SQLiteStorage) GetUnreconciledTransactions(ctx context.Context, ownerID string) ([]model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, date, description, amount, reconciled, matched_invoice_id, created_at
		FROM bank_transactions
		WHERE owner_id = ? AND reconciled = 0
		ORDER BY date ASC, created_at ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.BankTransaction
	for rows.Next() {
		var txn model.BankTransaction
		var amount string
		var matchedID sql.NullString
		if err := rows.Scan(
			&txn.ID,
			&txn.OwnerID,
			&txn.Date,
			&txn.Description,
			&amount,
			&txn.Reconciled,
			&matchedID,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.MatchedInvoiceID = matchedID.String
		if txn.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("%w: bad amount %q: %v", common.ErrDatabaseCorrupted, amount, err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// MarkReconciled records a settled match: the invoice becomes paid and
// the transaction is linked to it. Both updates commit atomically.
func (s *SQLiteStorage) MarkReconciled(ctx context.Context, invoiceID, transactionID string, paymentDate time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(invoiceID, "invoiceID"); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		"UPDATE invoices SET status = ?, payment_date = ? WHERE id = ?",
		string(model.StatusPaid), paymentDate, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if err := requireRowAffected(result, invoiceID); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx,
		"UPDATE bank_transactions SET reconciled = 1, matched_invoice_id = ? WHERE id = ?",
		invoiceID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction reconciled: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, transactionID)
	}

	return tx.Commit()
}

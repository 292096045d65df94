// Package storage provides the data persistence layer for the save2 application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aj2nd/Save2/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidInvoice = errors.New("invalid invoice")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateInvoice validates a single invoice before persistence.
func validateInvoice(invoice *model.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if invoice.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidInvoice)
	}
	if invoice.OwnerID == "" {
		return fmt.Errorf("%w: missing owner ID", ErrInvalidInvoice)
	}
	if invoice.Fingerprint == "" {
		return fmt.Errorf("%w: missing fingerprint", ErrInvalidInvoice)
	}
	if invoice.VendorName == "" {
		return fmt.Errorf("%w: missing vendor name", ErrInvalidInvoice)
	}
	return nil
}

// validateBankTransactions validates a slice of bank transactions.
func validateBankTransactions(transactions []model.BankTransaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i, txn := range transactions {
		if txn.ID == "" {
			return fmt.Errorf("transaction at index %d: missing ID", i)
		}
		if txn.OwnerID == "" {
			return fmt.Errorf("transaction at index %d: missing owner ID", i)
		}
	}
	return nil
}

// Package statement parses bank-statement payloads into normalized
// transaction rows for reconciliation.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/extract"
	"github.com/aj2nd/Save2/internal/model"
)

// CSVIngestor parses delimited statement text with columns
// date, description, amount. The header row is discarded.
type CSVIngestor struct {
	now       func() time.Time
	yearFloor int
}

// CSVOption configures a CSVIngestor.
type CSVOption func(*CSVIngestor)

// WithYearFloor sets the earliest year accepted for a row date.
func WithYearFloor(year int) CSVOption {
	return func(i *CSVIngestor) { i.yearFloor = year }
}

// NewCSVIngestor creates a CSVIngestor.
func NewCSVIngestor(opts ...CSVOption) *CSVIngestor {
	i := &CSVIngestor{
		yearFloor: extract.DefaultYearFloor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Parse reads the payload and returns one BankTransaction per valid
// row. Ingestion is best-effort: a malformed row is logged and dropped,
// never aborting the batch. A payload with no parseable rows at all is
// the caller's error and returns ErrMalformedInput.
func (i *CSVIngestor) Parse(ownerID string, r io.Reader) ([]model.BankTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var transactions []model.BankTransaction
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			slog.Warn("Skipping unreadable statement row", "row", row, "error", err)
			continue
		}
		if row == 1 {
			// Header row.
			continue
		}

		txn, err := i.parseRow(ownerID, record)
		if err != nil {
			slog.Warn("Skipping malformed statement row", "row", row, "error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w: statement payload has no parseable rows", common.ErrMalformedInput)
	}
	return transactions, nil
}

func (i *CSVIngestor) parseRow(ownerID string, record []string) (model.BankTransaction, error) {
	if len(record) < 3 {
		return model.BankTransaction{}, fmt.Errorf("expected 3 columns, got %d", len(record))
	}

	date, ok := extract.ParseDate(record[0], i.yearFloor)
	if !ok {
		return model.BankTransaction{}, fmt.Errorf("unparseable date %q", record[0])
	}

	description := strings.TrimSpace(record[1])
	if description == "" {
		return model.BankTransaction{}, fmt.Errorf("empty description")
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(record[2]), ",", ""))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("unparseable amount %q", record[2])
	}

	return model.BankTransaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Date:        date,
		Description: description,
		Amount:      amount,
		CreatedAt:   i.now(),
	}, nil
}

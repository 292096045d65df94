package statement

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aj2nd/Save2/internal/model"
)

// OFXIngestor parses OFX/QFX statement exports into the same rows the
// CSV ingestor produces. Banks that offer downloads at all usually
// offer this format.
type OFXIngestor struct {
	now func() time.Time
}

// NewOFXIngestor creates an OFXIngestor.
func NewOFXIngestor() *OFXIngestor {
	return &OFXIngestor{now: time.Now}
}

var severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)

// tagFixRegex matches SGML-style opening tags missing their closing
// angle bracket, a common defect in bank exports.
var tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)

// preprocess fixes common formatting issues before handing the payload
// to the OFX parser.
func (i *OFXIngestor) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

// Parse reads an OFX payload and returns one BankTransaction per
// statement entry. A statement block that fails to convert is logged
// and skipped; the batch continues.
func (i *OFXIngestor) Parse(ownerID string, r io.Reader) ([]model.BankTransaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX payload: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(i.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX payload: %w", err)
	}

	var transactions []model.BankTransaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, ofxTx := range stmt.BankTranList.Transactions {
			txn, err := i.convert(ownerID, ofxTx)
			if err != nil {
				slog.Warn("Skipping OFX transaction",
					"account", stmt.BankAcctFrom.AcctID,
					"error", err)
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	slog.Info("Parsed OFX statement", "transactions", len(transactions))
	return transactions, nil
}

func (i *OFXIngestor) convert(ownerID string, ofxTx ofxgo.Transaction) (model.BankTransaction, error) {
	description := strings.TrimSpace(string(ofxTx.Name))
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		description = strings.TrimSpace(string(ofxTx.Payee.Name))
	}
	if description == "" {
		description = strings.TrimSpace(string(ofxTx.Memo))
	}
	if description == "" {
		return model.BankTransaction{}, fmt.Errorf("transaction %s has no description", ofxTx.FiTID)
	}

	// OFX amounts are exact rationals; keep them exact.
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	return model.BankTransaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Date:        ofxTx.DtPosted.Time,
		Description: description,
		Amount:      amount,
		CreatedAt:   i.now(),
	}, nil
}

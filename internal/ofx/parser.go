// Package ofx parses OFX/QFX downloads into raw transactions. Banks that
// offer OFX export skip the whole PDF pipeline: the data is structured, so
// no OCR, no reconciliation repair, and full parse confidence.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// ofxConfidence is the parse confidence for structured OFX data.
const ofxConfidence = 95

// SourcePattern marks transactions that came from an OFX download.
const SourcePattern = "ofx"

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files:
	// an opening tag alone on its line with no > and no content.
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns raw transactions with
// bank-signed amounts: positive deposits, negative withdrawals.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.RawTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.RawTransaction
	var statements int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convertTransaction(ofxTx))
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convertTransaction(ofxTx))
		}
	}

	slog.Info("Parsed OFX file",
		"transactions", len(transactions),
		"statements", statements)

	return transactions, nil
}

// convertTransaction maps one OFX transaction onto the raw model. OFX
// already signs amounts the way the pipeline expects, so the sign passes
// through untouched.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) model.RawTransaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	txn := model.RawTransaction{
		Date:          ofxTx.DtPosted.Time,
		Description:   p.extractDescription(ofxTx),
		CheckNumber:   strings.TrimSpace(string(ofxTx.CheckNum)),
		Amount:        amount,
		SourcePattern: SourcePattern,
		Confidence:    ofxConfidence,
	}
	if txn.CheckNumber != "" && txn.Description == "" {
		txn.Description = "CHECK #" + txn.CheckNumber
	}
	return txn
}

// extractDescription picks the most informative of PAYEE, NAME, and MEMO
// and strips card-processor boilerplate.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
	}
	upper := strings.ToUpper(name)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip a leading "MM/DD " date stamp.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic to be
// worth keeping over the memo.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

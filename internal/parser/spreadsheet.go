package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// columnMap records which spreadsheet columns hold which fields. An index
// of -1 means the column was not found.
type columnMap struct {
	date   int
	desc   int
	amount int
	debit  int
	credit int
	check  int
}

// header keyword families for column auto-detection.
var (
	dateHeaders   = []string{"date", "posted", "trans date", "transaction date"}
	descHeaders   = []string{"description", "memo", "payee", "detail", "transaction", "narrative"}
	amountHeaders = []string{"amount", "value"}
	debitHeaders  = []string{"debit", "withdrawal", "charge", "money out"}
	creditHeaders = []string{"credit", "deposit", "money in"}
	checkHeaders  = []string{"check", "cheque", "check number", "check no"}
)

// SpreadsheetParser extracts transactions from row/column files: Excel
// workbooks via excelize and delimited text via encoding/csv.
type SpreadsheetParser struct {
	clock func() time.Time
}

// NewSpreadsheetParser creates a spreadsheet extractor. clock may be nil.
func NewSpreadsheetParser(clock func() time.Time) *SpreadsheetParser {
	if clock == nil {
		clock = time.Now
	}
	return &SpreadsheetParser{clock: clock}
}

// ExtractFile reads one spreadsheet and returns its transactions.
func (p *SpreadsheetParser) ExtractFile(ctx context.Context, path string) ([]model.RawTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "xlsx", "xlsm", "xls":
		return p.extractExcel(path)
	case "csv", "txt", "tsv":
		return p.extractDelimited(path, ext)
	default:
		return nil, fmt.Errorf("%w: .%s", common.ErrUnsupportedFormat, ext)
	}
}

func (p *SpreadsheetParser) extractExcel(path string) ([]model.RawTransaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return p.extractRows(rows)
}

func (p *SpreadsheetParser) extractDelimited(path, ext string) ([]model.RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if ext == "tsv" || ext == "txt" {
		reader.Comma = '\t'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited file: %w", err)
	}

	return p.extractRows(rows)
}

// extractRows applies column detection to the header row and converts data
// rows. Rows that fail to convert are skipped, never fatal: one malformed
// row must not abort the file.
func (p *SpreadsheetParser) extractRows(rows [][]string) ([]model.RawTransaction, error) {
	if len(rows) == 0 {
		return nil, common.ErrEmptyDocument
	}

	cols, headerRows := detectColumns(rows)

	var txns []model.RawTransaction
	for _, row := range rows[headerRows:] {
		txn, ok := p.convertRow(row, cols)
		if !ok {
			continue
		}
		if err := txn.Validate(); err != nil {
			continue
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}
	return txns, nil
}

// detectColumns finds field columns by header name keywords, falling back
// to the conventional date/description/amount positional layout when the
// first row is data rather than headers.
func detectColumns(rows [][]string) (columnMap, int) {
	cols := columnMap{date: -1, desc: -1, amount: -1, debit: -1, credit: -1, check: -1}

	header := rows[0]
	matched := 0
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case cols.date < 0 && headerMatches(name, dateHeaders):
			cols.date = i
			matched++
		case cols.debit < 0 && headerMatches(name, debitHeaders):
			cols.debit = i
			matched++
		case cols.credit < 0 && headerMatches(name, creditHeaders):
			cols.credit = i
			matched++
		case cols.amount < 0 && headerMatches(name, amountHeaders):
			cols.amount = i
			matched++
		case cols.check < 0 && headerMatches(name, checkHeaders):
			cols.check = i
			matched++
		case cols.desc < 0 && headerMatches(name, descHeaders):
			cols.desc = i
			matched++
		}
	}

	if matched >= 2 && cols.date >= 0 {
		return cols, 1
	}

	// Positional fallback: date, description, amount.
	return columnMap{date: 0, desc: 1, amount: 2, debit: -1, credit: -1, check: -1}, 0
}

func headerMatches(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

var spreadsheetDateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006-01-02",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func (p *SpreadsheetParser) convertRow(row []string, cols columnMap) (model.RawTransaction, bool) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, ok := parseSpreadsheetDate(cell(cols.date), p.clock())
	if !ok {
		return model.RawTransaction{}, false
	}

	amount, ok := rowAmount(cell(cols.amount), cell(cols.debit), cell(cols.credit))
	if !ok {
		return model.RawTransaction{}, false
	}

	description := cell(cols.desc)
	checkNumber := cell(cols.check)
	if description == "" && checkNumber != "" {
		description = "CHECK #" + checkNumber
	}
	if description == "" {
		return model.RawTransaction{}, false
	}

	return model.RawTransaction{
		Date:          date,
		Description:   description,
		Amount:        amount,
		CheckNumber:   checkNumber,
		SourcePattern: "spreadsheet",
		Confidence:    confidenceTemplate,
	}, true
}

func parseSpreadsheetDate(cell string, now time.Time) (time.Time, bool) {
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range spreadsheetDateLayouts {
		if date, err := time.Parse(layout, cell); err == nil {
			return date, true
		}
	}
	// MM/DD without year, same convention as PDF statements.
	if date, err := ParseDate(cell, "MM/DD", now.Year()); err == nil {
		return date, true
	}
	return time.Time{}, false
}

// rowAmount resolves the signed amount from a single column or from a
// separate debit/credit pair (debits negative).
func rowAmount(amountCell, debitCell, creditCell string) (float64, bool) {
	if amountCell != "" {
		amount, ok := parseSignedAmount(amountCell)
		if ok && amount != 0 {
			return amount, true
		}
		return 0, false
	}

	if debitCell != "" {
		amount, ok := parseSignedAmount(debitCell)
		if ok && amount != 0 {
			return -abs(amount), true
		}
	}
	if creditCell != "" {
		amount, ok := parseSignedAmount(creditCell)
		if ok && amount != 0 {
			return abs(amount), true
		}
	}
	return 0, false
}

func parseSignedAmount(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	negative := false

	if strings.HasPrefix(cell, "(") && strings.HasSuffix(cell, ")") {
		negative = true
		cell = strings.Trim(cell, "()")
	}
	if strings.HasSuffix(cell, "-") {
		negative = true
		cell = strings.TrimSuffix(cell, "-")
	}
	if strings.HasPrefix(cell, "-") {
		negative = true
		cell = strings.TrimPrefix(cell, "-")
	}
	cell = strings.TrimPrefix(cell, "$")
	cell = strings.ReplaceAll(cell, ",", "")

	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

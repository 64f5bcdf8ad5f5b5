package model

import (
	"github.com/shopspring/decimal"
)

// balanceTolerance is one cent: the largest debit/credit mismatch a
// RoutedEntry may carry without being flagged for review.
var balanceTolerance = decimal.NewFromFloat(0.01)

// EntryLine is one side of a double-entry posting.
type EntryLine struct {
	Account string
	Fund    string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// RoutedEntry is a ClassificationResult plus its posting document: a
// per-module sequential document number and at least two balanced lines.
type RoutedEntry struct {
	Result       ClassificationResult
	SessionID    string
	DocNumber    string
	Lines        []EntryLine
	NeedsReview  bool
	ReviewReason string
}

// DebitTotal sums the debit side of all lines.
func (e *RoutedEntry) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// CreditTotal sums the credit side of all lines.
func (e *RoutedEntry) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Credit)
	}
	return total
}

// Balanced reports whether debits equal credits within one cent,
// inclusive. An unbalanced entry is flagged for review, never rejected:
// rejecting it would silently drop a real money movement.
func (e *RoutedEntry) Balanced() bool {
	diff := e.DebitTotal().Sub(e.CreditTotal()).Abs()
	return diff.LessThanOrEqual(balanceTolerance)
}

// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"time"
)

// MaxTransactionAmount is the largest absolute amount accepted from any
// parser. Anything above it is assumed to be an OCR misread.
const MaxTransactionAmount = 10_000_000.0

// RawTransaction represents one financial movement extracted from a
// statement. Amount is signed: positive means money into the account.
type RawTransaction struct {
	Date           time.Time
	Description    string
	CheckNumber    string
	SourcePattern  string
	RunningBalance *float64
	Amount         float64
	Confidence     float64 // 0-100, extraction confidence
}

// Hash creates the duplicate-detection key shared with the posted-history
// store: sha256 over date, amount, description, and check number, truncated
// to 16 hex characters.
func (t *RawTransaction) Hash() string {
	data := fmt.Sprintf("%s|%.2f|%s|%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.CheckNumber)
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)[:16]
}

// DedupKey builds the in-batch duplicate key: date, first 50 description
// characters, and the rounded absolute amount.
func (t *RawTransaction) DedupKey() string {
	desc := t.Description
	if len(desc) > 50 {
		desc = desc[:50]
	}
	return fmt.Sprintf("%s|%s|%.2f",
		t.Date.Format("2006-01-02"),
		desc,
		math.Abs(t.Amount))
}

// IsDeposit reports whether the transaction moves money into the account.
func (t *RawTransaction) IsDeposit() bool {
	return t.Amount > 0
}

// Validate checks the extraction invariants.
func (t *RawTransaction) Validate() error {
	if t.Amount == 0 {
		return fmt.Errorf("transaction amount cannot be zero")
	}
	if math.Abs(t.Amount) > MaxTransactionAmount {
		return fmt.Errorf("transaction amount %.2f exceeds maximum %.2f", t.Amount, MaxTransactionAmount)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	if t.Description == "" {
		return fmt.Errorf("transaction description is required")
	}
	return nil
}

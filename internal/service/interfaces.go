// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Learned pattern operations
	SaveLearnedPattern(ctx context.Context, pattern *model.LearnedPattern) error
	GetLearnedPatterns(ctx context.Context) ([]model.LearnedPattern, error)
	IncrementPatternUseCount(ctx context.Context, id int64) error
	DeleteLearnedPattern(ctx context.Context, id int64) error

	// Vendor operations
	GetVendor(ctx context.Context, name string) (*model.Vendor, error)
	SaveVendor(ctx context.Context, vendor *model.Vendor) error
	GetAllVendors(ctx context.Context) ([]model.Vendor, error)

	// Customer operations
	GetCustomer(ctx context.Context, name string) (*model.Customer, error)
	SaveCustomer(ctx context.Context, customer *model.Customer) error
	GetAllCustomers(ctx context.Context) ([]model.Customer, error)

	// Posted-transaction history, the database side of duplicate detection
	SavePostedTransactions(ctx context.Context, txns []model.PostedTransaction) error
	GetPostedHashes(ctx context.Context, hashes []string) (map[string]bool, error)
	GetPostedCheckNumbers(ctx context.Context, checkNumbers []string) (map[string]bool, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// TextExtractor turns a document into one text blob, using OCR when the
// native text layer is missing or implausibly short.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ExtractedText, error)
}

// ExtractedText is the output of text acquisition.
type ExtractedText struct {
	Content   string
	OCRUsed   bool
	PageCount int
}

// ParserStrategy extracts raw transactions from statement text. The
// template engine is the default strategy; the generic extractor is the
// fallback when no template matches or validation fails.
type ParserStrategy interface {
	Name() string
	Extract(ctx context.Context, text string, tmpl *model.BankTemplate) ([]model.RawTransaction, error)
}

// Classifier assigns a module, GL code, and payee to one transaction.
type Classifier interface {
	Classify(ctx context.Context, txn model.RawTransaction, hint model.Module) (model.ClassificationResult, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

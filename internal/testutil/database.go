// Package testutil provides shared helpers for tests that need a real
// storage layer behind them.
package testutil

import (
	"context"
	"testing"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/storage"
)

// TestDB wraps an in-memory, fully migrated SQLite store.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates an in-memory test database. Migrations run
// immediately and the store closes with the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &TestDB{Storage: store, t: t}
}

// SeedVendors saves the given vendors, failing the test on error.
func (db *TestDB) SeedVendors(vendors ...model.Vendor) {
	db.t.Helper()
	ctx := context.Background()
	for i := range vendors {
		if err := db.Storage.SaveVendor(ctx, &vendors[i]); err != nil {
			db.t.Fatalf("failed to seed vendor %q: %v", vendors[i].Name, err)
		}
	}
}

// SeedCustomers saves the given customers, failing the test on error.
func (db *TestDB) SeedCustomers(customers ...model.Customer) {
	db.t.Helper()
	ctx := context.Background()
	for i := range customers {
		if err := db.Storage.SaveCustomer(ctx, &customers[i]); err != nil {
			db.t.Fatalf("failed to seed customer %q: %v", customers[i].Name, err)
		}
	}
}

// SeedPatterns saves the given learned patterns, failing the test on error.
func (db *TestDB) SeedPatterns(patterns ...model.LearnedPattern) {
	db.t.Helper()
	ctx := context.Background()
	for i := range patterns {
		if err := db.Storage.SaveLearnedPattern(ctx, &patterns[i]); err != nil {
			db.t.Fatalf("failed to seed pattern %q: %v", patterns[i].Pattern, err)
		}
	}
}

// SeedPosted records already-posted transactions for duplicate detection
// tests.
func (db *TestDB) SeedPosted(txns ...model.PostedTransaction) {
	db.t.Helper()
	if err := db.Storage.SavePostedTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed posted transactions: %v", err)
	}
}

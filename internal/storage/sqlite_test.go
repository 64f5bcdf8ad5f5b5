package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	return store
}

func TestSQLiteStorage_MigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSQLiteStorage_LearnedPatternLifecycle(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	pattern := &model.LearnedPattern{
		Pattern:    "INTUIT PAYROLL",
		Module:     model.ModuleCD,
		GLCode:     "7200",
		FundCode:   "1000",
		Payee:      "Intuit",
		Confidence: 0.97,
	}
	require.NoError(t, store.SaveLearnedPattern(ctx, pattern))
	require.NotZero(t, pattern.ID, "insert should assign an ID")

	patterns, err := store.GetLearnedPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "INTUIT PAYROLL", patterns[0].Pattern)
	assert.Equal(t, model.ModuleCD, patterns[0].Module)
	assert.False(t, patterns[0].CreatedAt.IsZero())

	require.NoError(t, store.IncrementPatternUseCount(ctx, pattern.ID))
	patterns, err = store.GetLearnedPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, patterns[0].UseCount)
	assert.False(t, patterns[0].LastUsed.IsZero())

	pattern.GLCode = "7210"
	require.NoError(t, store.SaveLearnedPattern(ctx, pattern))
	patterns, err = store.GetLearnedPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1, "save by ID updates in place")
	assert.Equal(t, "7210", patterns[0].GLCode)

	require.NoError(t, store.DeleteLearnedPattern(ctx, pattern.ID))
	patterns, err = store.GetLearnedPatterns(ctx)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestSQLiteStorage_LearnedPatternNotFound(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.IncrementPatternUseCount(ctx, 999), common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteLearnedPattern(ctx, 999), common.ErrNotFound)
	assert.ErrorIs(t, store.SaveLearnedPattern(ctx, &model.LearnedPattern{
		ID: 999, Pattern: "x", Module: model.ModuleCR,
	}), common.ErrNotFound)
}

func TestSQLiteStorage_LearnedPatternValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		pattern *model.LearnedPattern
		name    string
	}{
		{name: "nil pattern", pattern: nil},
		{name: "empty text", pattern: &model.LearnedPattern{Module: model.ModuleCR}},
		{name: "unknown module", pattern: &model.LearnedPattern{Pattern: "x", Module: model.ModuleUnknown}},
		{name: "confidence out of range", pattern: &model.LearnedPattern{Pattern: "x", Module: model.ModuleCR, Confidence: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveLearnedPattern(ctx, tt.pattern))
		})
	}
}

func TestSQLiteStorage_VendorRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	vendor := &model.Vendor{
		Name:     "Johnson Supply",
		Aliases:  []string{"JOHNSON SUPPLY CO", "JOHNSN SUPPLY"},
		GLCode:   "7310",
		FundCode: "1000",
		UseCount: 3,
	}
	require.NoError(t, store.SaveVendor(ctx, vendor))

	got, err := store.GetVendor(ctx, "Johnson Supply")
	require.NoError(t, err)
	assert.Equal(t, vendor.Aliases, got.Aliases)
	assert.Equal(t, "7310", got.GLCode)
	assert.False(t, got.LastUpdated.IsZero())

	// Upsert by name.
	vendor.GLCode = "7320"
	require.NoError(t, store.SaveVendor(ctx, vendor))
	got, err = store.GetVendor(ctx, "Johnson Supply")
	require.NoError(t, err)
	assert.Equal(t, "7320", got.GLCode)

	_, err = store.GetVendor(ctx, "Nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_GetAllVendorsOrdering(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVendor(ctx, &model.Vendor{Name: "Rarely Used", UseCount: 1}))
	require.NoError(t, store.SaveVendor(ctx, &model.Vendor{Name: "Often Used", UseCount: 10}))

	vendors, err := store.GetAllVendors(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "Often Used", vendors[0].Name)
	assert.Nil(t, vendors[0].Aliases, "empty alias list round-trips as nil")
}

func TestSQLiteStorage_CustomerRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	customer := &model.Customer{
		Name:       "HUD",
		Aliases:    []string{"HUD TREAS"},
		GLCode:     "4110",
		FundCode:   "2100",
		CFDANumber: "14.218",
	}
	require.NoError(t, store.SaveCustomer(ctx, customer))

	got, err := store.GetCustomer(ctx, "HUD")
	require.NoError(t, err)
	assert.Equal(t, "14.218", got.CFDANumber)
	assert.Equal(t, "2100", got.FundCode)

	customers, err := store.GetAllCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	_, err = store.GetCustomer(ctx, "Nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_PostedTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	date := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	txns := []model.PostedTransaction{
		{Hash: "aaaa000011112222", Date: date, Description: "DEPOSIT", Amount: 100.00},
		{Hash: "bbbb000011112222", Date: date, Description: "CHECK 1500", CheckNumber: "1500", Amount: -720.00},
	}
	require.NoError(t, store.SavePostedTransactions(ctx, txns))

	// Saving the same hashes again is a no-op.
	require.NoError(t, store.SavePostedTransactions(ctx, txns))

	hashes, err := store.GetPostedHashes(ctx, []string{"aaaa000011112222", "cccc000011112222"})
	require.NoError(t, err)
	assert.True(t, hashes["aaaa000011112222"])
	assert.False(t, hashes["cccc000011112222"])

	checks, err := store.GetPostedCheckNumbers(ctx, []string{"1500", "1501", ""})
	require.NoError(t, err)
	assert.True(t, checks["1500"])
	assert.False(t, checks["1501"])
	assert.False(t, checks[""])
}

func TestSQLiteStorage_PostedTransactionValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.SavePostedTransactions(ctx, []model.PostedTransaction{{Description: "no hash"}})
	assert.ErrorIs(t, err, ErrInvalidPosted)
}

func TestSQLiteStorage_TransactionCommitAndRollback(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveVendor(ctx, &model.Vendor{Name: "Rolled Back"}))
	require.NoError(t, tx.Rollback())

	_, err = store.GetVendor(ctx, "Rolled Back")
	assert.ErrorIs(t, err, common.ErrNotFound)

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveVendor(ctx, &model.Vendor{Name: "Committed"}))
	require.NoError(t, tx.Commit())

	got, err := store.GetVendor(ctx, "Committed")
	require.NoError(t, err)
	assert.Equal(t, "Committed", got.Name)
}

func TestSQLiteStorage_TransactionGuards(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	assert.Error(t, tx.Migrate(ctx), "migrations inside a transaction are rejected")
	_, err = tx.BeginTx(ctx)
	assert.Error(t, err, "nested transactions are rejected")
	assert.Error(t, tx.Close())
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dbtx is the common surface of *sql.DB and *sql.Tx, so each query helper
// works both standalone and inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction. Every
// storage method runs against the wrapped transaction.
type sqliteTransaction struct {
	tx *sql.Tx
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) SaveLearnedPattern(ctx context.Context, pattern *model.LearnedPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLearnedPattern(pattern); err != nil {
		return err
	}
	return saveLearnedPattern(ctx, t.tx, pattern)
}

func (t *sqliteTransaction) GetLearnedPatterns(ctx context.Context) ([]model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getLearnedPatterns(ctx, t.tx)
}

func (t *sqliteTransaction) IncrementPatternUseCount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return incrementPatternUseCount(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteLearnedPattern(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteLearnedPattern(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetVendor(ctx context.Context, name string) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getVendor(ctx, t.tx, name)
}

func (t *sqliteTransaction) SaveVendor(ctx context.Context, vendor *model.Vendor) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVendor(vendor); err != nil {
		return err
	}
	return saveVendor(ctx, t.tx, vendor)
}

func (t *sqliteTransaction) GetAllVendors(ctx context.Context) ([]model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAllVendors(ctx, t.tx)
}

func (t *sqliteTransaction) GetCustomer(ctx context.Context, name string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getCustomer(ctx, t.tx, name)
}

func (t *sqliteTransaction) SaveCustomer(ctx context.Context, customer *model.Customer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCustomer(customer); err != nil {
		return err
	}
	return saveCustomer(ctx, t.tx, customer)
}

func (t *sqliteTransaction) GetAllCustomers(ctx context.Context) ([]model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAllCustomers(ctx, t.tx)
}

func (t *sqliteTransaction) SavePostedTransactions(ctx context.Context, txns []model.PostedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePostedTransactions(txns); err != nil {
		return err
	}
	return savePostedTransactions(ctx, t.tx, txns)
}

func (t *sqliteTransaction) GetPostedHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPostedHashes(ctx, t.tx, hashes)
}

func (t *sqliteTransaction) GetPostedCheckNumbers(ctx context.Context, checkNumbers []string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPostedCheckNumbers(ctx, t.tx, checkNumbers)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations manage their own transactions
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

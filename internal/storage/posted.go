package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// SavePostedTransactions records entries accepted into the ledger, keyed by
// content hash. Re-posting the same transaction is a no-op, so a re-run
// over the same statement never doubles the history.
func (s *SQLiteStorage) SavePostedTransactions(ctx context.Context, txns []model.PostedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePostedTransactions(txns); err != nil {
		return err
	}
	return savePostedTransactions(ctx, s.db, txns)
}

// GetPostedHashes reports which of the given hashes are already posted.
func (s *SQLiteStorage) GetPostedHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPostedHashes(ctx, s.db, hashes)
}

// GetPostedCheckNumbers reports which of the given check numbers are
// already posted.
func (s *SQLiteStorage) GetPostedCheckNumbers(ctx context.Context, checkNumbers []string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPostedCheckNumbers(ctx, s.db, checkNumbers)
}

func savePostedTransactions(ctx context.Context, q dbtx, txns []model.PostedTransaction) error {
	for i := range txns {
		txn := &txns[i]
		postedAt := txn.PostedAt
		if postedAt.IsZero() {
			postedAt = time.Now().UTC()
		}
		_, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO posted_transactions (hash, date, description, check_number, amount, posted_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			txn.Hash, txn.Date, txn.Description, txn.CheckNumber, txn.Amount, postedAt)
		if err != nil {
			return fmt.Errorf("failed to save posted transaction %q: %w", txn.Hash, err)
		}
	}
	return nil
}

func getPostedHashes(ctx context.Context, q dbtx, hashes []string) (map[string]bool, error) {
	return lookupPosted(ctx, q, "hash", hashes)
}

func getPostedCheckNumbers(ctx context.Context, q dbtx, checkNumbers []string) (map[string]bool, error) {
	var nonEmpty []string
	for _, n := range checkNumbers {
		if n != "" {
			nonEmpty = append(nonEmpty, n)
		}
	}
	return lookupPosted(ctx, q, "check_number", nonEmpty)
}

// lookupPosted runs a chunked IN query against one posted_transactions
// column and returns the set of values found.
func lookupPosted(ctx context.Context, q dbtx, column string, values []string) (map[string]bool, error) {
	found := make(map[string]bool, len(values))
	if len(values) == 0 {
		return found, nil
	}

	// SQLite caps bound parameters per statement.
	const chunkSize = 500
	for start := 0; start < len(values); start += chunkSize {
		end := min(start+chunkSize, len(values))
		chunk := values[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, v := range chunk {
			args[i] = v
		}

		query := fmt.Sprintf(`SELECT %s FROM posted_transactions WHERE %s IN (%s)`,
			column, column, placeholders)
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query posted transactions: %w", err)
		}
		for rows.Next() {
			var value string
			if scanErr := rows.Scan(&value); scanErr != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan posted transaction: %w", scanErr)
			}
			found[value] = true
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to iterate posted transactions: %w", err)
		}
		_ = rows.Close()
	}
	return found, nil
}

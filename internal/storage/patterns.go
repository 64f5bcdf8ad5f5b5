package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// SaveLearnedPattern inserts a new pattern or updates an existing one by ID.
func (s *SQLiteStorage) SaveLearnedPattern(ctx context.Context, pattern *model.LearnedPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLearnedPattern(pattern); err != nil {
		return err
	}
	return saveLearnedPattern(ctx, s.db, pattern)
}

// GetLearnedPatterns returns all patterns, highest confidence first.
func (s *SQLiteStorage) GetLearnedPatterns(ctx context.Context) ([]model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getLearnedPatterns(ctx, s.db)
}

// IncrementPatternUseCount bumps a pattern's use count and touch time.
func (s *SQLiteStorage) IncrementPatternUseCount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return incrementPatternUseCount(ctx, s.db, id)
}

// DeleteLearnedPattern removes a pattern by ID.
func (s *SQLiteStorage) DeleteLearnedPattern(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteLearnedPattern(ctx, s.db, id)
}

func saveLearnedPattern(ctx context.Context, q dbtx, pattern *model.LearnedPattern) error {
	if pattern.ID != 0 {
		result, err := q.ExecContext(ctx, `
			UPDATE learned_patterns
			SET pattern = ?, is_regex = ?, module = ?, gl_code = ?,
				fund_code = ?, payee = ?, confidence = ?
			WHERE id = ?`,
			pattern.Pattern, pattern.IsRegex, string(pattern.Module), pattern.GLCode,
			pattern.FundCode, pattern.Payee, pattern.Confidence, pattern.ID)
		if err != nil {
			return fmt.Errorf("failed to update learned pattern: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: learned pattern %d", common.ErrNotFound, pattern.ID)
		}
		return nil
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO learned_patterns (pattern, is_regex, module, gl_code, fund_code, payee, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pattern.Pattern, pattern.IsRegex, string(pattern.Module), pattern.GLCode,
		pattern.FundCode, pattern.Payee, pattern.Confidence, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert learned pattern: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get pattern id: %w", err)
	}
	pattern.ID = id
	return nil
}

func getLearnedPatterns(ctx context.Context, q dbtx) ([]model.LearnedPattern, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, pattern, is_regex, module, gl_code, fund_code, payee,
			confidence, use_count, created_at, last_used
		FROM learned_patterns
		ORDER BY confidence DESC, use_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.LearnedPattern
	for rows.Next() {
		var p model.LearnedPattern
		var module string
		var glCode, fundCode, payee sql.NullString
		var createdAt, lastUsed sql.NullTime
		if err := rows.Scan(&p.ID, &p.Pattern, &p.IsRegex, &module, &glCode, &fundCode,
			&payee, &p.Confidence, &p.UseCount, &createdAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan learned pattern: %w", err)
		}
		p.Module = model.Module(module)
		p.GLCode = glCode.String
		p.FundCode = fundCode.String
		p.Payee = payee.String
		p.CreatedAt = createdAt.Time
		p.LastUsed = lastUsed.Time
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate learned patterns: %w", err)
	}
	return patterns, nil
}

func incrementPatternUseCount(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `
		UPDATE learned_patterns
		SET use_count = use_count + 1, last_used = CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment pattern use count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: learned pattern %d", common.ErrNotFound, id)
	}
	return nil
}

func deleteLearnedPattern(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM learned_patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete learned pattern: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: learned pattern %d", common.ErrNotFound, id)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Aliases are stored as a JSON array in a TEXT column. Vendor and customer
// rows rarely exceed a handful of aliases, so there's no join table.

func marshalAliases(aliases []string) (string, error) {
	if len(aliases) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(aliases)
	if err != nil {
		return "", fmt.Errorf("failed to marshal aliases: %w", err)
	}
	return string(data), nil
}

func unmarshalAliases(data sql.NullString) ([]string, error) {
	if !data.Valid || data.String == "" || data.String == "[]" {
		return nil, nil
	}
	var aliases []string
	if err := json.Unmarshal([]byte(data.String), &aliases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
	}
	return aliases, nil
}

// GetVendor looks up a vendor by exact name.
func (s *SQLiteStorage) GetVendor(ctx context.Context, name string) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getVendor(ctx, s.db, name)
}

// SaveVendor inserts or replaces a vendor by name.
func (s *SQLiteStorage) SaveVendor(ctx context.Context, vendor *model.Vendor) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVendor(vendor); err != nil {
		return err
	}
	return saveVendor(ctx, s.db, vendor)
}

// GetAllVendors returns every vendor, most used first.
func (s *SQLiteStorage) GetAllVendors(ctx context.Context) ([]model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAllVendors(ctx, s.db)
}

// GetCustomer looks up a customer by exact name.
func (s *SQLiteStorage) GetCustomer(ctx context.Context, name string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getCustomer(ctx, s.db, name)
}

// SaveCustomer inserts or replaces a customer by name.
func (s *SQLiteStorage) SaveCustomer(ctx context.Context, customer *model.Customer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCustomer(customer); err != nil {
		return err
	}
	return saveCustomer(ctx, s.db, customer)
}

// GetAllCustomers returns every customer, most used first.
func (s *SQLiteStorage) GetAllCustomers(ctx context.Context) ([]model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAllCustomers(ctx, s.db)
}

func getVendor(ctx context.Context, q dbtx, name string) (*model.Vendor, error) {
	row := q.QueryRowContext(ctx, `
		SELECT name, aliases, gl_code, fund_code, use_count, last_updated
		FROM vendors WHERE name = ?`, name)

	vendor, err := scanVendor(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vendor %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return vendor, nil
}

func saveVendor(ctx context.Context, q dbtx, vendor *model.Vendor) error {
	aliases, err := marshalAliases(vendor.Aliases)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO vendors (name, aliases, gl_code, fund_code, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			aliases = excluded.aliases,
			gl_code = excluded.gl_code,
			fund_code = excluded.fund_code,
			use_count = excluded.use_count,
			last_updated = excluded.last_updated`,
		vendor.Name, aliases, vendor.GLCode, vendor.FundCode, vendor.UseCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save vendor: %w", err)
	}
	return nil
}

func getAllVendors(ctx context.Context, q dbtx) ([]model.Vendor, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, aliases, gl_code, fund_code, use_count, last_updated
		FROM vendors ORDER BY use_count DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vendors []model.Vendor
	for rows.Next() {
		vendor, scanErr := scanVendor(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", scanErr)
		}
		vendors = append(vendors, *vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vendors: %w", err)
	}
	return vendors, nil
}

func scanVendor(scan func(...any) error) (*model.Vendor, error) {
	var vendor model.Vendor
	var aliases, glCode, fundCode sql.NullString
	var lastUpdated sql.NullTime
	if err := scan(&vendor.Name, &aliases, &glCode, &fundCode, &vendor.UseCount, &lastUpdated); err != nil {
		return nil, err
	}
	parsed, err := unmarshalAliases(aliases)
	if err != nil {
		return nil, err
	}
	vendor.Aliases = parsed
	vendor.GLCode = glCode.String
	vendor.FundCode = fundCode.String
	vendor.LastUpdated = lastUpdated.Time
	return &vendor, nil
}

func getCustomer(ctx context.Context, q dbtx, name string) (*model.Customer, error) {
	row := q.QueryRowContext(ctx, `
		SELECT name, aliases, gl_code, fund_code, cfda_number, use_count, last_updated
		FROM customers WHERE name = ?`, name)

	customer, err := scanCustomer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func saveCustomer(ctx context.Context, q dbtx, customer *model.Customer) error {
	aliases, err := marshalAliases(customer.Aliases)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO customers (name, aliases, gl_code, fund_code, cfda_number, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			aliases = excluded.aliases,
			gl_code = excluded.gl_code,
			fund_code = excluded.fund_code,
			cfda_number = excluded.cfda_number,
			use_count = excluded.use_count,
			last_updated = excluded.last_updated`,
		customer.Name, aliases, customer.GLCode, customer.FundCode,
		customer.CFDANumber, customer.UseCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func getAllCustomers(ctx context.Context, q dbtx) ([]model.Customer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, aliases, gl_code, fund_code, cfda_number, use_count, last_updated
		FROM customers ORDER BY use_count DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []model.Customer
	for rows.Next() {
		customer, scanErr := scanCustomer(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", scanErr)
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

func scanCustomer(scan func(...any) error) (*model.Customer, error) {
	var customer model.Customer
	var aliases, glCode, fundCode, cfda sql.NullString
	var lastUpdated sql.NullTime
	if err := scan(&customer.Name, &aliases, &glCode, &fundCode, &cfda, &customer.UseCount, &lastUpdated); err != nil {
		return nil, err
	}
	parsed, err := unmarshalAliases(aliases)
	if err != nil {
		return nil, err
	}
	customer.Aliases = parsed
	customer.GLCode = glCode.String
	customer.FundCode = fundCode.String
	customer.CFDANumber = cfda.String
	customer.LastUpdated = lastUpdated.Time
	return &customer, nil
}

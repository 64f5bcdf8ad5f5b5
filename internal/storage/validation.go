// Package storage provides the SQLite persistence layer: learned
// classification patterns, the vendor and customer tables, and the
// posted-transaction history behind duplicate detection.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidPattern = errors.New("invalid learned pattern")
	ErrInvalidVendor  = errors.New("invalid vendor")
	ErrInvalidPosted  = errors.New("invalid posted transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateLearnedPattern(pattern *model.LearnedPattern) error {
	if pattern == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if strings.TrimSpace(pattern.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern text", ErrInvalidPattern)
	}
	switch pattern.Module {
	case model.ModuleCR, model.ModuleCD, model.ModuleJV:
	default:
		return fmt.Errorf("%w: module %q", ErrInvalidPattern, pattern.Module)
	}
	if pattern.Confidence < 0 || pattern.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidPattern)
	}
	return nil
}

func validateVendor(vendor *model.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("%w: vendor", ErrNilParameter)
	}
	if strings.TrimSpace(vendor.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidVendor)
	}
	return nil
}

func validateCustomer(customer *model.Customer) error {
	if customer == nil {
		return fmt.Errorf("%w: customer", ErrNilParameter)
	}
	if strings.TrimSpace(customer.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidVendor)
	}
	return nil
}

func validatePostedTransactions(txns []model.PostedTransaction) error {
	if txns == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i := range txns {
		if txns[i].Hash == "" {
			return fmt.Errorf("%w: missing hash at index %d", ErrInvalidPosted, i)
		}
		if txns[i].Date.IsZero() {
			return fmt.Errorf("%w: missing date at index %d", ErrInvalidPosted, i)
		}
	}
	return nil
}

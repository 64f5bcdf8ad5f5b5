package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRawTransaction_Validate(t *testing.T) {
	date := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		txn     RawTransaction
		wantErr string
	}{
		{
			name: "valid deposit",
			txn:  RawTransaction{Date: date, Description: "DEPOSIT", Amount: 2301.24},
		},
		{
			name: "valid withdrawal",
			txn:  RawTransaction{Date: date, Description: "CHECK #1500", Amount: -720.00, CheckNumber: "1500"},
		},
		{
			name:    "zero amount",
			txn:     RawTransaction{Date: date, Description: "DEPOSIT"},
			wantErr: "amount cannot be zero",
		},
		{
			name:    "amount above maximum",
			txn:     RawTransaction{Date: date, Description: "DEPOSIT", Amount: 99_999_999.99},
			wantErr: "exceeds maximum",
		},
		{
			name:    "missing date",
			txn:     RawTransaction{Description: "DEPOSIT", Amount: 100},
			wantErr: "date is required",
		},
		{
			name:    "missing description",
			txn:     RawTransaction{Date: date, Amount: 100},
			wantErr: "description is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestRawTransaction_Hash(t *testing.T) {
	date := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	a := RawTransaction{Date: date, Description: "ACH CREDIT PAYROLL", Amount: 1500.00}
	b := RawTransaction{Date: date, Description: "ACH CREDIT PAYROLL", Amount: 1500.00}
	c := RawTransaction{Date: date, Description: "ACH CREDIT PAYROLL", Amount: 1500.01}

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Len(t, a.Hash(), 16)
}

func TestRawTransaction_DedupKey(t *testing.T) {
	date := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	long := RawTransaction{
		Date:        date,
		Description: "ACH CORP DEBIT A VERY LONG PAYROLL DESCRIPTION WITH TRAILING REFERENCE 000123456789",
		Amount:      -500,
	}
	longer := RawTransaction{
		Date:        date,
		Description: "ACH CORP DEBIT A VERY LONG PAYROLL DESCRIPTION WITH TRAILING REFERENCE 000999999999",
		Amount:      500,
	}

	// Same date, same first 50 chars, same absolute amount: same key.
	assert.Equal(t, long.DedupKey(), longer.DedupKey())
}

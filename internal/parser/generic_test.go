package parser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
}

func TestGenericParser_DateAmountDescription(t *testing.T) {
	p := NewGenericParser(fixedClock)

	txns, err := p.Extract(context.Background(), "07/25 2,301.24 DEPOSIT", nil)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	assert.Equal(t, time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.InDelta(t, 2301.24, txns[0].Amount, 0.001)
	assert.Equal(t, "DEPOSIT", txns[0].Description)
}

func TestGenericParser_CheckWithoutDate(t *testing.T) {
	p := NewGenericParser(fixedClock)

	txns, err := p.Extract(context.Background(), "CHECK #1500  720.00", nil)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	assert.Equal(t, "CHECK #1500", txns[0].Description)
	assert.Equal(t, "1500", txns[0].CheckNumber)
	assert.InDelta(t, -720.00, txns[0].Amount, 0.001)
}

func TestGenericParser_SectionDrivesSign(t *testing.T) {
	p := NewGenericParser(fixedClock)

	text := `Statement Period 07/01/2024 through 07/31/2024
Deposits
07/25  2,301.24  MOBILE TRANSFER IN
Withdrawals
07/26  415.33  ACH PMT VENDOR SVCS
`
	txns, err := p.Extract(context.Background(), text, nil)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.True(t, txns[0].Amount > 0, "deposits section entry should be positive")
	assert.True(t, txns[1].Amount < 0, "withdrawals section entry should be negative")
}

func TestGenericParser_DebitMarkerOverridesDepositSection(t *testing.T) {
	p := NewGenericParser(fixedClock)

	text := `Deposits
07/25  5,000.00  ACH CORP DEBIT PAYROLL INTUIT
`
	txns, err := p.Extract(context.Background(), text, nil)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Amount < 0, "literal DEBIT marker must override section context")
}

func TestGenericParser_SkipsNoiseLines(t *testing.T) {
	p := NewGenericParser(fixedClock)

	text := `Page 2 of 7
Ending Balance 99,301.88
07/25 102,450.12  07/26 99,301.88
07/25  2,301.24  DEPOSIT
`
	txns, err := p.Extract(context.Background(), text, nil)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "DEPOSIT", txns[0].Description)
}

func TestGenericParser_ConfidenceCapped(t *testing.T) {
	p := NewGenericParser(fixedClock)

	txns, err := p.Extract(context.Background(), "07/25  2,301.24  DEPOSIT", nil)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.LessOrEqual(t, txns[0].Confidence, float64(confidenceGeneric))
}

func TestTemplateParser_ParenthesizedWithdrawal(t *testing.T) {
	tmpl := &model.BankTemplate{
		Name:       "sovereign",
		DateFormat: "MM/DD/YYYY",
		Patterns: []model.ExtractionPattern{
			{
				Name:      "parenthesized_withdrawal",
				Pattern:   `^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+\(([\d,]+\.\d{2})\)$`,
				DateGroup: 1, DescGroup: 2, AmtGroup: 3,
				Kind:      model.KindWithdrawal,
				Parenthesized: true,
			},
		},
	}

	p := NewTemplateParser(fixedClock)
	txns, err := p.Extract(context.Background(), "07/26/2024 SERVICE CHARGE (35.00)", tmpl)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.InDelta(t, -35.00, txns[0].Amount, 0.001)
	assert.Equal(t, "sovereign:parenthesized_withdrawal", txns[0].SourcePattern)
}

func TestTemplateParser_GarbledLineRecovery(t *testing.T) {
	tmpl := &model.BankTemplate{
		Name:       "pnc",
		DateFormat: "MM/DD",
		Patterns: []model.ExtractionPattern{
			{
				Name:      "date_amount_desc",
				Pattern:   `^(\d{2}/\d{2})\s+([\d,]+\.\d{2})\s+(.+)$`,
				DateGroup: 1, AmtGroup: 2, DescGroup: 3,
				Kind: model.KindAuto,
			},
		},
		WithdrawalKeywords: []string{"deduction"},
	}

	p := NewTemplateParser(fixedClock)
	// Damaged spacing keeps the declared pattern from matching, but the
	// line still has one date and a valid amount.
	txns, err := p.Extract(context.Background(), "07/26ACH Deduction PAYROLL 1,150.00", tmpl)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "pnc:garbled_recovery", txns[0].SourcePattern)
	assert.InDelta(t, -1150.00, txns[0].Amount, 0.001)
	assert.InDelta(t, confidenceGarbled, txns[0].Confidence, 0.001)
}

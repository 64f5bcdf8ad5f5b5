package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func depositTemplate() *model.BankTemplate {
	return &model.BankTemplate{
		Name: "pnc",
		Summary: model.SummaryPatterns{
			TotalDeposits:    `(?i)deposits and other additions[^\d]*([\d,]+\.\d{2})`,
			TotalWithdrawals: `(?i)checks and other deductions[^\d]*([\d,]+\.\d{2})`,
		},
	}
}

func deposit(day int, desc string, amount float64) model.RawTransaction {
	return model.RawTransaction{
		Date:        time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      amount,
		Confidence:  85,
	}
}

func TestReconcile_ShortfallAppendsSyntheticAdjustment(t *testing.T) {
	// Printed deposits 163,705.78; parsed 163,680.78: short exactly 25.00.
	text := "Deposits and other additions 163,705.78"
	txns := []model.RawTransaction{
		deposit(25, "WIRE IN GRANT DRAWDOWN", 163_000.00),
		deposit(26, "DEPOSIT", 680.78),
	}

	result := New().Reconcile(txns, text, depositTemplate())

	require.Len(t, result.Transactions, 3)
	adj := result.Transactions[2]
	assert.InDelta(t, 25.00, adj.Amount, 0.001)
	assert.Equal(t, AdjustmentSource, adj.SourcePattern)
	assert.InDelta(t, adjustmentConfidence, adj.Confidence, 0.001)
	assert.Contains(t, adj.Description, "OCR adjustment")

	assert.InDelta(t, 163_705.78, result.ParsedDeposits, 0.001)
	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, "synthetic", result.Adjustments[0].Kind)
}

func TestReconcile_LargeShortfallOnlyWarns(t *testing.T) {
	text := "Deposits and other additions 100,000.00"
	txns := []model.RawTransaction{deposit(25, "DEPOSIT", 50_000.00)}

	result := New().Reconcile(txns, text, depositTemplate())

	assert.Len(t, result.Transactions, 1)
	assert.Empty(t, result.Adjustments)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "beyond adjustment range")
}

func TestReconcile_DropsSingleExcessTransaction(t *testing.T) {
	// A daily balance row misparsed as a deposit shows up as an excess
	// equal to its own amount.
	text := "Deposits and other additions 5,000.00"
	txns := []model.RawTransaction{
		deposit(25, "DEPOSIT", 3_000.00),
		deposit(26, "DEPOSIT", 2_000.00),
		deposit(27, "BALANCE ROW MISPARSE", 1_500.00),
	}

	result := New().Reconcile(txns, text, depositTemplate())

	require.Len(t, result.Transactions, 2)
	assert.InDelta(t, 5_000.00, result.ParsedDeposits, 0.001)
	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, "dropped", result.Adjustments[0].Kind)
	assert.Contains(t, result.Adjustments[0].Description, "BALANCE ROW MISPARSE")
}

func TestReconcile_DropsPairSummingToExcess(t *testing.T) {
	text := "Deposits and other additions 5,000.00"
	txns := []model.RawTransaction{
		deposit(25, "DEPOSIT", 3_000.00),
		deposit(26, "DEPOSIT", 2_000.00),
		deposit(27, "MISPARSE A", 900.00),
		deposit(28, "MISPARSE B", 600.00),
	}

	result := New().Reconcile(txns, text, depositTemplate())

	require.Len(t, result.Transactions, 2)
	assert.InDelta(t, 5_000.00, result.ParsedDeposits, 0.001)
	assert.Len(t, result.Adjustments, 2)
}

func TestReconcile_RoundExcessCorrectsDigitMisread(t *testing.T) {
	// 72,301.24 read where 22,301.24 was printed: excess of exactly
	// 50,000 over the printed total.
	text := "Deposits and other additions 24,301.24"
	txns := []model.RawTransaction{
		deposit(25, "WIRE IN", 72_301.24),
		deposit(26, "DEPOSIT", 2_000.00),
	}

	result := New().Reconcile(txns, text, depositTemplate())

	require.Len(t, result.Transactions, 2)
	corrected := result.Transactions[0]
	assert.InDelta(t, 22_301.24, corrected.Amount, 0.001)
	assert.Equal(t, AdjustmentSource, corrected.SourcePattern)
	assert.InDelta(t, adjustmentConfidence, corrected.Confidence, 0.001,
		"a corrected amount is a guess and must stay flagged")
	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, "corrected", result.Adjustments[0].Kind)
}

func TestReconcile_NeverRemovesMoreThanNecessary(t *testing.T) {
	// No transaction or pair matches the excess and it is not a round
	// number: the parse must be left alone.
	text := "Deposits and other additions 4,000.00"
	txns := []model.RawTransaction{
		deposit(25, "DEPOSIT", 3_000.00),
		deposit(26, "DEPOSIT", 1_777.77),
	}

	result := New().Reconcile(txns, text, depositTemplate())

	assert.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Adjustments)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no safe repair")
}

func TestReconcile_NoSummaryPatternsPassesThrough(t *testing.T) {
	txns := []model.RawTransaction{deposit(25, "DEPOSIT", 100.00)}
	result := New().Reconcile(txns, "whatever text", &model.BankTemplate{Name: "bare"})

	assert.Equal(t, txns, result.Transactions)
	assert.Nil(t, result.ExpectedDeposits)
	assert.Empty(t, result.Adjustments)
}

func TestReconcile_WithdrawalSide(t *testing.T) {
	text := "Checks and other deductions 1,000.00"
	txns := []model.RawTransaction{
		deposit(25, "CHECK #1001", -700.00),
		deposit(26, "SERVICE CHARGE", -275.00),
	}

	result := New().Reconcile(txns, text, depositTemplate())

	// Short 25.00 (2.5% of 1,000): synthetic adjustment on the
	// withdrawal side arrives negative.
	require.Len(t, result.Transactions, 3)
	assert.InDelta(t, -25.00, result.Transactions[2].Amount, 0.001)
	assert.InDelta(t, 1_000.00, result.ParsedWithdrawals, 0.001)
}

func TestTotalsDeviation(t *testing.T) {
	text := "Deposits and other additions 1,000.00"

	deviation, ok := New().TotalsDeviation([]model.RawTransaction{
		deposit(25, "DEPOSIT", 100.00),
	}, text, depositTemplate())
	require.True(t, ok)
	assert.InDelta(t, 0.90, deviation, 0.001, "parsed 100 of a printed 1,000")

	deviation, ok = New().TotalsDeviation([]model.RawTransaction{
		deposit(25, "DEPOSIT", 600.00),
		deposit(26, "WIRE IN", 400.00),
	}, text, depositTemplate())
	require.True(t, ok)
	assert.InDelta(t, 0, deviation, 0.001)
}

func TestTotalsDeviation_WorstSideWins(t *testing.T) {
	text := "Deposits and other additions 1,000.00\n" +
		"Checks and other deductions 500.00"
	txns := []model.RawTransaction{
		deposit(25, "DEPOSIT", 950.00),
		deposit(26, "CHECK #1001", -100.00),
	}

	deviation, ok := New().TotalsDeviation(txns, text, depositTemplate())
	require.True(t, ok)
	assert.InDelta(t, 0.80, deviation, 0.001, "withdrawals are off by 80%, deposits only 5%")
}

func TestTotalsDeviation_NoPrintedTotals(t *testing.T) {
	txns := []model.RawTransaction{deposit(25, "DEPOSIT", 100.00)}

	_, ok := New().TotalsDeviation(txns, "no totals here", depositTemplate())
	assert.False(t, ok)

	_, ok = New().TotalsDeviation(txns, "anything", nil)
	assert.False(t, ok)
}

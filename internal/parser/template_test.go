package parser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func pncTestTemplate() *model.BankTemplate {
	return &model.BankTemplate{
		Name:        "pnc",
		Identifiers: []string{"PNC BANK", "pnc.com"},
		DateFormat:  "MM/DD",
		Patterns: []model.ExtractionPattern{
			{
				Name:      "date_amount_desc",
				Pattern:   `^(\d{2}/\d{2})\s+([\d,]+\.\d{2})\s+(.+)$`,
				DateGroup: 1, AmtGroup: 2, DescGroup: 3,
				Kind: model.KindAuto,
			},
			{
				Name:       "numbered_check",
				Pattern:    `^(\d{3,5})\s+(\d{2}/\d{2})\s+([\d,]+\.\d{2})\s*$`,
				CheckGroup: 1, DateGroup: 2, AmtGroup: 3,
				Kind: model.KindWithdrawal,
			},
		},
		Sections: model.SectionMarkers{
			DepositStart:    []string{"deposits and other additions"},
			WithdrawalStart: []string{"checks and other deductions"},
			CheckStart:      []string{"checks and substitute checks"},
			End:             []string{"daily balance"},
		},
		DepositKeywords:    []string{"deposit", "ach credit"},
		WithdrawalKeywords: []string{"debit", "fee", "service charge"},
		SkipPatterns:       []string{"page", "total"},
	}
}

const pncStatement = `PNC BANK
For the period 07/01/2025 to 07/31/2025

Deposits and Other Additions
07/15  80,000.00  ACH CREDIT HUD TREAS 310 MISC PAY

Checks and Substitute Checks
1500  07/16  720.00

Checks and Other Deductions
07/18  35.00  MONTHLY SERVICE CHARGE

Daily Balance
07/31  82,000.00
`

func TestTemplateParser_Extract(t *testing.T) {
	p := NewTemplateParser(fixedClock)
	txns, err := p.Extract(context.Background(), pncStatement, pncTestTemplate())
	require.NoError(t, err)
	require.Len(t, txns, 3)

	deposit := txns[0]
	assert.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), deposit.Date)
	assert.Equal(t, "ACH CREDIT HUD TREAS 310 MISC PAY", deposit.Description)
	assert.InDelta(t, 80000.00, deposit.Amount, 0.001)
	assert.Equal(t, "pnc:date_amount_desc", deposit.SourcePattern)
	assert.InDelta(t, 85, deposit.Confidence, 0.001)

	check := txns[1]
	assert.Equal(t, "1500", check.CheckNumber)
	assert.Equal(t, "CHECK #1500", check.Description)
	assert.InDelta(t, -720.00, check.Amount, 0.001)
	assert.Equal(t, "pnc:numbered_check", check.SourcePattern)

	charge := txns[2]
	assert.InDelta(t, -35.00, charge.Amount, 0.001)
}

func TestTemplateParser_SkipsBalanceTable(t *testing.T) {
	p := NewTemplateParser(fixedClock)
	txns, err := p.Extract(context.Background(), pncStatement, pncTestTemplate())
	require.NoError(t, err)

	for _, txn := range txns {
		assert.NotEqual(t, 31, txn.Date.Day(), "balance table row leaked through: %+v", txn)
	}
}

func TestTemplateParser_OutOfRangeGroupDoesNotPanic(t *testing.T) {
	// A hand-written template file can declare a group index past the
	// pattern's last capture group. Load-time validation rejects it, but
	// extraction must stay safe for templates built in code.
	tmpl := &model.BankTemplate{
		Name:       "broken",
		DateFormat: "MM/DD",
		Patterns: []model.ExtractionPattern{
			{
				Name:      "date_desc_amount",
				Pattern:   `^(\d{1,2}/\d{1,2})\s+(.+?)\s+([\d,]+\.\d{2})$`,
				DateGroup: 1, DescGroup: 2, AmtGroup: 5,
				Kind: model.KindAuto,
			},
		},
	}

	p := NewTemplateParser(fixedClock)
	txns, err := p.Extract(context.Background(), "07/18  ACH PMT VENDOR SVCS  35.00", tmpl)
	require.NoError(t, err)

	// The broken pattern claims nothing; the line falls through to the
	// garbled-line recovery instead.
	require.Len(t, txns, 1)
	assert.Equal(t, "broken:garbled_recovery", txns[0].SourcePattern)
}

func TestTemplateParser_RequiresTemplate(t *testing.T) {
	p := NewTemplateParser(fixedClock)
	_, err := p.Extract(context.Background(), "any text", nil)
	assert.Error(t, err)
}

func TestTemplateParser_RepairsDamagedAmount(t *testing.T) {
	// A misread digit in the amount keeps the pattern from matching, but
	// the garbled-line recovery still repairs and extracts it.
	text := `PNC BANK
For the period 07/01/2025 to 07/31/2025

Checks and Other Deductions
07/18  3S.00  MONTHLY SERVICE CHARGE
`
	p := NewTemplateParser(fixedClock)
	txns, err := p.Extract(context.Background(), text, pncTestTemplate())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.InDelta(t, -34.00, txns[0].Amount, 0.001)
	assert.Contains(t, txns[0].Description, "MONTHLY SERVICE CHARGE")
	assert.Equal(t, "pnc:garbled_recovery", txns[0].SourcePattern)
}

func TestDetectBank(t *testing.T) {
	templates := map[string]*model.BankTemplate{
		"pnc": pncTestTemplate(),
		"acme": {
			Name:        "acme",
			Identifiers: []string{"ACME TRUST"},
		},
	}

	assert.Equal(t, "pnc", DetectBank("statement from PNC BANK of ohio", templates))
	assert.Equal(t, "pnc", DetectBank("visit pnc.com for details", templates))
	assert.Equal(t, "acme", DetectBank("ACME TRUST monthly statement", templates))
	assert.Equal(t, "", DetectBank("SOME OTHER BANK", templates))
}

func TestRegistry(t *testing.T) {
	def := NewTemplateParser(fixedClock)
	fallback := NewGenericParser(fixedClock)
	r := NewRegistry(def, fallback)

	assert.Same(t, def, r.ForBank("pnc").(*TemplateParser))
	assert.Equal(t, "generic", r.Fallback().Name())

	r.Register("weird", fallback)
	assert.Equal(t, "generic", r.ForBank("weird").Name())
}

func TestStatementYear(t *testing.T) {
	now := fixedClock()

	assert.Equal(t, 2023, StatementYear("For the period 12/01/2023 through 12/31/2023", now))
	assert.Equal(t, 2024, StatementYear("no year printed here", now))
	// Implausible future years fall back to the current year.
	assert.Equal(t, 2024, StatementYear("printed 2099", now))
}

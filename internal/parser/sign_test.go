package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func TestDecideSign(t *testing.T) {
	tmpl := &model.BankTemplate{
		DepositKeywords:    []string{"deposit", "credit"},
		WithdrawalKeywords: []string{"fee", "check"},
	}

	tests := []struct {
		name           string
		pattern        *model.ExtractionPattern
		description    string
		section        Section
		wantWithdrawal bool
	}{
		{
			name:           "parenthesized polarity outranks everything",
			pattern:        &model.ExtractionPattern{Kind: model.KindDeposit, Parenthesized: true},
			description:    "DEPOSIT REVERSAL",
			section:        SectionDeposits,
			wantWithdrawal: true,
		},
		{
			name:           "debit marker overrides deposits section",
			pattern:        &model.ExtractionPattern{Kind: model.KindAuto},
			description:    "ACH CORP DEBIT PAYROLL INTUIT",
			section:        SectionDeposits,
			wantWithdrawal: true,
		},
		{
			name:           "declared kind wins over section",
			pattern:        &model.ExtractionPattern{Kind: model.KindDeposit},
			description:    "MISC ITEM",
			section:        SectionWithdrawals,
			wantWithdrawal: false,
		},
		{
			name:           "section context when pattern is auto",
			pattern:        &model.ExtractionPattern{Kind: model.KindAuto},
			description:    "MISC ITEM",
			section:        SectionWithdrawals,
			wantWithdrawal: true,
		},
		{
			name:           "keyword list when no section",
			pattern:        &model.ExtractionPattern{Kind: model.KindAuto},
			description:    "MOBILE DEPOSIT",
			section:        SectionNone,
			wantWithdrawal: false,
		},
		{
			name:           "conservative default is withdrawal",
			pattern:        &model.ExtractionPattern{Kind: model.KindAuto},
			description:    "UNRECOGNIZABLE ITEM",
			section:        SectionNone,
			wantWithdrawal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideSign(tt.pattern, tt.description, tt.section, tmpl)
			assert.Equal(t, tt.wantWithdrawal, got)
		})
	}
}

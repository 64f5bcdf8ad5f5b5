package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestTemplate() *BankTemplate {
	return &BankTemplate{
		Name:        "testbank",
		Identifiers: []string{"TEST BANK"},
		DateFormat:  "MM/DD",
		Patterns: []ExtractionPattern{
			{
				Name:      "date_desc_amount",
				Pattern:   `^(\d{1,2}/\d{1,2})\s+(.+?)\s+([\d,]+\.\d{2})$`,
				DateGroup: 1, DescGroup: 2, AmtGroup: 3,
				Kind: KindAuto,
			},
		},
	}
}

func TestBankTemplate_Validate(t *testing.T) {
	require.NoError(t, validTestTemplate().Validate())

	tests := []struct {
		name   string
		mutate func(*BankTemplate)
		want   string
	}{
		{
			"missing name",
			func(tmpl *BankTemplate) { tmpl.Name = "" },
			"name is required",
		},
		{
			"no identifiers",
			func(tmpl *BankTemplate) { tmpl.Identifiers = nil },
			"identifier",
		},
		{
			"bad date format",
			func(tmpl *BankTemplate) { tmpl.DateFormat = "DD-MM" },
			"date format",
		},
		{
			"no patterns",
			func(tmpl *BankTemplate) { tmpl.Patterns = nil },
			"transaction pattern",
		},
		{
			"invalid regex",
			func(tmpl *BankTemplate) { tmpl.Patterns[0].Pattern = `([unclosed` },
			"pattern",
		},
		{
			"missing amount group",
			func(tmpl *BankTemplate) { tmpl.Patterns[0].AmtGroup = 0 },
			"no amount group",
		},
		{
			"amount group past last capture group",
			func(tmpl *BankTemplate) { tmpl.Patterns[0].AmtGroup = 5 },
			"outside the pattern's 3 capture groups",
		},
		{
			"check group past last capture group",
			func(tmpl *BankTemplate) { tmpl.Patterns[0].CheckGroup = 4 },
			"outside the pattern's 3 capture groups",
		},
		{
			"negative group index",
			func(tmpl *BankTemplate) { tmpl.Patterns[0].DescGroup = -1 },
			"outside the pattern's 3 capture groups",
		},
		{
			"invalid kind",
			func(tmpl *BankTemplate) { tmpl.Patterns[0].Kind = "sideways" },
			"invalid kind",
		},
		{
			"invalid summary regex",
			func(tmpl *BankTemplate) { tmpl.Summary.TotalDeposits = `([broken` },
			"summary pattern",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTestTemplate()
			tt.mutate(tmpl)

			err := tmpl.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

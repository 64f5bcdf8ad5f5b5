package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
	"github.com/spf13/viper"
)

// LoadTemplates returns the bank template set: the built-in templates plus
// any JSON template files found in the configured template directory.
// Directory templates override built-ins with the same name. The set is
// loaded once at startup; adding a bank means adding a template file.
func LoadTemplates() (map[string]*model.BankTemplate, error) {
	templates := make(map[string]*model.BankTemplate)
	for _, t := range builtinTemplates() {
		templates[t.Name] = t
	}

	dir := ExpandPath(viper.GetString("templates.dir"))
	if dir == "" {
		return templates, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return templates, nil
		}
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		tmpl, err := LoadTemplateFile(path)
		if err != nil {
			return nil, err
		}
		templates[tmpl.Name] = tmpl
	}

	return templates, nil
}

// LoadTemplateFile reads and validates a single JSON template file.
func LoadTemplateFile(path string) (*model.BankTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var tmpl model.BankTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}

	return &tmpl, nil
}

// builtinTemplates covers the banks this tool grew up on. Each is plain
// data; outlier layouts get a parser strategy keyed by template name
// instead of special cases in the engine.
func builtinTemplates() []*model.BankTemplate {
	return []*model.BankTemplate{
		{
			Name:        "truist",
			Identifiers: []string{"TRUIST", "Truist Bank"},
			DateFormat:  "MM/DD",
			Patterns: []model.ExtractionPattern{
				{
					Name:      "date_desc_amount",
					Pattern:   `^(\d{1,2}/\d{1,2})\s+(.+?)\s+([\d,]+\.\d{2})$`,
					DateGroup: 1, DescGroup: 2, AmtGroup: 3,
					Kind: model.KindAuto,
				},
				{
					Name:       "numbered_check",
					Pattern:    `^(\d{3,5})\s+(\d{1,2}/\d{1,2})\s+([\d,]+\.\d{2})\s*$`,
					CheckGroup: 1, DateGroup: 2, AmtGroup: 3,
					Kind: model.KindWithdrawal,
				},
			},
			Sections: model.SectionMarkers{
				DepositStart:    []string{"deposits, credits and interest"},
				WithdrawalStart: []string{"other withdrawals, debits and service charges"},
				CheckStart:      []string{"checks"},
				End:             []string{"daily balance summary"},
			},
			DepositKeywords:    []string{"deposit", "credit", "interest"},
			WithdrawalKeywords: []string{"debit", "withdrawal", "check", "fee", "charge"},
			SkipPatterns:       []string{"balance", "summary", "total", "page", "continued"},
			Summary: model.SummaryPatterns{
				TotalDeposits:    `(?i)total deposits, credits and interest[^\d]*([\d,]+\.\d{2})`,
				TotalWithdrawals: `(?i)total other withdrawals, debits and service charges[^\d]*([\d,]+\.\d{2})`,
			},
		},
		{
			Name:        "pnc",
			Identifiers: []string{"PNC BANK", "PNC Bank", "pnc.com"},
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
				DepositStart:    []string{"ach additions", "other additions", "deposits and other additions"},
				WithdrawalStart: []string{"ach deductions", "other deductions", "service charges and fees", "checks and other deductions"},
				CheckStart:      []string{"checks and substitute checks"},
				End:             []string{"daily balance", "balance summary", "detail of services used"},
			},
			DepositKeywords:    []string{"deposit", "ach credit", "addition", "interest payment"},
			WithdrawalKeywords: []string{"debit", "deduction", "check", "service charge", "fee"},
			SkipPatterns:       []string{"balance", "summary", "total", "page", "average", "statement period"},
			OCRFixes: map[string]string{
				"0eduction": "Deduction",
				"Additi0n":  "Addition",
			},
			Summary: model.SummaryPatterns{
				TotalDeposits:    `(?i)deposits and other additions[^\d]*([\d,]+\.\d{2})`,
				TotalWithdrawals: `(?i)checks and other deductions[^\d]*([\d,]+\.\d{2})`,
			},
		},
		{
			Name:        "sovereign",
			Identifiers: []string{"SOVEREIGN BANK", "Sovereign Bank"},
			DateFormat:  "MM/DD/YYYY",
			RequiresOCR: true,
			Patterns: []model.ExtractionPattern{
				{
					Name:      "date_desc_amount",
					Pattern:   `^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+([\d,]+\.\d{2})$`,
					DateGroup: 1, DescGroup: 2, AmtGroup: 3,
					Kind: model.KindAuto,
				},
				{
					Name:      "parenthesized_withdrawal",
					Pattern:   `^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+\(([\d,]+\.\d{2})\)$`,
					DateGroup: 1, DescGroup: 2, AmtGroup: 3,
					Kind:      model.KindWithdrawal, Parenthesized: true,
				},
			},
			Sections: model.SectionMarkers{
				DepositStart:    []string{"deposits and other credits"},
				WithdrawalStart: []string{"withdrawals and other debits"},
				End:             []string{"balance activity", "statement summary"},
			},
			DepositKeywords:    []string{"deposit", "credit", "transfer in"},
			WithdrawalKeywords: []string{"withdrawal", "debit", "check", "transfer out"},
			SkipPatterns:       []string{"balance", "summary", "total", "page"},
			Summary: model.SummaryPatterns{
				TotalDeposits:    `(?i)total deposits[^\d]*([\d,]+\.\d{2})`,
				TotalWithdrawals: `(?i)total withdrawals[^\d]*([\d,]+\.\d{2})`,
			},
		},
		{
			Name:        "crossfirst",
			Identifiers: []string{"CROSSFIRST", "CrossFirst Bank"},
			DateFormat:  "MM/DD",
			Patterns: []model.ExtractionPattern{
				{
					Name:      "date_desc_amount",
					Pattern:   `^(\d{1,2}/\d{1,2})\s+(.+?)\s+([\d,]+\.\d{2})[-]?$`,
					DateGroup: 1, DescGroup: 2, AmtGroup: 3,
					Kind: model.KindAuto,
				},
			},
			Sections: model.SectionMarkers{
				DepositStart:    []string{"credits"},
				WithdrawalStart: []string{"debits"},
				End:             []string{"daily balance information"},
			},
			DepositKeywords:    []string{"deposit", "credit", "incoming wire"},
			WithdrawalKeywords: []string{"debit", "check", "outgoing wire", "fee"},
			SkipPatterns:       []string{"balance", "summary", "total", "page"},
			Summary: model.SummaryPatterns{
				TotalDeposits:    `(?i)total credits[^\d]*([\d,]+\.\d{2})`,
				TotalWithdrawals: `(?i)total debits[^\d]*([\d,]+\.\d{2})`,
			},
		},
	}
}

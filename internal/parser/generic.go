package parser

import (
	"context"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// GenericParser is the fallback strategy for unrecognized banks and for
// template runs that failed validation. It reuses the template engine
// against a universal pattern set and must stay purely local: statement
// text never leaves the process on this path.
type GenericParser struct {
	engine *TemplateParser
	tmpl   *model.BankTemplate
}

// NewGenericParser builds the fallback extractor.
func NewGenericParser(clock func() time.Time) *GenericParser {
	return &GenericParser{
		engine: NewTemplateParser(clock),
		tmpl:   universalTemplate(),
	}
}

// Name implements service.ParserStrategy.
func (p *GenericParser) Name() string { return "generic" }

// Extract implements service.ParserStrategy. The passed template is
// ignored: by the time the fallback runs, the template either failed or
// never matched.
func (p *GenericParser) Extract(ctx context.Context, text string, _ *model.BankTemplate) ([]model.RawTransaction, error) {
	txns, err := p.engine.Extract(ctx, text, p.tmpl)
	if err != nil {
		return nil, err
	}
	// Generic matches are weaker evidence than a bank-specific layout.
	for i := range txns {
		if txns[i].Confidence > confidenceGeneric {
			txns[i].Confidence = confidenceGeneric
		}
	}
	return txns, nil
}

// universalTemplate describes the line shapes that recur across bank
// statements generally, ordered from most to least specific.
func universalTemplate() *model.BankTemplate {
	return &model.BankTemplate{
		Name:        "generic",
		Identifiers: []string{"*"},
		DateFormat:  "MM/DD",
		Patterns: []model.ExtractionPattern{
			{
				Name:       "numbered_check",
				Pattern:    `^(\d{3,5})\s+(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+([\d,]+\.\d{2})\s*$`,
				CheckGroup: 1, DateGroup: 2, AmtGroup: 3,
				Kind: model.KindWithdrawal,
			},
			{
				Name:       "check_keyword",
				Pattern:    `(?i)^(CHECK\s*#?\s*(\d{3,6}))\b.*?([\d,]+\.\d{2})\s*$`,
				DescGroup:  1,
				CheckGroup: 2, AmtGroup: 3,
				Kind: model.KindWithdrawal,
			},
			{
				Name:      "parenthesized_withdrawal",
				Pattern:   `^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(.+?)\s+\(([\d,]+\.\d{2})\)\s*$`,
				DateGroup: 1, DescGroup: 2, AmtGroup: 3,
				Kind:      model.KindWithdrawal, Parenthesized: true,
			},
			{
				Name:      "trailing_minus",
				Pattern:   `^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(.+?)\s+([\d,]+\.\d{2})-\s*$`,
				DateGroup: 1, DescGroup: 2, AmtGroup: 3,
				Kind: model.KindWithdrawal,
			},
			{
				Name:      "date_desc_amount",
				Pattern:   `^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(.+?)\s+\$?([\d,]+\.\d{2})\s*$`,
				DateGroup: 1, DescGroup: 2, AmtGroup: 3,
				Kind: model.KindAuto,
			},
			{
				Name:      "date_amount_desc",
				Pattern:   `^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+\$?([\d,]+\.\d{2})\s+(\D.*)$`,
				DateGroup: 1, AmtGroup: 2, DescGroup: 3,
				Kind: model.KindAuto,
			},
			{
				Name:      "desc_date_amount",
				Pattern:   `^(\D.{2,60}?)\s+(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+\$?([\d,]+\.\d{2})\s*$`,
				DescGroup: 1, DateGroup: 2, AmtGroup: 3,
				Kind: model.KindAuto,
			},
			{
				Name:     "amount_first",
				Pattern:  `^\$?([\d,]+\.\d{2})\s+(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(\D.*)$`,
				AmtGroup: 1, DateGroup: 2, DescGroup: 3,
				Kind: model.KindAuto,
			},
		},
		Sections: model.SectionMarkers{
			DepositStart:    []string{"deposits", "credits", "additions"},
			WithdrawalStart: []string{"withdrawals", "debits", "deductions", "checks paid", "service charges"},
			CheckStart:      []string{"checks"},
			End:             []string{"daily balance", "balance summary", "statement summary"},
		},
		DepositKeywords:    []string{"deposit", "credit", "interest", "refund", "transfer in", "ach credit"},
		WithdrawalKeywords: []string{"withdrawal", "debit", "check", "fee", "charge", "payment", "transfer out", "ach debit"},
		SkipPatterns:       []string{"balance", "summary", "total", "subtotal", "page", "continued", "statement period", "account number", "average"},
		Summary: model.SummaryPatterns{
			TotalDeposits:    `(?i)total\s+deposits[^\d]*([\d,]+\.\d{2})`,
			TotalWithdrawals: `(?i)total\s+withdrawals[^\d]*([\d,]+\.\d{2})`,
		},
	}
}

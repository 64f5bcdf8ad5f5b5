package model

import (
	"fmt"
	"regexp"
)

// PatternKind declares which direction a transaction pattern produces.
type PatternKind string

// Pattern kind constants.
const (
	KindDeposit    PatternKind = "deposit"
	KindWithdrawal PatternKind = "withdrawal"
	KindAuto       PatternKind = "auto" // direction inferred from context
)

// ExtractionPattern is one named regex layout a bank uses for transaction
// lines. Group indices are 1-based capture group positions; a zero index
// means the field is absent from this layout.
type ExtractionPattern struct {
	Name       string      `json:"name"`
	Pattern    string      `json:"pattern"`
	DateGroup  int         `json:"date_group"`
	DescGroup  int         `json:"description_group"`
	AmtGroup   int         `json:"amount_group"`
	CheckGroup int         `json:"check_group,omitempty"`
	Kind       PatternKind `json:"type"`

	// Parenthesized declares that a parenthesized amount capture means a
	// withdrawal regardless of section or keywords.
	Parenthesized bool `json:"parenthesized,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern, compiling on first use.
func (p *ExtractionPattern) Regexp() (*regexp.Regexp, error) {
	if p.re == nil {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Name, err)
		}
		p.re = re
	}
	return p.re, nil
}

// SectionMarkers holds the literal phrases that open and close statement
// sections. All markers are matched case-insensitively as substrings.
type SectionMarkers struct {
	DepositStart    []string `json:"deposit_start"`
	WithdrawalStart []string `json:"withdrawal_start"`
	CheckStart      []string `json:"check_start"`
	End             []string `json:"end"`
}

// SummaryPatterns locate the bank's own printed totals in the statement.
type SummaryPatterns struct {
	TotalDeposits    string `json:"total_deposits"`
	TotalWithdrawals string `json:"total_withdrawals"`
}

// BankTemplate is the declarative, per-bank statement description. Adding a
// bank means adding a template, not code. Templates are loaded once at
// startup and treated as immutable afterwards.
type BankTemplate struct {
	Name               string              `json:"name"`
	Identifiers        []string            `json:"identifiers"`
	DateFormat         string              `json:"date_format"` // "MM/DD" or "MM/DD/YYYY"
	Patterns           []ExtractionPattern `json:"transaction_patterns"`
	Sections           SectionMarkers      `json:"sections"`
	DepositKeywords    []string            `json:"deposit_keywords"`
	WithdrawalKeywords []string            `json:"withdrawal_keywords"`
	SkipPatterns       []string            `json:"skip_patterns"`
	OCRFixes           map[string]string   `json:"ocr_fixes"`
	Summary            SummaryPatterns     `json:"summary_patterns"`
	RequiresOCR        bool                `json:"requires_ocr"`
}

// Validate checks template integrity at load time.
func (t *BankTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(t.Identifiers) == 0 {
		return fmt.Errorf("template %q: at least one identifier is required", t.Name)
	}
	switch t.DateFormat {
	case "MM/DD", "MM/DD/YYYY":
	default:
		return fmt.Errorf("template %q: unsupported date format %q", t.Name, t.DateFormat)
	}
	if len(t.Patterns) == 0 {
		return fmt.Errorf("template %q: at least one transaction pattern is required", t.Name)
	}
	for i := range t.Patterns {
		p := &t.Patterns[i]
		re, err := p.Regexp()
		if err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
		if p.AmtGroup == 0 {
			return fmt.Errorf("template %q: pattern %q has no amount group", t.Name, p.Name)
		}
		// Group indices address capture groups in the compiled regex; an
		// index past the last group would panic at extraction time.
		for _, g := range []struct {
			name string
			idx  int
		}{
			{"date", p.DateGroup},
			{"description", p.DescGroup},
			{"amount", p.AmtGroup},
			{"check", p.CheckGroup},
		} {
			if g.idx < 0 || g.idx > re.NumSubexp() {
				return fmt.Errorf("template %q: pattern %q %s group %d is outside the pattern's %d capture groups",
					t.Name, p.Name, g.name, g.idx, re.NumSubexp())
			}
		}
		switch p.Kind {
		case KindDeposit, KindWithdrawal, KindAuto:
		default:
			return fmt.Errorf("template %q: pattern %q has invalid kind %q", t.Name, p.Name, p.Kind)
		}
	}
	for _, expr := range []string{t.Summary.TotalDeposits, t.Summary.TotalWithdrawals} {
		if expr == "" {
			continue
		}
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("template %q: summary pattern: %w", t.Name, err)
		}
	}
	return nil
}

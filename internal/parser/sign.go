package parser

import (
	"regexp"
	"strings"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// debitMarkerRe finds a literal debit marker in a description. Several
// banks print debit-type entries inside a nominal deposits section, so this
// marker outranks section context everywhere it appears.
var debitMarkerRe = regexp.MustCompile(`(?i)\bdebit\b`)

// HasDebitMarker reports whether a description carries a literal debit word.
func HasDebitMarker(description string) bool {
	return debitMarkerRe.MatchString(description)
}

// DecideSign resolves transaction direction. The decision order is fixed:
// explicit pattern polarity, the literal debit marker, the pattern's
// declared kind, the current section, the template keyword lists, and
// finally a conservative default of withdrawal.
func DecideSign(pattern *model.ExtractionPattern, description string, section Section, tmpl *model.BankTemplate) (withdrawal bool) {
	if pattern != nil && pattern.Parenthesized {
		return true
	}

	if HasDebitMarker(description) {
		return true
	}

	if pattern != nil {
		switch pattern.Kind {
		case model.KindWithdrawal:
			return true
		case model.KindDeposit:
			return false
		}
	}

	switch section {
	case SectionDeposits:
		return false
	case SectionWithdrawals, SectionChecks:
		return true
	}

	if tmpl != nil {
		if matchesKeyword(description, tmpl.WithdrawalKeywords) {
			return true
		}
		if matchesKeyword(description, tmpl.DepositKeywords) {
			return false
		}
	}

	// Unknown direction defaults to withdrawal: overstating outflow gets
	// caught by reconciliation, silently inventing income does not.
	return true
}

func matchesKeyword(description string, keywords []string) bool {
	lower := strings.ToLower(description)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// Package parser extracts raw transactions from statement text using
// declarative bank templates, with a generic heuristic extractor as the
// fallback for unrecognized layouts.
package parser

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"
)

// DetectBank matches statement text against every template's identifier
// list. First literal match wins; empty means unknown bank and the caller
// falls back to the generic extractor. Template iteration is ordered by
// name so detection is deterministic when identifiers overlap.
func DetectBank(text string, templates map[string]*model.BankTemplate) string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, id := range templates[name].Identifiers {
			if id != "" && strings.Contains(text, id) {
				return name
			}
		}
	}
	return ""
}

// Registry maps bank names to parser strategies. Outlier layouts that a
// declarative template cannot describe get a dedicated strategy here; every
// other bank uses the shared template engine.
type Registry struct {
	strategies map[string]service.ParserStrategy
	fallback   service.ParserStrategy
	def        service.ParserStrategy
}

// NewRegistry builds the strategy registry around the default template
// engine and the generic fallback.
func NewRegistry(def, fallback service.ParserStrategy) *Registry {
	return &Registry{
		strategies: make(map[string]service.ParserStrategy),
		def:        def,
		fallback:   fallback,
	}
}

// Register installs a bank-specific strategy.
func (r *Registry) Register(bank string, strategy service.ParserStrategy) {
	r.strategies[bank] = strategy
}

// ForBank returns the strategy for a detected bank, or the default engine.
func (r *Registry) ForBank(bank string) service.ParserStrategy {
	if s, ok := r.strategies[bank]; ok {
		return s
	}
	return r.def
}

// Fallback returns the generic extractor.
func (r *Registry) Fallback() service.ParserStrategy {
	return r.fallback
}

var statementYearRe = regexp.MustCompile(`\b(20\d{2})\b`)

// StatementYear finds the statement year in the text, defaulting to the
// current year when none is printed. MM/DD templates need it to build full
// dates.
func StatementYear(text string, now time.Time) int {
	if m := statementYearRe.FindStringSubmatch(text); m != nil {
		year := int(m[1][2]-'0')*10 + int(m[1][3]-'0') + 2000
		if year >= 2000 && year <= now.Year()+1 {
			return year
		}
	}
	return now.Year()
}

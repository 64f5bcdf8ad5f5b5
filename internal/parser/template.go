package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Extraction confidence scores (0-100).
const (
	confidenceTemplate  = 85
	confidenceRecovered = 70
	confidenceGeneric   = 60
	confidenceGarbled   = 50
)

// TemplateParser is the default parser strategy: it walks statement lines
// through a template's ordered patterns while a section FSM tracks context.
type TemplateParser struct {
	clock func() time.Time
}

// NewTemplateParser creates the template engine. clock may be nil.
func NewTemplateParser(clock func() time.Time) *TemplateParser {
	if clock == nil {
		clock = time.Now
	}
	return &TemplateParser{clock: clock}
}

// Name implements service.ParserStrategy.
func (p *TemplateParser) Name() string { return "template" }

// Extract implements service.ParserStrategy.
func (p *TemplateParser) Extract(ctx context.Context, text string, tmpl *model.BankTemplate) ([]model.RawTransaction, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template parser requires a template")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	year := StatementYear(text, p.clock())
	tracker := NewSectionTracker(tmpl.Sections)

	var txns []model.RawTransaction
	var lastDate time.Time

	for _, rawLine := range strings.Split(text, "\n") {
		line := CleanLine(rawLine, tmpl.OCRFixes)
		if line == "" {
			continue
		}
		if tracker.Observe(line) {
			continue
		}
		if IsDailyBalanceLine(line) {
			continue
		}
		if ShouldSkipLine(line, tmpl.SkipPatterns) {
			continue
		}

		txn, matched := p.matchLine(line, tmpl, tracker.Current(), year, lastDate)
		if !matched {
			// A line with both a date and an amount that no pattern
			// claimed is usually OCR damage, not a layout we don't know.
			txn, matched = recoverGarbledLine(line, tmpl, tracker.Current(), year)
		}
		if !matched {
			continue
		}

		if err := txn.Validate(); err != nil {
			slog.Debug("Discarding invalid extraction",
				"line", line,
				"error", err)
			continue
		}

		lastDate = txn.Date
		txns = append(txns, txn)
	}

	return txns, nil
}

// matchLine tries each template pattern in declared order against one line.
func (p *TemplateParser) matchLine(line string, tmpl *model.BankTemplate, section Section, year int, lastDate time.Time) (model.RawTransaction, bool) {
	for i := range tmpl.Patterns {
		pattern := &tmpl.Patterns[i]
		re, err := pattern.Regexp()
		if err != nil {
			continue
		}
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		txn, ok := buildTransaction(m, pattern, line, tmpl, section, year, lastDate)
		if !ok {
			continue
		}
		txn.SourcePattern = tmpl.Name + ":" + pattern.Name
		return txn, true
	}
	return model.RawTransaction{}, false
}

// buildTransaction assembles a RawTransaction from one regex match.
func buildTransaction(m []string, pattern *model.ExtractionPattern, line string, tmpl *model.BankTemplate, section Section, year int, lastDate time.Time) (model.RawTransaction, bool) {
	// Validate rejects out-of-range group indices at load time; guard here
	// too so a template that skipped validation cannot panic the batch.
	if pattern.AmtGroup < 1 || pattern.AmtGroup >= len(m) || pattern.DateGroup >= len(m) ||
		pattern.DescGroup >= len(m) || pattern.CheckGroup >= len(m) {
		return model.RawTransaction{}, false
	}

	confidence := float64(confidenceTemplate)

	amount, err := ParseAmount(m[pattern.AmtGroup])
	if err != nil {
		// The captured token was damaged; the rightmost valid amount on
		// the line is the next best read.
		recovered, ok := LastValidAmount(line)
		if !ok {
			return model.RawTransaction{}, false
		}
		amount = recovered
		confidence = confidenceRecovered
	}

	var date time.Time
	if pattern.DateGroup > 0 {
		date, err = ParseDate(m[pattern.DateGroup], tmpl.DateFormat, year)
		if err != nil {
			return model.RawTransaction{}, false
		}
	} else if !lastDate.IsZero() {
		date = lastDate
		confidence = min(confidence, confidenceRecovered)
	} else {
		date = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		confidence = confidenceGarbled
	}

	var checkNumber string
	if pattern.CheckGroup > 0 {
		checkNumber = strings.TrimSpace(m[pattern.CheckGroup])
	}

	var description string
	if pattern.DescGroup > 0 {
		description = strings.TrimSpace(m[pattern.DescGroup])
	}
	if description == "" && checkNumber != "" {
		description = "CHECK #" + checkNumber
	}
	if description == "" {
		return model.RawTransaction{}, false
	}

	if DecideSign(pattern, description, section, tmpl) {
		amount = -amount
	}

	return model.RawTransaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		CheckNumber: checkNumber,
		Confidence:  confidence,
	}, true
}

// recoverGarbledLine salvages lines damaged beyond pattern recognition but
// still carrying a parseable date and amount. The result is tagged with a
// distinct source and low confidence so review can find it.
func recoverGarbledLine(line string, tmpl *model.BankTemplate, section Section, year int) (model.RawTransaction, bool) {
	dates := dateTokenRe.FindAllString(line, -1)
	if len(dates) != 1 {
		return model.RawTransaction{}, false
	}
	date, err := ParseDate(dates[0], tmpl.DateFormat, year)
	if err != nil {
		return model.RawTransaction{}, false
	}

	amount, ok := LastValidAmount(line)
	if !ok {
		return model.RawTransaction{}, false
	}

	description := strings.TrimSpace(strings.Replace(line, dates[0], "", 1))
	description = strings.TrimSpace(anyAmountRe.ReplaceAllString(description, ""))
	if len(description) < 3 {
		return model.RawTransaction{}, false
	}

	if DecideSign(nil, description, section, tmpl) {
		amount = -amount
	}

	return model.RawTransaction{
		Date:          date,
		Description:   description,
		Amount:        amount,
		SourcePattern: tmpl.Name + ":garbled_recovery",
		Confidence:    confidenceGarbled,
	}, true
}

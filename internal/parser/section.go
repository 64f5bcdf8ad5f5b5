package parser

import (
	"regexp"
	"strings"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Section is the FSM state while walking statement lines.
type Section int

// Section states.
const (
	SectionNone Section = iota
	SectionDeposits
	SectionWithdrawals
	SectionChecks
)

func (s Section) String() string {
	switch s {
	case SectionDeposits:
		return "deposits"
	case SectionWithdrawals:
		return "withdrawals"
	case SectionChecks:
		return "checks"
	default:
		return "none"
	}
}

// summaryRowRe matches the trailing "count amount" pair that distinguishes
// a summary table row ("Checks and other deductions   14   5,210.33") from
// the identically-worded section header.
var summaryRowRe = regexp.MustCompile(`\d+\s+[\d,]+\.\d{2}\s*$`)

// SectionTracker walks lines through the declarative marker tables of one
// template. It replaces the per-bank conditional nesting such trackers tend
// to grow: every transition comes from template data.
type SectionTracker struct {
	markers model.SectionMarkers
	current Section
}

// NewSectionTracker starts in SectionNone.
func NewSectionTracker(markers model.SectionMarkers) *SectionTracker {
	return &SectionTracker{markers: markers}
}

// Current returns the active section.
func (t *SectionTracker) Current() Section {
	return t.current
}

// Observe feeds one cleaned line through the FSM and reports whether the
// line was a section boundary (and should not be parsed as a transaction).
func (t *SectionTracker) Observe(line string) bool {
	lower := strings.ToLower(line)

	if matchesAny(lower, t.markers.End) && !summaryRowRe.MatchString(line) {
		t.current = SectionNone
		return true
	}

	for _, transition := range []struct {
		markers []string
		next    Section
	}{
		{t.markers.CheckStart, SectionChecks},
		{t.markers.DepositStart, SectionDeposits},
		{t.markers.WithdrawalStart, SectionWithdrawals},
	} {
		if !matchesAny(lower, transition.markers) {
			continue
		}
		// A summary table repeats the section wording with counts and
		// totals appended; that row is data about a section, not the
		// section itself.
		if summaryRowRe.MatchString(line) {
			return false
		}
		t.current = transition.next
		return true
	}

	return false
}

func matchesAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

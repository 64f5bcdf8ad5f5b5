package classify

import (
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// historyMatcher applies learned patterns: rules distilled from manual
// corrections in earlier runs. It participates twice in the engine, once
// above the high-confidence threshold (highest priority) and once below it
// (as a tie-breaker), so a strong correction history outranks every
// heuristic while a weak one merely nudges.
type historyMatcher struct {
	patterns []model.LearnedPattern
	// aboveThreshold selects which half of the split this instance serves.
	aboveThreshold bool
}

func newHistoryMatcher(patterns []model.LearnedPattern, aboveThreshold bool) *historyMatcher {
	return &historyMatcher{patterns: patterns, aboveThreshold: aboveThreshold}
}

func (m *historyMatcher) match(txn model.RawTransaction) *candidate {
	var best *model.LearnedPattern
	for i := range m.patterns {
		p := &m.patterns[i]
		if !p.Matches(txn.Description) {
			continue
		}
		if m.aboveThreshold != (p.Confidence > model.ThresholdHigh) {
			continue
		}
		if best == nil || p.Confidence > best.Confidence {
			best = p
		}
	}
	if best == nil {
		return nil
	}

	priority := priorityHistoryHigh
	if !m.aboveThreshold {
		priority = priorityHistoryLow
	}

	return &candidate{
		Module:     best.Module,
		GLCode:     best.GLCode,
		FundCode:   best.FundCode,
		Payee:      best.Payee,
		Confidence: best.Confidence,
		Priority:   priority,
		MatchedBy:  "history",
		PatternID:  best.ID,
	}
}

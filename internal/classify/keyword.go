package classify

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Keyword matcher scoring weights.
const (
	keywordHitScore = 1.0
	patternHitScore = 2.0
	signNudgeScore  = 0.5
)

// keywordMatcher scores every module's vocabulary against a description
// and normalizes the best score by total hits across modules. One
// Aho-Corasick machine per module keeps scanning linear in the description
// length no matter how large the vocabularies grow.
type keywordMatcher struct {
	machines map[model.Module]*ahocorasick.Matcher
	keywords map[model.Module][]string
	patterns map[model.Module][]*regexp.Regexp
}

func newKeywordMatcher() *keywordMatcher {
	m := &keywordMatcher{
		machines: make(map[model.Module]*ahocorasick.Matcher),
		keywords: moduleKeywords,
		patterns: make(map[model.Module][]*regexp.Regexp),
	}
	for module, words := range moduleKeywords {
		m.machines[module] = ahocorasick.NewStringMatcher(words)
	}
	for module, exprs := range modulePatterns {
		for _, expr := range exprs {
			if re, err := regexp.Compile(expr); err == nil {
				m.patterns[module] = append(m.patterns[module], re)
			}
		}
	}
	return m
}

// match scores one transaction. Returns nil when nothing in any vocabulary
// fires.
func (m *keywordMatcher) match(txn model.RawTransaction) *candidate {
	lower := strings.ToLower(txn.Description)

	scores := make(map[model.Module]float64)
	total := 0.0

	for module, machine := range m.machines {
		for range machine.MatchThreadSafe([]byte(lower)) {
			scores[module] += keywordHitScore
			total += keywordHitScore
		}
	}
	for module, patterns := range m.patterns {
		for _, re := range patterns {
			if re.MatchString(txn.Description) {
				scores[module] += patternHitScore
				total += patternHitScore
			}
		}
	}

	if total == 0 {
		return nil
	}

	// Small sign nudge: inflows lean CR, outflows lean CD.
	if txn.Amount > 0 {
		scores[model.ModuleCR] += signNudgeScore
	} else {
		scores[model.ModuleCD] += signNudgeScore
	}
	total += signNudgeScore

	best := model.ModuleUnknown
	bestScore := 0.0
	for module, score := range scores {
		if score > bestScore {
			best = module
			bestScore = score
		}
	}
	if best == model.ModuleUnknown {
		return nil
	}

	return &candidate{
		Module:     best,
		GLCode:     glCodeFor(best, lower),
		Confidence: bestScore / (total + 1),
		Priority:   priorityKeyword,
		MatchedBy:  "keyword",
	}
}

// containsWord does a word-boundary substring check used by the GL rule
// tables and the refund detector.
func containsWord(lowerText, keyword string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(lowerText)
}

// refund language routes a positive amount to the vendor side: a vendor
// refund posts as a disbursement reversal, not as revenue.
var refundKeywords = []string{"refund", "credit memo", "return", "reversal", "rebate"}

func isRefund(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range refundKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"
)

// Matcher priorities; lower wins ties.
const (
	priorityOverride    = 0 // literal markers and bank phrases
	priorityHistoryHigh = 1
	priorityEntity      = 2 // vendor and customer tables
	priorityKeyword     = 3
	priorityHistoryLow  = 4
	priorityParserHint  = 5
)

// Fixed confidences for the override pre-pass.
const (
	debitMarkerConfidence = 0.99
	checkNumberConfidence = 0.95
	bankPhraseConfidence  = 0.90
	parserHintConfidence  = 0.50
)

// candidate is one matcher's proposal for a transaction.
type candidate struct {
	Module     model.Module
	GLCode     string
	FundCode   string
	Payee      string
	MatchedBy  string
	Confidence float64
	Priority   int
	PatternID  int64
}

// Engine merges the matcher layers into one ClassificationResult per
// transaction. Construct with New and reuse across a batch: reference data
// loads once from storage on first use.
type Engine struct {
	storage service.Storage

	loadOnce sync.Once
	loadErr  error

	keyword   *keywordMatcher
	vendors   *vendorMatcher
	customers *customerMatcher
	histHigh  *historyMatcher
	histLow   *historyMatcher
}

// New creates a classification engine backed by the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{storage: storage, keyword: newKeywordMatcher()}
}

// load pulls learned patterns and entity tables once per engine.
func (e *Engine) load(ctx context.Context) error {
	e.loadOnce.Do(func() {
		var patterns []model.LearnedPattern
		var vendors []model.Vendor
		var customers []model.Customer

		if e.storage != nil {
			var err error
			if patterns, err = e.storage.GetLearnedPatterns(ctx); err != nil {
				e.loadErr = fmt.Errorf("failed to load learned patterns: %w", err)
				return
			}
			if vendors, err = e.storage.GetAllVendors(ctx); err != nil {
				e.loadErr = fmt.Errorf("failed to load vendors: %w", err)
				return
			}
			if customers, err = e.storage.GetAllCustomers(ctx); err != nil {
				e.loadErr = fmt.Errorf("failed to load customers: %w", err)
				return
			}
		}

		e.histHigh = newHistoryMatcher(patterns, true)
		e.histLow = newHistoryMatcher(patterns, false)
		e.vendors = newVendorMatcher(vendors)
		e.customers = newCustomerMatcher(customers)
	})
	return e.loadErr
}

// Classify implements service.Classifier. hint carries the parser's module
// lean (from section context); ModuleUnknown means no lean.
func (e *Engine) Classify(ctx context.Context, txn model.RawTransaction, hint model.Module) (model.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ClassificationResult{}, err
	}
	if err := e.load(ctx); err != nil {
		return model.ClassificationResult{}, err
	}

	candidates := e.gather(txn, hint)
	chosen := selectCandidate(candidates, txn, isRefund(txn.Description))

	result := model.ClassificationResult{
		Transaction: txn,
		Module:      model.ModuleUnknown,
	}

	if chosen == nil {
		result.ConfidenceLevel = model.ConfidenceNone
		slog.Debug("No matcher fired",
			"description", txn.Description,
			"amount", txn.Amount)
		return result, nil
	}

	result.Module = chosen.Module
	result.GLCode = chosen.GLCode
	result.FundCode = chosen.FundCode
	result.Payee = chosen.Payee
	result.MatchedBy = chosen.MatchedBy
	result.Confidence = chosen.Confidence
	result.ConfidenceLevel = model.BucketConfidence(chosen.Confidence)

	if result.GLCode == "" {
		switch result.Module {
		case model.ModuleCR:
			result.GLCode = model.FallbackCRGL
		case model.ModuleCD:
			result.GLCode = model.FallbackCDGL
		}
	}
	if result.FundCode == "" {
		result.FundCode = model.DefaultFundCode
	}

	if chosen.PatternID != 0 && e.storage != nil {
		if err := e.storage.IncrementPatternUseCount(ctx, chosen.PatternID); err != nil {
			slog.Warn("Failed to record pattern use", "pattern_id", chosen.PatternID, "error", err)
		}
	}

	return result, nil
}

// gather runs every matcher layer and collects proposals.
func (e *Engine) gather(txn model.RawTransaction, hint model.Module) []candidate {
	var candidates []candidate
	add := func(c *candidate) {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	add(overrideCandidate(txn))
	add(e.histHigh.match(txn))

	refund := isRefund(txn.Description)

	// A vendor refund posts on the disbursement side, so refund language
	// routes positive amounts to the vendor matcher too.
	if txn.Amount < 0 || refund {
		add(e.vendors.match(txn))
	}
	if txn.Amount > 0 && !refund {
		add(e.customers.match(txn))
	}

	add(e.keyword.match(txn))
	add(e.histLow.match(txn))

	if hint == model.ModuleCR || hint == model.ModuleCD || hint == model.ModuleJV {
		candidates = append(candidates, candidate{
			Module:     hint,
			Confidence: parserHintConfidence,
			Priority:   priorityParserHint,
			MatchedBy:  "parser_hint",
		})
	}

	return candidates
}

// overrideCandidate is the pre-pass for markers strong enough to outrank
// every table: literal debit wording, check numbers, and unambiguous bank
// phrases.
func overrideCandidate(txn model.RawTransaction) *candidate {
	lower := strings.ToLower(txn.Description)

	if containsWord(lower, "debit") {
		return &candidate{
			Module:     model.ModuleCD,
			GLCode:     glCodeFor(model.ModuleCD, lower),
			Confidence: debitMarkerConfidence,
			Priority:   priorityOverride,
			MatchedBy:  "debit_marker",
		}
	}

	if txn.CheckNumber != "" {
		return &candidate{
			Module:     model.ModuleCD,
			GLCode:     model.VendorGL,
			Confidence: checkNumberConfidence,
			Priority:   priorityOverride,
			MatchedBy:  "check_number",
		}
	}

	if containsWord(lower, "interest") && txn.Amount > 0 {
		return &candidate{
			Module:     model.ModuleCR,
			GLCode:     model.InterestGL,
			Confidence: bankPhraseConfidence,
			Priority:   priorityOverride,
			MatchedBy:  "bank_phrase",
		}
	}
	for _, phrase := range []string{"service charge", "maintenance fee", "analysis fee"} {
		if strings.Contains(lower, phrase) {
			return &candidate{
				Module:     model.ModuleCD,
				GLCode:     model.BankFeesGL,
				Confidence: bankPhraseConfidence,
				Priority:   priorityOverride,
				MatchedBy:  "bank_phrase",
			}
		}
	}

	return nil
}

// selectCandidate applies the direction filter, then picks by highest
// confidence with declared priority breaking ties. Two exemptions from the
// filter: override candidates (the whole point of the literal debit marker
// inside a deposits section) and CD candidates on refund-language inflows,
// which post as disbursement reversals.
func selectCandidate(candidates []candidate, txn model.RawTransaction, refund bool) *candidate {
	valid := candidates[:0:0]
	for _, c := range candidates {
		if c.Module == model.ModuleUnknown {
			continue
		}
		exempt := c.Priority == priorityOverride || (refund && c.Module == model.ModuleCD)
		if !exempt && !directionAllows(txn, c.Module) {
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Confidence != valid[j].Confidence {
			return valid[i].Confidence > valid[j].Confidence
		}
		return valid[i].Priority < valid[j].Priority
	})
	return &valid[0]
}

// directionAllows keeps receipts out of CD and disbursements out of CR:
// deposits may post as CR or JV, withdrawals as CD or JV.
func directionAllows(txn model.RawTransaction, module model.Module) bool {
	if txn.Amount > 0 {
		return module == model.ModuleCR || module == model.ModuleJV
	}
	return module == model.ModuleCD || module == model.ModuleJV
}

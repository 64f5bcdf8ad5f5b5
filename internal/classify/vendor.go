package classify

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Vendor/customer matching confidences.
const (
	aliasExactConfidence = 0.95
	fuzzyMinSimilarity   = 0.70
)

// vendorMatcher matches disbursement descriptions against the known vendor
// table: exact alias containment first, then fuzzy matching for OCR-mangled
// names.
type vendorMatcher struct {
	vendors []model.Vendor
}

func newVendorMatcher(vendors []model.Vendor) *vendorMatcher {
	return &vendorMatcher{vendors: vendors}
}

func (m *vendorMatcher) match(txn model.RawTransaction) *candidate {
	lower := strings.ToLower(txn.Description)

	var best *candidate
	for i := range m.vendors {
		vendor := &m.vendors[i]
		confidence := matchNames(lower, vendor.Name, vendor.Aliases)
		if confidence == 0 {
			continue
		}
		if best == nil || confidence > best.Confidence {
			gl := vendor.GLCode
			if gl == "" {
				gl = model.VendorGL
			}
			best = &candidate{
				Module:     model.ModuleCD,
				GLCode:     gl,
				FundCode:   vendor.FundCode,
				Payee:      vendor.Name,
				Confidence: confidence,
				Priority:   priorityEntity,
				MatchedBy:  "vendor",
			}
		}
	}
	return best
}

// customerMatcher is the receipts-side twin: customers and grantors, with
// grant fund codes carried through.
type customerMatcher struct {
	customers []model.Customer
}

func newCustomerMatcher(customers []model.Customer) *customerMatcher {
	return &customerMatcher{customers: customers}
}

func (m *customerMatcher) match(txn model.RawTransaction) *candidate {
	lower := strings.ToLower(txn.Description)

	var best *candidate
	for i := range m.customers {
		customer := &m.customers[i]
		confidence := matchNames(lower, customer.Name, customer.Aliases)
		if confidence == 0 {
			continue
		}
		if best == nil || confidence > best.Confidence {
			gl := customer.GLCode
			if gl == "" {
				gl = model.FallbackCRGL
			}
			best = &candidate{
				Module:     model.ModuleCR,
				GLCode:     gl,
				FundCode:   customer.FundCode,
				Payee:      customer.Name,
				Confidence: confidence,
				Priority:   priorityEntity,
				MatchedBy:  "customer",
			}
		}
	}
	return best
}

// matchNames scores a description against a name and its aliases. Exact
// containment beats fuzzy similarity; fuzzy scores below the floor are
// discarded.
func matchNames(lowerDesc, name string, aliases []string) float64 {
	names := append([]string{name}, aliases...)

	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(lowerDesc, n) {
			return aliasExactConfidence
		}
	}

	best := 0.0
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if similarity := fuzzySimilarity(lowerDesc, n); similarity > best {
			best = similarity
		}
	}
	if best < fuzzyMinSimilarity {
		return 0
	}
	// Scale into (fuzzyMinSimilarity, aliasExactConfidence) so a fuzzy hit
	// never outranks an exact one.
	return fuzzyMinSimilarity + (best-fuzzyMinSimilarity)*(aliasExactConfidence-fuzzyMinSimilarity)
}

// fuzzySimilarity converts a Levenshtein rank into a 0-1 similarity over
// the description's words, so "JOHNSN SUPPLY" still finds Johnson Supply.
func fuzzySimilarity(lowerDesc, name string) float64 {
	name = strings.ToLower(name)
	best := 0.0

	words := strings.Fields(lowerDesc)
	// Slide a window as wide as the name's word count across the
	// description.
	nameWords := len(strings.Fields(name))
	if nameWords == 0 {
		return 0
	}
	for i := 0; i+nameWords <= len(words); i++ {
		window := strings.Join(words[i:i+nameWords], " ")
		// OCR can drop characters from either string, and subsequence
		// matching only tolerates extra characters in the target, so try
		// both directions.
		rank := fuzzy.RankMatchNormalizedFold(name, window)
		if reverse := fuzzy.RankMatchNormalizedFold(window, name); rank < 0 || (reverse >= 0 && reverse < rank) {
			rank = reverse
		}
		if rank < 0 {
			continue
		}
		denom := float64(max(len(name), len(window)))
		if denom == 0 {
			continue
		}
		similarity := 1 - float64(rank)/denom
		if similarity > best {
			best = similarity
		}
	}
	return best
}

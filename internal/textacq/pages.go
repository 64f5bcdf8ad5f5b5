package textacq

import (
	"regexp"
	"strings"
)

// PageClass is the content classification of one OCR'd page.
type PageClass string

// Page classes.
const (
	PageTransaction PageClass = "transaction"
	PageCheckImage  PageClass = "check_image"
	PageBoilerplate PageClass = "boilerplate"
	PageUnknown     PageClass = "unknown"
)

var (
	dateTokenRe    = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	amountTokenRe  = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}\b`)
	dateAmountLine = regexp.MustCompile(`\d{1,2}/\d{1,2}.{0,80}\d{1,3}(?:,\d{3})*\.\d{2}`)
)

// transactionHeaders are phrases that only appear on detail pages.
var transactionHeaders = []string{
	"deposits and other",
	"checks and other",
	"withdrawals",
	"account activity",
	"transaction detail",
	"daily balance",
	"beginning balance",
	"ending balance",
}

// checkImagePhrases mark pages of scanned check images.
var checkImagePhrases = []string{
	"pay to the order of",
	"endorse here",
	"do not write, stamp or sign below this line",
	"authorized signature",
	"memo",
}

// boilerplatePhrases mark disclosure and notice pages with no financial
// content worth parsing.
var boilerplatePhrases = []string{
	"in case of errors or questions",
	"billing rights",
	"change of address",
	"deposit insurance",
	"member fdic",
	"important information about your account",
	"this page intentionally left blank",
}

// classifyPage buckets one page by counting indicator families rather than
// trusting any single phrase, since all of them arrive through OCR noise.
func classifyPage(text string) PageClass {
	lower := strings.ToLower(text)

	var checkHits, boilerHits, headerHits int
	for _, phrase := range checkImagePhrases {
		if strings.Contains(lower, phrase) {
			checkHits++
		}
	}
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			boilerHits++
		}
	}
	for _, phrase := range transactionHeaders {
		if strings.Contains(lower, phrase) {
			headerHits++
		}
	}

	dateAmountLines := len(dateAmountLine.FindAllString(text, -1))

	switch {
	case checkHits >= 2:
		return PageCheckImage
	case dateAmountLines >= 3 || headerHits >= 1 && dateAmountLines >= 1:
		return PageTransaction
	case boilerHits >= 2 && dateAmountLines == 0:
		return PageBoilerplate
	case headerHits >= 1:
		return PageTransaction
	case boilerHits >= 1 && dateAmountLines == 0 && len(amountTokenRe.FindAllString(text, -1)) == 0:
		return PageBoilerplate
	default:
		return PageUnknown
	}
}

// countDateTokens scores an OCR pass by how many date-shaped tokens it
// produced. Used to pick between the fast and column-aware passes.
func countDateTokens(text string) int {
	return len(dateTokenRe.FindAllString(text, -1))
}

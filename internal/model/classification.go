package model

// Module identifies the accounting module a transaction posts to.
type Module string

// Accounting module constants.
const (
	ModuleCR      Module = "CR"      // Cash Receipts
	ModuleCD      Module = "CD"      // Cash Disbursements
	ModuleJV      Module = "JV"      // Journal Voucher
	ModuleUnknown Module = "UNKNOWN" // no matcher fired
)

// ConfidenceLevel buckets a raw confidence score into a trust rating.
type ConfidenceLevel string

// Confidence level constants.
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceNone   ConfidenceLevel = "none"
)

// Confidence bucket thresholds.
const (
	ThresholdHigh   = 0.85
	ThresholdMedium = 0.60
	ThresholdLow    = 0.40
)

// BucketConfidence maps a 0-1 confidence score to its level.
func BucketConfidence(score float64) ConfidenceLevel {
	switch {
	case score >= ThresholdHigh:
		return ConfidenceHigh
	case score >= ThresholdMedium:
		return ConfidenceMedium
	case score >= ThresholdLow:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Default account codes used when a matcher supplies no GL code.
const (
	DefaultBankGL   = "1070"
	DefaultFundCode = "1000"
	FallbackCRGL    = "4000" // unclassified revenue
	FallbackCDGL    = "7000" // unclassified expense
	VendorGL        = "7300" // accounts payable / vendor checks
	InterestGL      = "4600" // interest income
	BankFeesGL      = "6100" // bank service charges
	JVExpenseGL     = "7500" // journal voucher expense side
)

// ClassificationResult is a RawTransaction enriched with its accounting
// assignment. It is an append-only derivation: the embedded transaction is
// frozen once classification begins.
type ClassificationResult struct {
	Transaction     RawTransaction
	Module          Module
	GLCode          string
	FundCode        string
	Payee           string
	MatchedBy       string
	Confidence      float64 // 0-1
	ConfidenceLevel ConfidenceLevel
}

// NeedsReview reports whether the classification is too uncertain to post
// without a human looking at it.
func (r *ClassificationResult) NeedsReview() bool {
	return r.Module == ModuleUnknown ||
		r.ConfidenceLevel == ConfidenceNone ||
		r.ConfidenceLevel == ConfidenceLow ||
		r.ConfidenceLevel == ConfidenceMedium
}

// Package route turns classification results into posting documents:
// balanced double-entry lines, per-module document numbers, and one
// posting session identifier per run.
package route

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// buildLines produces the two-line posting for a classified transaction.
// Unidentified transactions get no lines; they land in the review bucket
// with the raw amount still attached to the embedded transaction.
func buildLines(result model.ClassificationResult) []model.EntryLine {
	amount := decimal.NewFromFloat(result.Transaction.Amount).Round(2).Abs()
	fund := result.FundCode
	if fund == "" {
		fund = model.DefaultFundCode
	}

	switch result.Module {
	case model.ModuleCR:
		// Money in: debit the bank, credit the revenue account.
		return []model.EntryLine{
			{Account: model.DefaultBankGL, Fund: fund, Debit: amount},
			{Account: result.GLCode, Fund: fund, Credit: amount},
		}
	case model.ModuleCD:
		// Money out: debit the expense account, credit the bank.
		return []model.EntryLine{
			{Account: result.GLCode, Fund: fund, Debit: amount},
			{Account: model.DefaultBankGL, Fund: fund, Credit: amount},
		}
	case model.ModuleJV:
		if result.Transaction.Amount > 0 {
			return []model.EntryLine{
				{Account: model.DefaultBankGL, Fund: fund, Debit: amount},
				{Account: model.InterestGL, Fund: fund, Credit: amount},
			}
		}
		return []model.EntryLine{
			{Account: model.JVExpenseGL, Fund: fund, Debit: amount},
			{Account: model.DefaultBankGL, Fund: fund, Credit: amount},
		}
	default:
		return nil
	}
}

// reviewReason explains why an entry needs a human, or returns "" when it
// does not.
func reviewReason(entry *model.RoutedEntry) string {
	result := &entry.Result

	if unidentified(*result) {
		return "unidentified transaction"
	}
	if !entry.Balanced() {
		return fmt.Sprintf("entry does not balance: debits %s, credits %s",
			entry.DebitTotal().StringFixed(2), entry.CreditTotal().StringFixed(2))
	}
	if result.NeedsReview() {
		return fmt.Sprintf("%s confidence classification (%.2f)", result.ConfidenceLevel, result.Confidence)
	}
	return ""
}

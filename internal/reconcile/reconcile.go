// Package reconcile compares parsed transactions against the statement's
// own printed totals, repairs what it can, and removes duplicates. It is
// biased toward over-reporting for human review: data is corrected or
// flagged, never silently dropped.
package reconcile

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Tolerances for totals comparison.
const (
	// excessRatio is the parsed-over-expected ratio that triggers excess
	// repair.
	excessRatio = 0.01
	// shortfallRatio is the largest parsed-under-expected gap a synthetic
	// adjustment may close.
	shortfallRatio = 0.05
	// matchTolerance is the cent tolerance for drop-one/drop-pair matches.
	matchTolerance = 0.01
	// maxRemovalOvershoot bounds how far past the detected excess a repair
	// may cut.
	maxRemovalOvershoot = 1.00
)

// AdjustmentSource marks synthetic transactions so they are never confused
// with genuinely extracted lines.
const AdjustmentSource = "reconciliation_adjustment"

// adjustmentConfidence tags synthetic and corrected rows as guesses.
const adjustmentConfidence = 10

// Result carries the reconciled list plus everything that was changed.
type Result struct {
	Transactions        []model.RawTransaction
	Adjustments         []model.Adjustment
	Warnings            []string
	ExpectedDeposits    *float64
	ExpectedWithdrawals *float64
	ParsedDeposits      float64
	ParsedWithdrawals   float64
}

// Reconciler checks parsed totals against printed ones.
type Reconciler struct{}

// New creates a Reconciler.
func New() *Reconciler {
	return &Reconciler{}
}

// Reconcile runs both directions (deposits, withdrawals) against the
// template's summary patterns. When the template declares no summary
// patterns the input passes through unchanged.
func (r *Reconciler) Reconcile(txns []model.RawTransaction, text string, tmpl *model.BankTemplate) Result {
	result := Result{Transactions: txns}

	if tmpl != nil {
		result.ExpectedDeposits = findPrintedTotal(text, tmpl.Summary.TotalDeposits)
		result.ExpectedWithdrawals = findPrintedTotal(text, tmpl.Summary.TotalWithdrawals)
	}

	result.Transactions = r.reconcileSide(result.Transactions, result.ExpectedDeposits, true, &result)
	result.Transactions = r.reconcileSide(result.Transactions, result.ExpectedWithdrawals, false, &result)

	result.ParsedDeposits = sideTotal(result.Transactions, true)
	result.ParsedWithdrawals = sideTotal(result.Transactions, false)

	return result
}

// TotalsDeviation measures how far a raw parse sits from the statement's
// printed totals: the worst relative deviation across the two sides. ok is
// false when the template declares no summary patterns or none match the
// text, in which case there is nothing to validate against.
func (r *Reconciler) TotalsDeviation(txns []model.RawTransaction, text string, tmpl *model.BankTemplate) (deviation float64, ok bool) {
	if tmpl == nil {
		return 0, false
	}

	for _, side := range []struct {
		expected *float64
		deposits bool
	}{
		{findPrintedTotal(text, tmpl.Summary.TotalDeposits), true},
		{findPrintedTotal(text, tmpl.Summary.TotalWithdrawals), false},
	} {
		if side.expected == nil || *side.expected <= 0 {
			continue
		}
		ok = true
		d := math.Abs(sideTotal(txns, side.deposits)-*side.expected) / *side.expected
		if d > deviation {
			deviation = d
		}
	}
	return deviation, ok
}

func findPrintedTotal(text, pattern string) *float64 {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

func sideTotal(txns []model.RawTransaction, deposits bool) float64 {
	total := decimal.Zero
	for i := range txns {
		if txns[i].IsDeposit() == deposits {
			total = total.Add(decimal.NewFromFloat(math.Abs(txns[i].Amount)))
		}
	}
	f, _ := total.Float64()
	return f
}

// reconcileSide repairs one direction against its printed total.
func (r *Reconciler) reconcileSide(txns []model.RawTransaction, expected *float64, deposits bool, result *Result) []model.RawTransaction {
	if expected == nil || *expected <= 0 {
		return txns
	}

	parsed := sideTotal(txns, deposits)
	diff := parsed - *expected
	side := "withdrawals"
	if deposits {
		side = "deposits"
	}

	switch {
	case diff > *expected*excessRatio:
		return r.repairExcess(txns, diff, deposits, side, result)
	case diff < 0 && -diff < *expected*shortfallRatio:
		return r.appendShortfallAdjustment(txns, -diff, deposits, side, result)
	case diff < 0:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("parsed %s short of printed total by %.2f, beyond adjustment range", side, -diff))
	}
	return txns
}

// repairExcess tries, in order: dropping one transaction equal to the
// excess, dropping a pair summing to it, and correcting a round-number
// digit misread. Anything else stays as parsed with a warning.
func (r *Reconciler) repairExcess(txns []model.RawTransaction, excess float64, deposits bool, side string, result *Result) []model.RawTransaction {
	if idx := findExactMatch(txns, excess, deposits); idx >= 0 {
		result.Adjustments = append(result.Adjustments, model.Adjustment{
			Kind:        "dropped",
			Description: fmt.Sprintf("dropped %q: amount equals parsed %s excess", txns[idx].Description, side),
			Amount:      txns[idx].Amount,
		})
		return removeAt(txns, idx)
	}

	if i, j, ok := findPairMatch(txns, excess, deposits); ok {
		result.Adjustments = append(result.Adjustments,
			model.Adjustment{
				Kind:        "dropped",
				Description: fmt.Sprintf("dropped %q: pair sums to parsed %s excess", txns[i].Description, side),
				Amount:      txns[i].Amount,
			},
			model.Adjustment{
				Kind:        "dropped",
				Description: fmt.Sprintf("dropped %q: pair sums to parsed %s excess", txns[j].Description, side),
				Amount:      txns[j].Amount,
			})
		out := removeAt(txns, j)
		return removeAt(out, i)
	}

	if corrected, ok := r.correctRoundExcess(txns, excess, deposits, side, result); ok {
		return corrected
	}

	result.Warnings = append(result.Warnings,
		fmt.Sprintf("parsed %s exceed printed total by %.2f; no safe repair found", side, excess))
	return txns
}

func findExactMatch(txns []model.RawTransaction, excess float64, deposits bool) int {
	for i := range txns {
		if txns[i].IsDeposit() != deposits {
			continue
		}
		if math.Abs(math.Abs(txns[i].Amount)-excess) <= matchTolerance {
			return i
		}
	}
	return -1
}

func findPairMatch(txns []model.RawTransaction, excess float64, deposits bool) (int, int, bool) {
	for i := range txns {
		if txns[i].IsDeposit() != deposits {
			continue
		}
		for j := i + 1; j < len(txns); j++ {
			if txns[j].IsDeposit() != deposits {
				continue
			}
			sum := math.Abs(txns[i].Amount) + math.Abs(txns[j].Amount)
			if math.Abs(sum-excess) <= matchTolerance {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// correctRoundExcess handles the classic OCR digit swap: an excess of
// exactly N x 10,000 means one leading digit was read high (2 read as 7
// adds 50,000). The repaired amount is a guess, so the transaction keeps a
// rock-bottom confidence and an adjustment record.
func (r *Reconciler) correctRoundExcess(txns []model.RawTransaction, excess float64, deposits bool, side string, result *Result) ([]model.RawTransaction, bool) {
	rounded := math.Round(excess/10_000) * 10_000
	if rounded < 10_000 || math.Abs(excess-rounded) > maxRemovalOvershoot {
		return nil, false
	}

	for i := range txns {
		if txns[i].IsDeposit() != deposits {
			continue
		}
		corrected := math.Abs(txns[i].Amount) - rounded
		if corrected <= 0 {
			continue
		}
		// Plausible misreads keep the same digit count.
		if digitCount(corrected) != digitCount(math.Abs(txns[i].Amount)) {
			continue
		}

		original := txns[i].Amount
		if txns[i].Amount < 0 {
			txns[i].Amount = -corrected
		} else {
			txns[i].Amount = corrected
		}
		txns[i].Confidence = adjustmentConfidence
		txns[i].SourcePattern = AdjustmentSource

		result.Adjustments = append(result.Adjustments, model.Adjustment{
			Kind:        "corrected",
			Description: fmt.Sprintf("corrected %q from %.2f to %.2f: round %s excess suggests a digit misread", txns[i].Description, original, txns[i].Amount, side),
			Amount:      txns[i].Amount,
		})
		slog.Info("Corrected round-number excess",
			"description", txns[i].Description,
			"original", original,
			"corrected", txns[i].Amount)
		return txns, true
	}
	return nil, false
}

func digitCount(f float64) int {
	return len(strconv.Itoa(int(f)))
}

func removeAt(txns []model.RawTransaction, idx int) []model.RawTransaction {
	out := make([]model.RawTransaction, 0, len(txns)-1)
	out = append(out, txns[:idx]...)
	return append(out, txns[idx+1:]...)
}

// appendShortfallAdjustment closes a small under-parse with one synthetic
// transaction carrying a distinct source marker and low confidence.
func (r *Reconciler) appendShortfallAdjustment(txns []model.RawTransaction, shortfall float64, deposits bool, side string, result *Result) []model.RawTransaction {
	amount := shortfall
	if !deposits {
		amount = -shortfall
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	for i := range txns {
		if txns[i].IsDeposit() == deposits && !txns[i].Date.IsZero() {
			date = txns[i].Date
		}
	}

	adjustment := model.RawTransaction{
		Date:          date,
		Description:   fmt.Sprintf("OCR adjustment: %s shortfall", side),
		Amount:        amount,
		SourcePattern: AdjustmentSource,
		Confidence:    adjustmentConfidence,
	}

	result.Adjustments = append(result.Adjustments, model.Adjustment{
		Kind:        "synthetic",
		Description: adjustment.Description,
		Amount:      amount,
	})

	return append(txns, adjustment)
}

package route

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// Router assigns session and document identity to classified transactions
// and builds their posting lines. One Router covers one posting run: the
// per-module document sequences and the session identifier live for the
// Router's lifetime.
type Router struct {
	sessionID string
	sequences map[model.Module]int
	clock     func() time.Time
}

// NewRouter creates a router with a fresh session identifier.
func NewRouter() *Router {
	return newRouterAt(time.Now)
}

func newRouterAt(clock func() time.Time) *Router {
	id := uuid.NewString()
	return &Router{
		sessionID: fmt.Sprintf("GP_%s_%d", id[:8], clock().Year()),
		sequences: make(map[model.Module]int),
		clock:     clock,
	}
}

// SessionID returns the posting session identifier shared by every entry
// this router produces.
func (r *Router) SessionID() string {
	return r.sessionID
}

// Route converts classification results into routed entries, preserving
// input order. Unidentified and low-confidence results are flagged for
// review, never dropped.
func (r *Router) Route(ctx context.Context, results []model.ClassificationResult) ([]model.RoutedEntry, error) {
	entries := make([]model.RoutedEntry, 0, len(results))
	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := model.RoutedEntry{
			Result:    result,
			SessionID: r.sessionID,
		}
		// Only identified transactions consume a posting sequence; the
		// unidentified bucket carries no document number until a human
		// assigns a module.
		if !unidentified(result) {
			entry.DocNumber = r.nextDocNumber(result)
			entry.Lines = buildLines(result)
		}
		if reason := reviewReason(&entry); reason != "" {
			entry.NeedsReview = true
			entry.ReviewReason = reason
			slog.Debug("Entry flagged for review",
				"doc_number", entry.DocNumber,
				"reason", reason,
				"description", result.Transaction.Description)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// unidentified reports whether a result lands in the review bucket with no
// posting document: no recognized module, or no meaningful confidence.
func unidentified(result model.ClassificationResult) bool {
	return result.Module == model.ModuleUnknown || result.ConfidenceLevel == model.ConfidenceNone
}

// nextDocNumber issues the next document number for the result's module.
// Sequences are per module per run and start at 1. The date portion comes
// from the transaction, not the wall clock, so re-runs over the same
// statement produce the same numbers.
func (r *Router) nextDocNumber(result model.ClassificationResult) string {
	r.sequences[result.Module]++
	date := result.Transaction.Date
	if date.IsZero() {
		date = r.clock()
	}
	return fmt.Sprintf("%s_%s_%03d", result.Module, date.Format("0102"), r.sequences[result.Module])
}

// CountModules tallies routed entries per module, for the batch summary.
func CountModules(entries []model.RoutedEntry) map[model.Module]int {
	counts := make(map[model.Module]int)
	for i := range entries {
		counts[entries[i].Result.Module]++
	}
	return counts
}

package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// RenderBatchSummary builds the end-of-run report: one line per file, the
// module tallies, and the review workload.
func RenderBatchSummary(batch *model.BatchResult) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Posting session " + batch.SessionID))
	b.WriteString("\n")

	for i := range batch.Files {
		b.WriteString(renderFileLine(&batch.Files[i]))
		b.WriteString("\n")
	}

	review := 0
	for i := range batch.Entries {
		if batch.Entries[i].NeedsReview {
			review++
		}
	}

	counts := fmt.Sprintf("CR %d   CD %d   JV %d   unidentified %d",
		batch.ModuleCounts[model.ModuleCR],
		batch.ModuleCounts[model.ModuleCD],
		batch.ModuleCounts[model.ModuleJV],
		batch.ModuleCounts[model.ModuleUnknown])
	b.WriteString(BoldStyle.Render(counts))
	b.WriteString("\n")

	if review > 0 {
		b.WriteString(FormatWarning(fmt.Sprintf("%d of %d entries need review", review, len(batch.Entries))))
		b.WriteString("\n")
	}
	if len(batch.Duplicates) > 0 {
		b.WriteString(FormatWarning(fmt.Sprintf("%d suspected duplicates flagged", len(batch.Duplicates))))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFileLine summarizes one processed file: status icon, extraction
// method, and the totals check when the statement printed totals.
func renderFileLine(meta *model.ParseMetadata) string {
	name := filepath.Base(meta.SourceFile)

	if meta.Err != "" {
		return FormatError(fmt.Sprintf("%s: %s", name, meta.Err))
	}

	detail := string(meta.Method)
	if meta.Bank != "" {
		detail = fmt.Sprintf("%s, %s", meta.Bank, meta.Method)
	}
	if meta.OCRUsed {
		detail += ", ocr"
	}

	line := fmt.Sprintf("%s (%s)", name, detail)

	if meta.ExpectedDeposits != nil || meta.ExpectedWithdrawals != nil {
		line += fmt.Sprintf("  deposits %.2f", meta.ParsedDeposits)
		if meta.ExpectedDeposits != nil {
			line += fmt.Sprintf("/%.2f", *meta.ExpectedDeposits)
		}
		line += fmt.Sprintf("  withdrawals %.2f", meta.ParsedWithdrawals)
		if meta.ExpectedWithdrawals != nil {
			line += fmt.Sprintf("/%.2f", *meta.ExpectedWithdrawals)
		}
	}

	switch {
	case len(meta.Warnings) > 0 || len(meta.Adjustments) > 0:
		return FormatWarning(fmt.Sprintf("%s (%d warnings, %d adjustments)",
			line, len(meta.Warnings), len(meta.Adjustments)))
	default:
		return FormatSuccess(line)
	}
}

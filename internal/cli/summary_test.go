package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func TestRenderBatchSummary(t *testing.T) {
	expected := 163_705.78
	batch := &model.BatchResult{
		SessionID: "GP_1a2b3c4d_2024",
		Files: []model.ParseMetadata{
			{
				SourceFile:       "/tmp/july.pdf",
				Bank:             "pnc",
				Method:           model.MethodTemplate,
				OCRUsed:          true,
				ExpectedDeposits: &expected,
				ParsedDeposits:   163_705.78,
				Adjustments:      []model.Adjustment{{Kind: "synthetic", Amount: 25.00}},
			},
			{SourceFile: "/tmp/broken.pdf", Err: "document contains no text"},
		},
		Entries: []model.RoutedEntry{
			{Result: model.ClassificationResult{Module: model.ModuleCR}},
			{Result: model.ClassificationResult{Module: model.ModuleUnknown}, NeedsReview: true},
		},
		Duplicates:   []model.DuplicateFlag{{Index: 0, Source: model.DuplicateInBatch}},
		ModuleCounts: map[model.Module]int{model.ModuleCR: 1, model.ModuleUnknown: 1},
	}

	out := RenderBatchSummary(batch)

	assert.Contains(t, out, "GP_1a2b3c4d_2024")
	assert.Contains(t, out, "july.pdf")
	assert.Contains(t, out, "pnc, template, ocr")
	assert.Contains(t, out, "163705.78/163705.78")
	assert.Contains(t, out, "1 adjustments")
	assert.Contains(t, out, "broken.pdf: document contains no text")
	assert.Contains(t, out, "CR 1")
	assert.Contains(t, out, "unidentified 1")
	assert.Contains(t, out, "1 of 2 entries need review")
	assert.Contains(t, out, "1 suspected duplicates")
}

func TestRenderFileLineCleanFile(t *testing.T) {
	meta := model.ParseMetadata{SourceFile: "bank.csv", Method: model.MethodSpreadsheet}
	line := renderFileLine(&meta)
	assert.Contains(t, line, "bank.csv (spreadsheet)")
	assert.Contains(t, line, SuccessIcon)
}

// Package engine orchestrates a processing run: text acquisition, parsing,
// reconciliation, duplicate handling, classification, and routing, one
// batch of statement files in, one BatchResult out.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/ofx"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/parser"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/reconcile"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/route"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"
)

// Config holds configuration options for the batch processor.
type Config struct {
	// Workers bounds how many files parse concurrently.
	Workers int
	// OnFileDone fires after each file finishes parsing, for progress
	// reporting.
	OnFileDone func(path string)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// maxTotalsDeviation is the largest relative gap between a template parse
// and the statement's printed totals before the generic extractor gets a
// chance to do better.
const maxTotalsDeviation = 0.20

// Processor runs the full pipeline over a batch of statement files. Files
// parse concurrently; everything stateful (dedup, classification,
// document numbering) runs in input order afterwards, so a batch always
// produces the same result regardless of scheduling.
type Processor struct {
	storage     service.Storage
	extractor   service.TextExtractor
	classifier  service.Classifier
	templates   map[string]*model.BankTemplate
	registry    *parser.Registry
	spreadsheet *parser.SpreadsheetParser
	ofx         *ofx.Parser
	reconciler  *reconcile.Reconciler
	workers     int
	onFileDone  func(path string)
}

// New creates a processor with the default configuration.
func New(storage service.Storage, extractor service.TextExtractor, classifier service.Classifier, templates map[string]*model.BankTemplate) *Processor {
	return NewWithConfig(storage, extractor, classifier, templates, DefaultConfig())
}

// NewWithConfig creates a processor with custom configuration.
func NewWithConfig(storage service.Storage, extractor service.TextExtractor, classifier service.Classifier, templates map[string]*model.BankTemplate, config Config) *Processor {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Processor{
		storage:     storage,
		extractor:   extractor,
		classifier:  classifier,
		templates:   templates,
		registry:    parser.NewRegistry(parser.NewTemplateParser(time.Now), parser.NewGenericParser(time.Now)),
		spreadsheet: parser.NewSpreadsheetParser(time.Now),
		ofx:         ofx.NewParser(),
		reconciler:  reconcile.New(),
		workers:     config.Workers,
		onFileDone:  config.OnFileDone,
	}
}

// parsedFile is one file's extraction output before the batch-wide stages.
type parsedFile struct {
	meta model.ParseMetadata
	txns []model.RawTransaction
}

// ProcessFiles runs the batch. A file that fails records its error in the
// metadata and the batch continues; only context cancellation and storage
// failures abort the run.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) (*model.BatchResult, error) {
	slog.Info("Starting batch", "files", len(paths))

	parsed := make([]parsedFile, len(paths))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			parsed[i] = p.parseFile(ctx, paths[i])
			if p.onFileDone != nil {
				p.onFileDone(paths[i])
			}
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Batch-wide stages run sequentially in input order: the deduplicator
	// and document sequences are stateful.
	dedupe := reconcile.NewDeduplicator()
	router := route.NewRouter()
	batch := &model.BatchResult{SessionID: router.SessionID()}

	var allTxns []model.RawTransaction
	type fileRange struct{ start, end int }
	ranges := make([]fileRange, len(parsed))
	for i := range parsed {
		batch.Files = append(batch.Files, parsed[i].meta)
		if parsed[i].meta.Err != "" {
			continue
		}
		kept := dedupe.Deduplicate(parsed[i].txns)
		ranges[i] = fileRange{start: len(allTxns), end: len(allTxns) + len(kept)}
		allTxns = append(allTxns, kept...)
	}

	// One duplicate scan over the whole batch so repeats spanning files
	// are still caught, and flag indexes line up with entry indexes.
	var lookup reconcile.PostedLookup
	if p.storage != nil {
		lookup = p.storage
	}
	flags, err := reconcile.FlagDuplicates(ctx, allTxns, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to flag duplicates: %w", err)
	}
	batch.Duplicates = flags

	for i := range parsed {
		if parsed[i].meta.Err != "" {
			continue
		}
		txns := allTxns[ranges[i].start:ranges[i].end]
		results := make([]model.ClassificationResult, 0, len(txns))
		for j := range txns {
			result, classifyErr := p.classifier.Classify(ctx, txns[j], hintFor(txns[j]))
			if classifyErr != nil {
				return nil, fmt.Errorf("failed to classify %q: %w", txns[j].Description, classifyErr)
			}
			results = append(results, result)
		}

		entries, routeErr := router.Route(ctx, results)
		if routeErr != nil {
			return nil, routeErr
		}
		batch.Entries = append(batch.Entries, entries...)
	}

	batch.ModuleCounts = route.CountModules(batch.Entries)

	slog.Info("Batch complete",
		"session_id", batch.SessionID,
		"entries", len(batch.Entries),
		"duplicates", len(batch.Duplicates))

	return batch, nil
}

// parseFile extracts raw transactions from one file, choosing the path by
// extension. Failures land in the metadata, not in an error return.
func (p *Processor) parseFile(ctx context.Context, path string) parsedFile {
	file := parsedFile{meta: model.ParseMetadata{SourceFile: path}}
	meta := &file.meta

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		p.parsePDF(ctx, path, &file)
	case ".xlsx", ".xlsm", ".xls", ".csv", ".tsv", ".txt":
		txns, err := p.spreadsheet.ExtractFile(ctx, path)
		if err != nil {
			meta.Err = err.Error()
			return file
		}
		meta.Method = model.MethodSpreadsheet
		file.txns = txns
	case ".ofx", ".qfx":
		f, err := os.Open(path)
		if err != nil {
			meta.Err = fmt.Sprintf("failed to open file: %v", err)
			return file
		}
		defer func() { _ = f.Close() }()

		txns, err := p.ofx.ParseFile(ctx, f)
		if err != nil {
			meta.Err = err.Error()
			return file
		}
		meta.Method = model.MethodOFX
		file.txns = txns
	default:
		meta.Err = fmt.Sprintf("%v: %s", common.ErrUnsupportedFormat, ext)
		return file
	}

	// Structured formats skip totals repair but still report side sums.
	if meta.Method == model.MethodSpreadsheet || meta.Method == model.MethodOFX {
		rec := p.reconciler.Reconcile(file.txns, "", nil)
		meta.ParsedDeposits = rec.ParsedDeposits
		meta.ParsedWithdrawals = rec.ParsedWithdrawals
	}
	return file
}

// parsePDF runs text acquisition, bank detection, template or generic
// extraction, and totals reconciliation.
func (p *Processor) parsePDF(ctx context.Context, path string, file *parsedFile) {
	meta := &file.meta

	extracted, err := p.extractor.Extract(ctx, path)
	if err != nil {
		meta.Err = err.Error()
		return
	}
	meta.OCRUsed = extracted.OCRUsed
	meta.PageCount = extracted.PageCount

	text := extracted.Content
	if strings.TrimSpace(text) == "" {
		meta.Err = common.ErrEmptyDocument.Error()
		return
	}

	bank := parser.DetectBank(text, p.templates)
	meta.Bank = bank

	var tmpl *model.BankTemplate
	strategy := p.registry.Fallback()
	meta.Method = model.MethodGeneric
	if bank != "" {
		tmpl = p.templates[bank]
		strategy = p.registry.ForBank(bank)
		meta.Method = model.MethodTemplate
	}

	txns, err := strategy.Extract(ctx, text, tmpl)
	if (err != nil || len(txns) == 0) && meta.Method == model.MethodTemplate {
		if err != nil {
			meta.Warnings = append(meta.Warnings, fmt.Sprintf("template extraction failed: %v", err))
		} else {
			meta.Warnings = append(meta.Warnings, "template extracted no transactions")
		}
		txns, err = p.registry.Fallback().Extract(ctx, text, nil)
		meta.Method = model.MethodGeneric
	}
	if err != nil {
		meta.Err = err.Error()
		return
	}
	if len(txns) == 0 {
		meta.Warnings = append(meta.Warnings, "no transactions extracted")
	}

	// A template parse that sits far from the statement's own printed
	// totals missed or misread lines; retry with the generic extractor and
	// keep whichever parse reconciles closer.
	if meta.Method == model.MethodTemplate && len(txns) > 0 {
		if deviation, ok := p.reconciler.TotalsDeviation(txns, text, tmpl); ok && deviation > maxTotalsDeviation {
			meta.Warnings = append(meta.Warnings,
				fmt.Sprintf("template parse deviates %.0f%% from printed totals", deviation*100))
			if alt, altErr := p.registry.Fallback().Extract(ctx, text, nil); altErr == nil && len(alt) > 0 {
				if altDeviation, altOK := p.reconciler.TotalsDeviation(alt, text, tmpl); altOK && altDeviation < deviation {
					slog.Info("Generic parse reconciles closer, keeping it",
						"file", path,
						"template_deviation", deviation,
						"generic_deviation", altDeviation)
					txns = alt
					meta.Method = model.MethodGeneric
				}
			}
		}
	}

	rec := p.reconciler.Reconcile(txns, text, tmpl)
	meta.ExpectedDeposits = rec.ExpectedDeposits
	meta.ExpectedWithdrawals = rec.ExpectedWithdrawals
	meta.ParsedDeposits = rec.ParsedDeposits
	meta.ParsedWithdrawals = rec.ParsedWithdrawals
	meta.Adjustments = rec.Adjustments
	meta.Warnings = append(meta.Warnings, rec.Warnings...)

	file.txns = rec.Transactions
}

// hintFor derives the parser's module lean. Synthetic reconciliation
// adjustments post as journal vouchers; everything else leans by sign.
func hintFor(txn model.RawTransaction) model.Module {
	if txn.SourcePattern == reconcile.AdjustmentSource {
		return model.ModuleJV
	}
	if txn.Amount > 0 {
		return model.ModuleCR
	}
	return model.ModuleCD
}

// RecordPosted writes accepted entries into the posted-transaction history
// so later batches can detect repeats. The caller filters out entries the
// user rejected.
func (p *Processor) RecordPosted(ctx context.Context, entries []model.RoutedEntry) error {
	if p.storage == nil || len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	posted := make([]model.PostedTransaction, 0, len(entries))
	for i := range entries {
		txn := entries[i].Result.Transaction
		posted = append(posted, model.PostedTransaction{
			Hash:        txn.Hash(),
			Date:        txn.Date,
			Description: txn.Description,
			CheckNumber: txn.CheckNumber,
			Amount:      txn.Amount,
			PostedAt:    now,
		})
	}
	// SQLite can report busy under concurrent access; retry briefly.
	err := common.WithRetry(ctx, func() error {
		return p.storage.SavePostedTransactions(ctx, posted)
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return fmt.Errorf("failed to record posted entries: %w", err)
	}
	return nil
}

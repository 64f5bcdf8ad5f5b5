// Package textacq turns statement documents into text. It prefers the
// native PDF text layer and falls back to page-by-page OCR with content
// classification, caching OCR output by file content hash so the slow path
// never repeats needlessly.
package textacq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"
)

// minNativeTextLength is the threshold below which a text layer is treated
// as absent. Scanned statements often carry a stub layer of a few header
// characters.
const minNativeTextLength = 100

// Config controls extraction behavior.
type Config struct {
	// CacheDir holds the content-addressed OCR text cache. Empty disables
	// caching.
	CacheDir string
	// DPI used when rasterizing pages for OCR.
	DPI int
	// Workers bounds concurrent page OCR. Page order in the final blob is
	// always by page index, not completion order.
	Workers int
}

// DefaultConfig returns sensible extraction defaults.
func DefaultConfig() Config {
	return Config{
		DPI:     300,
		Workers: 4,
	}
}

// Extractor implements service.TextExtractor for PDF documents.
type Extractor struct {
	engine OCREngine
	cache  *Cache
	config Config
}

// New creates an Extractor. engine may be nil; without one, documents with
// no native text layer yield empty text rather than an error, and the
// pipeline reports zero transactions.
func New(engine OCREngine, config Config) (*Extractor, error) {
	var cache *Cache
	if config.CacheDir != "" {
		var err error
		cache, err = NewCache(config.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create OCR cache: %w", err)
		}
	}
	if config.DPI <= 0 {
		config.DPI = 300
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return &Extractor{engine: engine, cache: cache, config: config}, nil
}

// Extract returns one text blob for the document plus whether OCR ran.
func (e *Extractor) Extract(ctx context.Context, path string) (service.ExtractedText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.ExtractedText{}, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}

	// Native text layer first; OCR is the slow path.
	native, nativeErr := extractTextLayer(data)
	if nativeErr == nil && len(strings.TrimSpace(native)) >= minNativeTextLength {
		return service.ExtractedText{Content: native}, nil
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(data); ok {
			slog.Debug("OCR cache hit", "file", path)
			return service.ExtractedText{Content: cached, OCRUsed: true}, nil
		}
	}

	if e.engine == nil {
		slog.Warn("Document has no usable text layer and no OCR engine is configured",
			"file", path,
			"native_chars", len(strings.TrimSpace(native)))
		return service.ExtractedText{}, nil
	}

	text, pages, err := e.ocrDocument(ctx, data)
	if err != nil {
		return service.ExtractedText{}, fmt.Errorf("OCR failed: %w", err)
	}

	if e.cache != nil && text != "" {
		if err := e.cache.Put(data, text); err != nil {
			slog.Warn("Failed to write OCR cache", "error", err)
		}
	}

	return service.ExtractedText{Content: text, OCRUsed: true, PageCount: pages}, nil
}

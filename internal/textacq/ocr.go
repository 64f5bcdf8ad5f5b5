package textacq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// OCRMode selects the recognition profile for one page pass.
type OCRMode int

// OCR pass profiles.
const (
	// ModeFast is the first pass over every page: automatic segmentation,
	// cheap enough to run before deciding whether a page is worth keeping.
	ModeFast OCRMode = iota
	// ModeColumn re-reads check-image and tabular pages with single-column
	// segmentation, which keeps amounts attached to their lines.
	ModeColumn
)

// OCREngine recognizes text in one page image.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string, mode OCRMode) (string, error)
}

// Tesseract is the gosseract-backed OCR engine.
type Tesseract struct {
	language string
	mu       sync.Mutex
}

// NewTesseract creates a Tesseract engine. It fails fast when the language
// data is unusable so the caller can fall back to text-layer-only mode.
func NewTesseract(language string) (*Tesseract, error) {
	if language == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("tesseract language %q unavailable: %w", language, err)
	}
	return &Tesseract{language: language}, nil
}

// Recognize runs one OCR pass over a page image. A fresh client per call
// keeps passes independent; tesseract itself is not safe for concurrent use
// of one handle.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string, mode OCRMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}

	psm := gosseract.PSM_AUTO
	if mode == ModeColumn {
		psm = gosseract.PSM_SINGLE_COLUMN
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("failed to set page segmentation: %w", err)
	}

	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set OCR image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR recognition failed: %w", err)
	}
	return text, nil
}

// ocrDocument rasterizes every page, OCRs them concurrently, classifies each
// page's content, and assembles the final blob in page-index order.
func (e *Extractor) ocrDocument(ctx context.Context, data []byte) (string, int, error) {
	dir, err := os.MkdirTemp("", "bankpost-ocr-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	pages, err := rasterizePages(data, dir, e.config.DPI)
	if err != nil {
		slog.Warn("Cannot rasterize document for OCR", "error", err)
		return "", 0, nil
	}

	results := make([]string, len(pages))
	sem := make(chan struct{}, e.config.Workers)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for i, page := range pages {
		wg.Add(1)
		go func(idx int, imagePath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			text, err := e.ocrPage(ctx, imagePath)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			results[idx] = text
		}(i, page)
	}
	wg.Wait()

	if firstErr != nil {
		return "", 0, firstErr
	}

	var blob []byte
	for _, text := range results {
		if text == "" {
			continue
		}
		blob = append(blob, text...)
		blob = append(blob, '\n')
	}
	return string(blob), len(pages), nil
}

// ocrPage runs the fast pass, classifies the page, and decides whether to
// keep it, drop it, or re-read it column-aware.
func (e *Extractor) ocrPage(ctx context.Context, imagePath string) (string, error) {
	fast, err := e.engine.Recognize(ctx, imagePath, ModeFast)
	if err != nil {
		return "", err
	}

	switch classifyPage(fast) {
	case PageBoilerplate:
		slog.Debug("Dropping boilerplate page", "image", imagePath)
		return "", nil
	case PageCheckImage:
		column, err := e.engine.Recognize(ctx, imagePath, ModeColumn)
		if err != nil {
			// The fast pass already produced something usable.
			slog.Warn("Column-aware OCR pass failed, keeping fast pass", "error", err)
			return fast, nil
		}
		// Keep whichever pass found more date-like tokens.
		if countDateTokens(column) > countDateTokens(fast) {
			return column, nil
		}
		return fast, nil
	default:
		return fast, nil
	}
}

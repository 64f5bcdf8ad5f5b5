package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/config"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/service"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/storage"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/textacq"
)

// initStorage opens the configured database and brings the schema current.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/bankpost/bankpost.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initExtractor builds the PDF text extractor. A missing OCR installation
// degrades to text-layer-only extraction with a warning instead of
// refusing to run: most statements still parse.
func initExtractor() (service.TextExtractor, error) {
	cfg := textacq.DefaultConfig()
	if dpi := viper.GetInt("ocr.dpi"); dpi > 0 {
		cfg.DPI = dpi
	}
	if workers := viper.GetInt("ocr.workers"); workers > 0 {
		cfg.Workers = workers
	}
	cfg.CacheDir = config.ExpandPath(viper.GetString("ocr.cache_dir"))
	if cfg.CacheDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.CacheDir = filepath.Join(home, ".cache", "bankpost", "ocr")
		}
	}

	language := viper.GetString("ocr.language")
	if language == "" {
		language = "eng"
	}

	var engine textacq.OCREngine
	tesseract, err := textacq.NewTesseract(language)
	if err != nil {
		slog.Warn("OCR unavailable, scanned documents will not be readable", "error", err)
	} else {
		engine = tesseract
	}

	return textacq.New(engine, cfg)
}

// expandFileArgs resolves glob patterns and literal paths into a file list.
func expandFileArgs(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// Not a glob; accept a literal path if it exists.
			if _, statErr := os.Stat(pattern); statErr == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no input files found", nil)
	}
	return files, nil
}

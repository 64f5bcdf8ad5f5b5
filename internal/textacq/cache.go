package textacq

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// Cache is a content-addressed, write-once store for OCR output. Keys are
// the sha256 of the source file bytes, so concurrent writes of the same key
// are harmless: both writers produce identical content.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(data []byte) string {
	sum := sha256.Sum256(data)
	return filepath.Join(c.dir, fmt.Sprintf("%x.txt", sum))
}

// Get returns cached OCR text for the given source bytes.
func (c *Cache) Get(data []byte) (string, bool) {
	text, err := os.ReadFile(c.path(data))
	if err != nil {
		return "", false
	}
	return string(text), true
}

// Put stores OCR text for the given source bytes. The temp-file-and-rename
// dance keeps concurrent readers from ever seeing a partial write.
func (c *Cache) Put(data []byte, text string) error {
	target := c.path(data)

	tmp, err := os.CreateTemp(c.dir, "put-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}
	return nil
}

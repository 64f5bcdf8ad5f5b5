// Package config loads configuration values and bank templates.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ and any $VAR environment references in a
// configured path. Paths come from YAML config and flags, where users write
// "~/.local/share/bankpost" and expect it to work.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return os.ExpandEnv(path)
}

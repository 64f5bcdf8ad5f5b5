package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTemplateDir(t *testing.T, dir string) {
	t.Helper()
	viper.Set("templates.dir", dir)
	t.Cleanup(func() { viper.Set("templates.dir", "") })
}

func TestLoadTemplates_Builtins(t *testing.T) {
	setTemplateDir(t, "")

	templates, err := LoadTemplates()
	require.NoError(t, err)

	for _, name := range []string{"truist", "pnc", "sovereign", "crossfirst"} {
		tmpl, ok := templates[name]
		require.True(t, ok, "missing builtin template %q", name)
		assert.NoError(t, tmpl.Validate())
	}
	assert.True(t, templates["sovereign"].RequiresOCR)
}

func TestLoadTemplates_DirectoryOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := `{
		"name": "pnc",
		"identifiers": ["PNC BANK"],
		"date_format": "MM/DD/YYYY",
		"transaction_patterns": [
			{
				"name": "simple",
				"pattern": "^(\\d{2}/\\d{2}/\\d{4})\\s+(.+?)\\s+([\\d,]+\\.\\d{2})$",
				"date_group": 1,
				"description_group": 2,
				"amount_group": 3,
				"type": "auto"
			}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pnc.json"), []byte(custom), 0o600))
	setTemplateDir(t, dir)

	templates, err := LoadTemplates()
	require.NoError(t, err)

	require.Contains(t, templates, "pnc")
	assert.Equal(t, "MM/DD/YYYY", templates["pnc"].DateFormat)
	// Unrelated builtins survive the override.
	assert.Contains(t, templates, "truist")
}

func TestLoadTemplates_AddsNewBank(t *testing.T) {
	dir := t.TempDir()
	custom := `{
		"name": "firstnational",
		"identifiers": ["FIRST NATIONAL"],
		"date_format": "MM/DD",
		"transaction_patterns": [
			{
				"name": "simple",
				"pattern": "^(\\d{2}/\\d{2})\\s+(.+?)\\s+([\\d,]+\\.\\d{2})$",
				"date_group": 1,
				"description_group": 2,
				"amount_group": 3,
				"type": "auto"
			}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "firstnational.json"), []byte(custom), 0o600))
	// Non-JSON files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a template"), 0o600))
	setTemplateDir(t, dir)

	templates, err := LoadTemplates()
	require.NoError(t, err)
	assert.Contains(t, templates, "firstnational")
}

func TestLoadTemplates_MissingDirectoryIsFine(t *testing.T) {
	setTemplateDir(t, filepath.Join(t.TempDir(), "does-not-exist"))

	templates, err := LoadTemplates()
	require.NoError(t, err)
	assert.Contains(t, templates, "pnc")
}

func TestLoadTemplateFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"name": "broken"`},
		{"fails validation", `{"name": "broken", "identifiers": ["X"], "date_format": "MM/DD", "transaction_patterns": []}`},
		{"bad date format", `{"name": "broken", "identifiers": ["X"], "date_format": "DD-MM", "transaction_patterns": [{"name": "p", "pattern": ".*", "amount_group": 1, "type": "auto"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "broken.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := LoadTemplateFile(path)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("BANKPOST_TEST_DIR", "/var/data")

	assert.Equal(t, "/var/data/bankpost.db", ExpandPath("$BANKPOST_TEST_DIR/bankpost.db"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "statements"), ExpandPath("~/statements"))
}

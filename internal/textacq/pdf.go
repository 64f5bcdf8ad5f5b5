package textacq

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"unicode"
)

// findBinary searches for an executable on the system PATH first, then
// checks common install directories as a fallback.
func findBinary(name string) (string, bool) {
	if runtime.GOOS == "windows" && filepath.Ext(name) != ".exe" {
		name += ".exe"
	}

	if p, err := exec.LookPath(name); err == nil {
		return p, true
	}

	var dirs []string
	switch runtime.GOOS {
	case "linux":
		dirs = []string{"/usr/bin", "/usr/local/bin", "/opt/poppler/bin"}
	case "darwin":
		dirs = []string{"/usr/local/bin", "/opt/homebrew/bin", "/opt/local/bin"}
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}

	return "", false
}

// extractTextLayer pulls the native text layer out of a PDF, preferring
// pdftotext with layout preservation so statement columns survive, then a
// pure-Go content-stream scan when poppler is not installed.
func extractTextLayer(data []byte) (string, error) {
	if text, err := runPdftotext(data); err == nil {
		return text, nil
	}
	text, err := extractContentStreams(data)
	if err != nil {
		return "", err
	}
	return text, nil
}

func runPdftotext(data []byte) (string, error) {
	path, found := findBinary("pdftotext")
	if !found {
		return "", fmt.Errorf("pdftotext not found")
	}

	cmd := exec.Command(path, "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w (%s)", err, stderr.String())
	}
	return stdout.String(), nil
}

var streamStartRe = regexp.MustCompile(`stream\r?\n`)

// extractContentStreams is the poppler-free fallback: inflate every
// FlateDecode stream and pull text out of the Tj/TJ/' show operators. Good
// enough for digital statements; scanned ones have no text to find.
func extractContentStreams(data []byte) (string, error) {
	var allText strings.Builder
	streamEnd := []byte("endstream")

	for _, pos := range streamStartRe.FindAllIndex(data, -1) {
		start := pos[1]
		endIdx := bytes.Index(data[start:], streamEnd)
		if endIdx == -1 {
			continue
		}
		streamData := bytes.TrimRight(data[start:start+endIdx], "\r\n")

		textData := streamData
		if r, err := zlib.NewReader(bytes.NewReader(streamData)); err == nil {
			if decompressed, err := io.ReadAll(r); err == nil {
				textData = decompressed
			}
			_ = r.Close()
		}

		allText.WriteString(extractTextOperators(textData))
	}

	result := allText.String()
	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("no text found in PDF")
	}
	return result, nil
}

var (
	tjRe      = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
	tjArrayRe = regexp.MustCompile(`\[((?:\([^)]*\)|[^\]])*)\]\s*TJ`)
	innerRe   = regexp.MustCompile(`\(([^)]*)\)`)
	quoteRe   = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*'`)
	tdRe      = regexp.MustCompile(`[\d.-]+\s+(-[\d.]+)\s+Td`)
)

func extractTextOperators(data []byte) string {
	var result strings.Builder
	content := string(data)

	for _, match := range tjRe.FindAllStringSubmatch(content, -1) {
		result.WriteString(decodePDFString(match[1]))
	}

	for _, match := range tjArrayRe.FindAllStringSubmatch(content, -1) {
		for _, inner := range innerRe.FindAllStringSubmatch(match[1], -1) {
			result.WriteString(decodePDFString(inner[1]))
		}
		result.WriteString("\n")
	}

	for _, match := range quoteRe.FindAllStringSubmatch(content, -1) {
		result.WriteString(decodePDFString(match[1]))
		result.WriteString("\n")
	}

	// Negative Y offsets in Td operators mark new lines.
	for range tdRe.FindAllString(content, -1) {
		result.WriteString("\n")
	}

	return result.String()
}

func decodePDFString(s string) string {
	replacer := strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
	)
	s = replacer.Replace(s)

	var clean strings.Builder
	for _, r := range s {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			clean.WriteRune(r)
		}
	}
	return clean.String()
}

// rasterizePages renders every PDF page to a PNG in dir at the given DPI
// using pdftoppm, returning file paths ordered by page number.
func rasterizePages(data []byte, dir string, dpi int) ([]string, error) {
	path, found := findBinary("pdftoppm")
	if !found {
		return nil, fmt.Errorf("pdftoppm not found")
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.Command(path, "-png", "-r", fmt.Sprint(dpi), "-", prefix)
	cmd.Stdin = bytes.NewReader(data)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (%s)", err, stderr.String())
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(matches)
	return matches, nil
}

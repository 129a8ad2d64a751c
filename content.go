package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	errNotFound    = errors.New("file not found")
	errNotAFile    = errors.New("path is not a file")
	errPermission  = errors.New("permission denied")
	errBadEncoding = errors.New("unsupported encoding")
)

type pageExtractor interface {
	ReadPages(path string) ([]string, error)
}

// ContentReader returns textual file content for tool callers. PDF paths go
// through page-by-page extraction, anything else is treated as UTF-8 text.
type ContentReader struct {
	root  string
	limit int // max runes kept per extracted page, 0 or less is unlimited
	pdf   pageExtractor
}

// Read resolves path and returns its text. Relative paths are joined against
// the workspace root; absolute paths are used as-is (matching the original
// tool contract, see DESIGN.md).
func (c *ContentReader) Read(path string) (string, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(c.root, resolved)
	}
	resolved = filepath.Clean(resolved)

	info, err := os.Stat(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", errNotFound
	case errors.Is(err, fs.ErrPermission):
		return "", errPermission
	case err != nil:
		return "", err
	case !info.Mode().IsRegular():
		return "", errNotAFile
	}

	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(path)), ".pdf") {
		return c.readPdf(resolved)
	}

	return c.readText(resolved)
}

func (c *ContentReader) readPdf(path string) (string, error) {
	pages, err := c.pdf.ReadPages(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", errPermission
		}
		return "", err
	}

	for i, p := range pages {
		pages[i] = truncate(p, c.limit)
	}

	return strings.Join(pages, "\n"), nil
}

func (c *ContentReader) readText(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrPermission) {
		return "", errPermission
	}
	if err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return "", errBadEncoding
	}

	return string(buf), nil
}

// Obtain renders the tool response: content under a header on success, a
// categorized one-line message otherwise. Nothing escapes as an error.
func (c *ContentReader) Obtain(path string) string {
	text, err := c.Read(path)
	switch {
	case err == nil:
		return fmt.Sprintf("Contents of %s:\n%s", path, text)
	case errors.Is(err, errNotFound):
		return fmt.Sprintf("File not found: %s", path)
	case errors.Is(err, errNotAFile):
		return fmt.Sprintf("Path is not a file: %s", path)
	case errors.Is(err, errBadEncoding):
		return fmt.Sprintf("File is not text or uses unsupported encoding: %s", path)
	case errors.Is(err, errPermission):
		return fmt.Sprintf("Permission denied reading: %s", path)
	default:
		return fmt.Sprintf("Error reading file: %s", err)
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}

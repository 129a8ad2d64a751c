package readers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type TxtFileReader struct{}

func (r *TxtFileReader) CanRead(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, ".txt") || strings.EqualFold(ext, ".md")
}

func (r *TxtFileReader) ReadText(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text file: %w", err)
	}

	if !utf8.Valid(buf) {
		return "", fmt.Errorf("file is not valid utf-8 text: %s", path)
	}

	return string(buf), nil
}

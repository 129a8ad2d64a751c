package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
)

// UniversalFileReader converts the document formats docconv understands into
// plain text for ingestion. It does not preserve page boundaries; the
// content tool uses PdfFileReader when those matter.
type UniversalFileReader struct {
}

var universalExts = []string{".txt", ".docx", ".odt", ".pdf", ".xml"}

func (r *UniversalFileReader) CanRead(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range universalExts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}

	return false
}

func (r *UniversalFileReader) ReadText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	return res.Body, nil
}

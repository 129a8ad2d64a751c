package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PdfFileReader struct {
}

func (r *PdfFileReader) CanRead(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, ".pdf")
}

func (r *PdfFileReader) ReadText(path string) (string, error) {
	pages, err := r.ReadPages(path)
	if err != nil {
		return "", err
	}

	return strings.Join(pages, "\n"), nil
}

// ReadPages extracts text page by page. Pages that fail to parse or carry no
// text are skipped rather than failing the whole document.
func (r *PdfFileReader) ReadPages(path string) ([]string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf document: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}

		pages = append(pages, text)
	}

	return pages, nil
}

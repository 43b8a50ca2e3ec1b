// Package pdftext reads the embedded text layer of PDF documents.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// Reader extracts plain text from PDF bytes. Scanned documents without a text
// layer yield empty strings; OCR is out of scope.
type Reader struct {
	log zerolog.Logger
}

func NewReader(log zerolog.Logger) *Reader {
	return &Reader{log: log}
}

// ExtractPages returns the text of every page in order. A page whose text
// layer cannot be read contributes an empty string rather than failing the
// whole document.
func (r *Reader) ExtractPages(data []byte) ([]string, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			r.log.Warn().Int("page", i).Err(err).Msg("page text layer unreadable")
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ExtractText returns the whole document's text, pages joined by newlines.
func (r *Reader) ExtractText(data []byte) (string, error) {
	pages, err := r.ExtractPages(data)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}

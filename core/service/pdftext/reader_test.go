package pdftext

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestExtractTextRejectsNonPDF(t *testing.T) {
	reader := NewReader(zerolog.Nop())

	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"plain text", []byte("this is not a pdf")},
		{"truncated header", []byte("%PDF-1.4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reader.ExtractText(tt.data); err == nil {
				t.Errorf("ExtractText(%s) error = nil, want parse error", tt.name)
			}
		})
	}
}

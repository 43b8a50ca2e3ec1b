package provider

import (
	"testing"
	"time"

	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

func TestBuildGmailQuery(t *testing.T) {
	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		opts out.SearchOptions
		want string
	}{
		{
			name: "inbox omits folder clause",
			opts: out.SearchOptions{Keywords: "發票", After: after, Before: before, Folder: "INBOX"},
			want: `subject:"發票" after:2024/03/01 before:2024/03/31`,
		},
		{
			name: "empty folder omits folder clause",
			opts: out.SearchOptions{Keywords: "invoice", After: after, Before: before},
			want: `subject:"invoice" after:2024/03/01 before:2024/03/31`,
		},
		{
			name: "non-inbox folder appended lowercase",
			opts: out.SearchOptions{Keywords: "invoice", After: after, Before: before, Folder: "TRASH"},
			want: `subject:"invoice" after:2024/03/01 before:2024/03/31 in:trash`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildGmailQuery(&tt.opts); got != tt.want {
				t.Errorf("buildGmailQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPDFAttachment(t *testing.T) {
	tests := []struct {
		filename string
		mimeType string
		want     bool
	}{
		{"invoice.pdf", "application/pdf", true},
		{"invoice.PDF", "application/octet-stream", true},
		{"invoice.pdf", "", true},
		{"scan", "application/pdf", true},
		{"scan", "APPLICATION/PDF", true},
		{"photo.jpg", "image/jpeg", false},
		{"doc.pdf.txt", "text/plain", false},
	}

	for _, tt := range tests {
		if got := isPDFAttachment(tt.filename, tt.mimeType); got != tt.want {
			t.Errorf("isPDFAttachment(%q, %q) = %v, want %v", tt.filename, tt.mimeType, got, tt.want)
		}
	}
}

func TestParseEmailAddress(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantEmail string
	}{
		{"Billing <billing@example.com>", "Billing", "billing@example.com"},
		{"billing@example.com", "", "billing@example.com"},
		{`"Acme, Inc." <ap@acme.example>`, "Acme, Inc.", "ap@acme.example"},
	}

	for _, tt := range tests {
		got := parseEmailAddress(tt.in)
		if got.Name != tt.wantName || got.Email != tt.wantEmail {
			t.Errorf("parseEmailAddress(%q) = %+v, want {%q %q}", tt.in, got, tt.wantName, tt.wantEmail)
		}
	}
}

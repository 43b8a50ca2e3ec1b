package provider

import (
	"testing"
	"time"
)

func TestGraphFolderID(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"INBOX", "inbox"},
		{"ARCHIVE", "archive"},
		{"SENT", "sentitems"},
		{"DRAFT", "drafts"},
		{"TRASH", "deleteditems"},
		{"", "inbox"},
	}

	for _, tt := range tests {
		if got := graphFolderID(tt.folder); got != tt.want {
			t.Errorf("graphFolderID(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestWithinWindow(t *testing.T) {
	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"inside window", time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), true},
		{"on start boundary", after, true},
		{"end day is inclusive", time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), true},
		{"before window", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), false},
		{"after window", time.Date(2024, 4, 1, 0, 1, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinWindow(tt.t, after, before); got != tt.want {
				t.Errorf("withinWindow(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestExtractSkipToken(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "skiptoken parameter",
			link: "https://graph.microsoft.com/v1.0/me/messages?%24search=%22invoice%22&%24skiptoken=abc123",
			want: "abc123",
		},
		{
			name: "skip parameter",
			link: "https://graph.microsoft.com/v1.0/me/messages?%24skip=50",
			want: "50",
		},
		{
			name: "no pagination parameter",
			link: "https://graph.microsoft.com/v1.0/me/messages",
			want: "",
		},
		{
			name: "empty link",
			link: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSkipToken(tt.link); got != tt.want {
				t.Errorf("extractSkipToken(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

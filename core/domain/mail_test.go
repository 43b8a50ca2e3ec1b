package domain

import "testing"

func TestParseMailProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    MailProvider
		wantErr bool
	}{
		{"GOOGLE", ProviderGoogle, false},
		{"google", ProviderGoogle, false},
		{"GMAIL", ProviderGoogle, false},
		{"MICROSOFT", ProviderMicrosoft, false},
		{"outlook", ProviderMicrosoft, false},
		{"YAHOO", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMailProvider(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMailProvider(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMailProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMailFolder(t *testing.T) {
	for _, valid := range []string{"INBOX", "ARCHIVE", "SENT", "DRAFT", "TRASH"} {
		if _, err := ParseMailFolder(valid); err != nil {
			t.Errorf("ParseMailFolder(%q) error = %v", valid, err)
		}
	}
	for _, invalid := range []string{"inbox", "SPAM", ""} {
		if _, err := ParseMailFolder(invalid); err == nil {
			t.Errorf("ParseMailFolder(%q) error = nil, want error", invalid)
		}
	}
}

package provider

import "testing"

func testFactory() *Factory {
	return NewFactory(
		&GmailConfig{ClientID: "gid", ClientSecret: "gsecret", RedirectURL: "http://localhost/cb"},
		&OutlookConfig{ClientID: "mid", ClientSecret: "msecret", RedirectURL: "http://localhost/cb"},
	)
}

func TestCreateProvider(t *testing.T) {
	f := testFactory()

	tests := []struct {
		in       string
		wantType string
		wantErr  bool
	}{
		{"GOOGLE", "gmail", false},
		{"gmail", "gmail", false},
		{"MICROSOFT", "outlook", false},
		{"OUTLOOK", "outlook", false},
		{"IMAP", "", true},
	}

	for _, tt := range tests {
		prov, err := f.CreateProvider(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CreateProvider(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got := prov.GetProviderType(); got != tt.wantType {
			t.Errorf("CreateProvider(%q).GetProviderType() = %q, want %q", tt.in, got, tt.wantType)
		}
	}
}

func TestFactorySharesAdapterInstances(t *testing.T) {
	f := testFactory()

	a, _ := f.CreateProvider("GOOGLE")
	b, _ := f.CreateProvider("GMAIL")
	if a != b {
		t.Error("CreateProvider returned distinct gmail adapters for the same provider")
	}
}

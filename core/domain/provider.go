package domain

import (
	"fmt"
	"strings"
)

// MailProvider identifies a mail backend.
type MailProvider string

const (
	ProviderGoogle    MailProvider = "GOOGLE"
	ProviderMicrosoft MailProvider = "MICROSOFT"
)

// ParseMailProvider normalizes the provider names accepted on the wire.
func ParseMailProvider(s string) (MailProvider, error) {
	switch strings.ToUpper(s) {
	case "GOOGLE", "GMAIL":
		return ProviderGoogle, nil
	case "MICROSOFT", "OUTLOOK":
		return ProviderMicrosoft, nil
	default:
		return "", fmt.Errorf("unsupported mail provider: %s", s)
	}
}

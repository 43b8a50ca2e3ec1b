package domain

import (
	"fmt"
	"time"
)

// =============================================================================
// Mail Search
// =============================================================================

// MailFolder is the shared folder enum across providers. Adapters translate it
// to provider-specific query clauses.
type MailFolder string

const (
	FolderInbox   MailFolder = "INBOX"
	FolderArchive MailFolder = "ARCHIVE"
	FolderSent    MailFolder = "SENT"
	FolderDraft   MailFolder = "DRAFT"
	FolderTrash   MailFolder = "TRASH"
)

// ParseMailFolder validates a folder name.
func ParseMailFolder(s string) (MailFolder, error) {
	switch MailFolder(s) {
	case FolderInbox, FolderArchive, FolderSent, FolderDraft, FolderTrash:
		return MailFolder(s), nil
	default:
		return "", fmt.Errorf("unsupported mail folder: %s", s)
	}
}

// MailSearchQuery is a validated mailbox search request.
type MailSearchQuery struct {
	Provider MailProvider
	Keywords string
	Start    time.Time
	End      time.Time
	Folder   MailFolder
}

// EmailAddress is a display name and address pair.
type EmailAddress struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttachmentInfo describes an attachment without its content.
type AttachmentInfo struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// EmailSummary is a search hit returned to the caller.
type EmailSummary struct {
	ID             string           `json:"id"`
	Subject        string           `json:"subject"`
	Sender         EmailAddress     `json:"sender"`
	Date           string           `json:"date"`
	Content        string           `json:"content"`
	HasAttachments bool             `json:"has_attachments"`
	Attachments    []AttachmentInfo `json:"attachments"`
}

// =============================================================================
// Auth Session
// =============================================================================

// ProviderUser is the authenticated user's profile as reported by the
// provider.
type ProviderUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// AuthSession is the result of an OAuth code exchange.
type AuthSession struct {
	Provider     MailProvider `json:"provider"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         ProviderUser `json:"user"`
}

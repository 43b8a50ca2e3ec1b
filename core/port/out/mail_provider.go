// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// =============================================================================
// Mail Provider Port (Gmail, Outlook)
// =============================================================================

// MailProviderPort is the outbound port for external mail providers. One
// abstraction, two adapters — never string-tag branching at call sites.
type MailProviderPort interface {
	GetProviderType() string // "gmail", "outlook"

	MailAuthenticator
	MailMessageReader
	MailAttachmentFetcher

	GetProfile(ctx context.Context, token *oauth2.Token) (*ProviderProfile, error)
}

// MailAuthenticator handles OAuth authentication.
type MailAuthenticator interface {
	GetAuthURL(state string) string
	ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error)
	RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
	ValidateToken(ctx context.Context, token *oauth2.Token) (bool, error)
}

// MailMessageReader handles searching and reading messages.
type MailMessageReader interface {
	SearchMessages(ctx context.Context, token *oauth2.Token, opts *SearchOptions) (*SearchResult, error)
	GetMessage(ctx context.Context, token *oauth2.Token, externalID string) (*ProviderMailMessage, error)
}

// MailAttachmentFetcher retrieves attachments.
type MailAttachmentFetcher interface {
	// GetPDFAttachments returns the PDF attachments of a message as raw
	// provider envelopes. An attachment counts as PDF when its MIME type is
	// application/pdf or its filename ends in .pdf.
	GetPDFAttachments(ctx context.Context, token *oauth2.Token, messageID string) ([]AttachmentEnvelope, error)
}

// =============================================================================
// Provider Types
// =============================================================================

// SearchOptions represents a mailbox search.
type SearchOptions struct {
	Keywords   string
	After      time.Time
	Before     time.Time
	Folder     string // INBOX, ARCHIVE, SENT, DRAFT, TRASH
	MaxResults int
	PageToken  string
}

// SearchResult represents a search result page.
type SearchResult struct {
	Messages      []ProviderMailMessage
	NextPageToken string
}

// ProviderMailMessage represents a mail message from a provider.
type ProviderMailMessage struct {
	ExternalID    string
	Subject       string
	From          ProviderEmailAddress
	Date          time.Time
	Snippet       string
	Body          string
	HasAttachment bool
	Attachments   []ProviderMailAttachment
}

// ProviderEmailAddress represents an email address.
type ProviderEmailAddress struct {
	Name  string
	Email string
}

// ProviderMailAttachment describes an attachment without its content.
type ProviderMailAttachment struct {
	ID       string
	Filename string
	MimeType string
	Size     int64
}

// AttachmentEnvelope is the provider-specific wrapper around an attachment's
// encoded binary content. Exactly one of Content (Graph, standard base64) or
// Data (Gmail, URL-safe base64) is populated; the populated key — not the
// payload — is what the standardizer dispatches on.
type AttachmentEnvelope struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	MessageID string `json:"message_id"`

	Content string `json:"content,omitempty"` // Microsoft Graph convention
	Data    string `json:"data,omitempty"`    // Gmail convention
}

// ProviderProfile represents the authenticated user's profile.
type ProviderProfile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// =============================================================================
// Provider Error
// =============================================================================

// ProviderErrorCode represents error codes.
type ProviderErrorCode string

const (
	ProviderErrAuth         ProviderErrorCode = "auth_error"
	ProviderErrTokenExpired ProviderErrorCode = "token_expired"
	ProviderErrRateLimit    ProviderErrorCode = "rate_limit"
	ProviderErrNotFound     ProviderErrorCode = "not_found"
	ProviderErrNetwork      ProviderErrorCode = "network_error"
	ProviderErrServer       ProviderErrorCode = "server_error"
	ProviderErrInvalidInput ProviderErrorCode = "invalid_input"
)

// ProviderError represents a provider error.
type ProviderError struct {
	Provider  string
	Code      ProviderErrorCode
	Message   string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error.
func NewProviderError(provider string, code ProviderErrorCode, message string, err error, retryable bool) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

// =============================================================================
// Provider Factory
// =============================================================================

// MailProviderFactory resolves the adapter for a provider name.
type MailProviderFactory interface {
	CreateProvider(providerType string) (MailProviderPort, error)
}

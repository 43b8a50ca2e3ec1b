// Package provider implements mail provider adapters.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

// =============================================================================
// Gmail Adapter
// =============================================================================

// GmailAdapter implements out.MailProviderPort for Gmail.
type GmailAdapter struct {
	config *oauth2.Config
	cb     *gobreaker.CircuitBreaker
}

// GmailConfig holds Gmail configuration.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewGmailAdapter creates a new Gmail adapter.
func NewGmailAdapter(cfg *GmailConfig) *GmailAdapter {
	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			gmail.GmailReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}

	cbSettings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[CircuitBreaker] %s: state changed from %s to %s", name, from.String(), to.String())
		},
	}

	return &GmailAdapter{
		config: config,
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// GetProviderType returns the provider type.
func (a *GmailAdapter) GetProviderType() string {
	return "gmail"
}

// =============================================================================
// Authentication
// =============================================================================

// GetAuthURL returns the OAuth authorization URL.
func (a *GmailAdapter) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeToken exchanges authorization code for token.
func (a *GmailAdapter) ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, a.wrapError(err, "failed to exchange token")
	}
	return token, nil
}

// RefreshToken refreshes the access token.
func (a *GmailAdapter) RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	src := a.config.TokenSource(ctx, token)
	newToken, err := src.Token()
	if err != nil {
		return nil, a.wrapError(err, "failed to refresh token")
	}
	return newToken, nil
}

// ValidateToken validates the token.
func (a *GmailAdapter) ValidateToken(ctx context.Context, token *oauth2.Token) (bool, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return false, err
	}

	_, err = svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 401 {
			return false, nil
		}
		return false, a.wrapError(err, "failed to validate token")
	}
	return true, nil
}

// =============================================================================
// Message Search
// =============================================================================

// SearchMessages searches the mailbox by keywords, date window, and folder.
func (a *GmailAdapter) SearchMessages(ctx context.Context, token *oauth2.Token, opts *out.SearchOptions) (*out.SearchResult, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, err
	}

	maxResults := int64(50)
	if opts.MaxResults > 0 {
		maxResults = int64(opts.MaxResults)
	}

	req := svc.Users.Messages.List("me").
		Q(buildGmailQuery(opts)).
		MaxResults(maxResults)
	if opts.PageToken != "" {
		req = req.PageToken(opts.PageToken)
	}

	var resp *gmail.ListMessagesResponse
	cbErr := a.executeWithCircuitBreaker("SearchMessages", func() error {
		var apiErr error
		resp, apiErr = req.Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to search messages")
	}

	messages := a.fetchMessagesParallel(ctx, svc, resp.Messages)

	return &out.SearchResult{
		Messages:      messages,
		NextPageToken: resp.NextPageToken,
	}, nil
}

// buildGmailQuery renders search options as a Gmail query string. Dates use
// the Y/M/D form Gmail expects; the folder clause is omitted for INBOX.
func buildGmailQuery(opts *out.SearchOptions) string {
	parts := []string{
		fmt.Sprintf("subject:%q", opts.Keywords),
		"after:" + opts.After.Format("2006/01/02"),
		"before:" + opts.Before.Format("2006/01/02"),
	}
	if opts.Folder != "" && opts.Folder != "INBOX" {
		parts = append(parts, "in:"+strings.ToLower(opts.Folder))
	}
	return strings.Join(parts, " ")
}

// GetMessage retrieves a single message with full payload.
func (a *GmailAdapter) GetMessage(ctx context.Context, token *oauth2.Token, externalID string) (*out.ProviderMailMessage, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, err
	}

	var msg *gmail.Message
	cbErr := a.executeWithCircuitBreaker("GetMessage", func() error {
		var apiErr error
		msg, apiErr = svc.Users.Messages.Get("me", externalID).Format("full").Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to get message")
	}

	result := a.convertMessage(msg)
	return &result, nil
}

// fetchMessagesParallel fetches full messages with a bounded number of
// concurrent API calls and a per-message timeout. Failed fetches are dropped;
// order is preserved.
func (a *GmailAdapter) fetchMessagesParallel(ctx context.Context, svc *gmail.Service, msgRefs []*gmail.Message) []out.ProviderMailMessage {
	if len(msgRefs) == 0 {
		return nil
	}

	const maxConcurrency = 10
	const perMessageTimeout = 15 * time.Second

	type result struct {
		index int
		msg   out.ProviderMailMessage
		err   error
	}

	results := make(chan result, len(msgRefs))
	sem := make(chan struct{}, maxConcurrency)

	for i, msgRef := range msgRefs {
		go func(idx int, id string) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- result{index: idx, err: ctx.Err()}
				return
			}

			msgCtx, cancel := context.WithTimeout(ctx, perMessageTimeout)
			defer cancel()

			fullMsg, err := svc.Users.Messages.Get("me", id).Format("full").Context(msgCtx).Do()
			if err != nil {
				results <- result{index: idx, err: err}
				return
			}
			results <- result{index: idx, msg: a.convertMessage(fullMsg)}
		}(i, msgRef.Id)
	}

	messages := make([]out.ProviderMailMessage, len(msgRefs))
	collected := 0
	for collected < len(msgRefs) {
		select {
		case r := <-results:
			collected++
			if r.err == nil {
				messages[r.index] = r.msg
			}
		case <-ctx.Done():
			collected = len(msgRefs)
		}
	}

	filtered := make([]out.ProviderMailMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.ExternalID != "" {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// =============================================================================
// Attachments
// =============================================================================

// GetPDFAttachments downloads the PDF attachments of a message. Payloads stay
// in Gmail's URL-safe base64 form under the envelope's Data key.
func (a *GmailAdapter) GetPDFAttachments(ctx context.Context, token *oauth2.Token, messageID string) ([]out.AttachmentEnvelope, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, err
	}

	var msg *gmail.Message
	cbErr := a.executeWithCircuitBreaker("GetPDFAttachments", func() error {
		var apiErr error
		msg, apiErr = svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to get message")
	}
	if msg.Payload == nil {
		return nil, nil
	}

	var envelopes []out.AttachmentEnvelope
	for _, part := range flattenParts(msg.Payload) {
		if part.Filename == "" || part.Body == nil {
			continue
		}
		if !isPDFAttachment(part.Filename, part.MimeType) {
			log.Printf("[GmailAdapter] skipping non-PDF attachment %q (%s)", part.Filename, part.MimeType)
			continue
		}

		data := part.Body.Data
		if data == "" && part.Body.AttachmentId != "" {
			var att *gmail.MessagePartBody
			cbErr := a.executeWithCircuitBreaker("GetAttachment", func() error {
				var apiErr error
				att, apiErr = svc.Users.Messages.Attachments.
					Get("me", messageID, part.Body.AttachmentId).Context(ctx).Do()
				return apiErr
			})
			if cbErr != nil {
				return nil, a.wrapError(cbErr, "failed to get attachment")
			}
			data = att.Data
		}
		if data == "" {
			continue
		}

		envelopes = append(envelopes, out.AttachmentEnvelope{
			Filename:  part.Filename,
			MimeType:  part.MimeType,
			Size:      part.Body.Size,
			MessageID: messageID,
			Data:      data,
		})
	}

	return envelopes, nil
}

func flattenParts(part *gmail.MessagePart) []*gmail.MessagePart {
	parts := []*gmail.MessagePart{part}
	for _, p := range part.Parts {
		parts = append(parts, flattenParts(p)...)
	}
	return parts
}

// isPDFAttachment matches on MIME type or filename suffix; some senders ship
// PDFs as application/octet-stream.
func isPDFAttachment(filename, mimeType string) bool {
	return strings.EqualFold(mimeType, "application/pdf") ||
		strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// =============================================================================
// Profile
// =============================================================================

// GetProfile retrieves the authenticated user's profile.
func (a *GmailAdapter) GetProfile(ctx context.Context, token *oauth2.Token) (*out.ProviderProfile, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, err := svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, a.wrapError(err, "failed to get profile")
	}

	return &out.ProviderProfile{
		ID:    profile.EmailAddress,
		Email: profile.EmailAddress,
		Name:  profile.EmailAddress,
	}, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (a *GmailAdapter) getService(ctx context.Context, token *oauth2.Token) (*gmail.Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return gmail.NewService(ctx, option.WithTokenSource(
		a.config.TokenSource(ctx, token),
	))
}

// executeWithCircuitBreaker wraps an API call with circuit breaker protection.
// Client-side errors (auth, not found) never trip the circuit.
func (a *GmailAdapter) executeWithCircuitBreaker(operation string, fn func() error) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok {
				switch apiErr.Code {
				case 500, 502, 503, 429:
					return nil, err
				case 400, 401, 403, 404:
					return nil, &nonCircuitError{err: err}
				}
			}
			return nil, err
		}
		return nil, nil
	})

	if nce, ok := err.(*nonCircuitError); ok {
		return nce.err
	}

	if err != nil {
		log.Printf("[GmailAdapter] circuit breaker error for %s: state=%s, err=%v",
			operation, a.cb.State().String(), err)
	}

	return err
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

func (a *GmailAdapter) convertMessage(msg *gmail.Message) out.ProviderMailMessage {
	result := out.ProviderMailMessage{
		ExternalID: msg.Id,
		Snippet:    msg.Snippet,
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				result.Subject = h.Value
			case "From":
				result.From = parseEmailAddress(h.Value)
			case "Date":
				if t, err := mail.ParseDate(h.Value); err == nil {
					result.Date = t
				}
			}
		}

		result.Body = extractPlainText(msg.Payload)
		result.Attachments = listAttachmentMeta(msg.Payload)
		result.HasAttachment = len(result.Attachments) > 0
	}

	if result.Date.IsZero() {
		result.Date = time.Unix(0, msg.InternalDate*int64(time.Millisecond))
	}

	return result
}

func extractPlainText(part *gmail.MessagePart) string {
	for _, p := range flattenParts(part) {
		if p.MimeType == "text/plain" && p.Body != nil && p.Body.Data != "" {
			if data, err := decodeGmailBody(p.Body.Data); err == nil {
				return data
			}
		}
	}
	return ""
}

// decodeGmailBody decodes Gmail's URL-safe base64 body data, padded or not.
func decodeGmailBody(data string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func listAttachmentMeta(part *gmail.MessagePart) []out.ProviderMailAttachment {
	var attachments []out.ProviderMailAttachment
	for _, p := range flattenParts(part) {
		if p.Filename == "" {
			continue
		}
		att := out.ProviderMailAttachment{
			Filename: p.Filename,
			MimeType: p.MimeType,
		}
		if p.Body != nil {
			att.ID = p.Body.AttachmentId
			att.Size = p.Body.Size
		}
		attachments = append(attachments, att)
	}
	return attachments
}

func parseEmailAddress(s string) out.ProviderEmailAddress {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return out.ProviderEmailAddress{Email: s}
	}
	return out.ProviderEmailAddress{
		Name:  addr.Name,
		Email: addr.Address,
	}
}

func (a *GmailAdapter) wrapError(err error, defaultMsg string) error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case 401:
			return out.NewProviderError("gmail", out.ProviderErrTokenExpired, "Token expired", err, false)
		case 403:
			if strings.Contains(apiErr.Message, "Rate Limit") {
				return out.NewProviderError("gmail", out.ProviderErrRateLimit, "Rate limit exceeded", err, true)
			}
			return out.NewProviderError("gmail", out.ProviderErrAuth, "Access denied", err, false)
		case 404:
			return out.NewProviderError("gmail", out.ProviderErrNotFound, "Not found", err, false)
		case 429:
			return out.NewProviderError("gmail", out.ProviderErrRateLimit, "Too many requests", err, true)
		case 500, 502, 503:
			return out.NewProviderError("gmail", out.ProviderErrServer, "Server error", err, true)
		}
	}

	return out.NewProviderError("gmail", out.ProviderErrServer, defaultMsg, err, true)
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.MailProviderPort = (*GmailAdapter)(nil)

package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// =============================================================================
// Outlook Adapter
// =============================================================================

// OutlookAdapter implements out.MailProviderPort for Microsoft Outlook via the
// Graph REST API.
type OutlookAdapter struct {
	config *oauth2.Config
}

// OutlookConfig holds Outlook configuration.
type OutlookConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TenantID     string
}

// NewOutlookAdapter creates a new Outlook adapter.
func NewOutlookAdapter(cfg *OutlookConfig) *OutlookAdapter {
	tenantID := cfg.TenantID
	if tenantID == "" {
		tenantID = "common"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			"https://graph.microsoft.com/Mail.Read",
			"https://graph.microsoft.com/User.Read",
			"offline_access",
		},
		Endpoint: microsoft.AzureADEndpoint(tenantID),
	}

	return &OutlookAdapter{
		config: config,
	}
}

// GetProviderType returns the provider type.
func (a *OutlookAdapter) GetProviderType() string {
	return "outlook"
}

// =============================================================================
// Authentication
// =============================================================================

// GetAuthURL returns the OAuth authorization URL.
func (a *OutlookAdapter) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeToken exchanges authorization code for token.
func (a *OutlookAdapter) ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, a.wrapError(err, "failed to exchange token")
	}
	return token, nil
}

// RefreshToken refreshes the access token.
func (a *OutlookAdapter) RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	src := a.config.TokenSource(ctx, token)
	newToken, err := src.Token()
	if err != nil {
		return nil, a.wrapError(err, "failed to refresh token")
	}
	return newToken, nil
}

// ValidateToken validates the token.
func (a *OutlookAdapter) ValidateToken(ctx context.Context, token *oauth2.Token) (bool, error) {
	client := a.config.Client(ctx, token)
	resp, err := client.Get(graphBaseURL + "/me")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		return false, nil
	}
	return resp.StatusCode == 200, nil
}

// =============================================================================
// Message Search
// =============================================================================

// graphMessage is the Graph wire representation of a message.
type graphMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	BodyPreview      string    `json:"bodyPreview"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	HasAttachments bool `json:"hasAttachments"`
}

type graphMessageList struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// graphAttachment is the Graph wire representation of a file attachment.
type graphAttachment struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	ContentBytes string `json:"contentBytes"`
}

type graphAttachmentList struct {
	Value []graphAttachment `json:"value"`
}

// SearchMessages searches the mailbox via $search combined with a
// receivedDateTime window.
func (a *OutlookAdapter) SearchMessages(ctx context.Context, token *oauth2.Token, opts *out.SearchOptions) (*out.SearchResult, error) {
	client := a.config.Client(ctx, token)

	top := 50
	if opts.MaxResults > 0 {
		top = opts.MaxResults
	}

	params := url.Values{}
	params.Set("$search", fmt.Sprintf("%q", opts.Keywords))
	params.Set("$top", fmt.Sprintf("%d", top))
	params.Set("$select", "id,subject,from,receivedDateTime,bodyPreview,body,hasAttachments")

	endpoint := graphBaseURL + "/me/messages"
	if opts.Folder != "" && opts.Folder != "INBOX" {
		endpoint = graphBaseURL + "/me/mailFolders/" + graphFolderID(opts.Folder) + "/messages"
	}

	var resp graphMessageList
	if err := a.doGet(client, endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	// $search cannot be combined with a $filter on receivedDateTime, so the
	// date window is applied client-side.
	messages := make([]out.ProviderMailMessage, 0, len(resp.Value))
	for _, msg := range resp.Value {
		if !withinWindow(msg.ReceivedDateTime, opts.After, opts.Before) {
			continue
		}
		converted := a.convertMessage(msg)
		if msg.HasAttachments {
			attachments, err := a.listAttachmentMeta(client, msg.ID)
			if err != nil {
				log.Printf("[OutlookAdapter] failed to list attachments for %s: %v", msg.ID, err)
			} else {
				converted.Attachments = attachments
			}
		}
		messages = append(messages, converted)
	}

	return &out.SearchResult{
		Messages:      messages,
		NextPageToken: extractSkipToken(resp.NextLink),
	}, nil
}

func withinWindow(t, after, before time.Time) bool {
	if !after.IsZero() && t.Before(after) {
		return false
	}
	if !before.IsZero() && t.After(before.Add(24*time.Hour)) {
		return false
	}
	return true
}

// graphFolderID maps the shared folder enum to Graph well-known folder names.
func graphFolderID(folder string) string {
	switch folder {
	case "ARCHIVE":
		return "archive"
	case "SENT":
		return "sentitems"
	case "DRAFT":
		return "drafts"
	case "TRASH":
		return "deleteditems"
	default:
		return "inbox"
	}
}

// GetMessage retrieves a single message.
func (a *OutlookAdapter) GetMessage(ctx context.Context, token *oauth2.Token, externalID string) (*out.ProviderMailMessage, error) {
	client := a.config.Client(ctx, token)

	var msg graphMessage
	if err := a.doGet(client, graphBaseURL+"/me/messages/"+url.PathEscape(externalID), &msg); err != nil {
		return nil, err
	}

	result := a.convertMessage(msg)
	return &result, nil
}

func (a *OutlookAdapter) listAttachmentMeta(client *http.Client, messageID string) ([]out.ProviderMailAttachment, error) {
	var resp graphAttachmentList
	endpoint := graphBaseURL + "/me/messages/" + url.PathEscape(messageID) +
		"/attachments?$select=id,name,contentType,size"
	if err := a.doGet(client, endpoint, &resp); err != nil {
		return nil, err
	}

	attachments := make([]out.ProviderMailAttachment, len(resp.Value))
	for i, att := range resp.Value {
		attachments[i] = out.ProviderMailAttachment{
			ID:       att.ID,
			Filename: att.Name,
			MimeType: att.ContentType,
			Size:     att.Size,
		}
	}
	return attachments, nil
}

// =============================================================================
// Attachments
// =============================================================================

// GetPDFAttachments downloads the PDF attachments of a message. Payloads stay
// in Graph's standard base64 form under the envelope's Content key. Large
// attachments omit contentBytes; for those the raw bytes are fetched from the
// $value endpoint and re-encoded.
func (a *OutlookAdapter) GetPDFAttachments(ctx context.Context, token *oauth2.Token, messageID string) ([]out.AttachmentEnvelope, error) {
	client := a.config.Client(ctx, token)
	escapedID := url.PathEscape(messageID)

	var resp graphAttachmentList
	if err := a.doGet(client, graphBaseURL+"/me/messages/"+escapedID+"/attachments", &resp); err != nil {
		return nil, err
	}

	var envelopes []out.AttachmentEnvelope
	for _, att := range resp.Value {
		if !isPDFAttachment(att.Name, att.ContentType) {
			log.Printf("[OutlookAdapter] skipping non-PDF attachment %q (%s)", att.Name, att.ContentType)
			continue
		}

		content := att.ContentBytes
		if content == "" {
			raw, err := a.fetchAttachmentValue(client, escapedID, att.ID)
			if err != nil {
				log.Printf("[OutlookAdapter] failed to fetch large attachment %q: %v", att.Name, err)
				continue
			}
			content = base64.StdEncoding.EncodeToString(raw)
		}

		envelopes = append(envelopes, out.AttachmentEnvelope{
			Filename:  att.Name,
			MimeType:  att.ContentType,
			Size:      att.Size,
			MessageID: messageID,
			Content:   content,
		})
	}

	return envelopes, nil
}

// fetchAttachmentValue streams an attachment's raw bytes from $value.
func (a *OutlookAdapter) fetchAttachmentValue(client *http.Client, messageID, attachmentID string) ([]byte, error) {
	endpoint := graphBaseURL + "/me/messages/" + messageID +
		"/attachments/" + url.PathEscape(attachmentID) + "/$value"

	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, a.wrapError(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, a.wrapHTTPError(resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// =============================================================================
// Profile
// =============================================================================

// GetProfile retrieves the authenticated user's profile.
func (a *OutlookAdapter) GetProfile(ctx context.Context, token *oauth2.Token) (*out.ProviderProfile, error) {
	client := a.config.Client(ctx, token)

	var me struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := a.doGet(client, graphBaseURL+"/me", &me); err != nil {
		return nil, err
	}

	email := me.Mail
	if email == "" {
		email = me.UserPrincipalName
	}

	return &out.ProviderProfile{
		ID:    me.ID,
		Email: email,
		Name:  me.DisplayName,
	}, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (a *OutlookAdapter) convertMessage(msg graphMessage) out.ProviderMailMessage {
	return out.ProviderMailMessage{
		ExternalID: msg.ID,
		Subject:    msg.Subject,
		From: out.ProviderEmailAddress{
			Name:  msg.From.EmailAddress.Name,
			Email: msg.From.EmailAddress.Address,
		},
		Date:          msg.ReceivedDateTime,
		Snippet:       msg.BodyPreview,
		Body:          msg.Body.Content,
		HasAttachment: msg.HasAttachments,
	}
}

func (a *OutlookAdapter) doGet(client *http.Client, url string, result interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return a.wrapError(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return a.wrapHTTPError(resp.StatusCode, string(body))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (a *OutlookAdapter) wrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return out.NewProviderError("outlook", out.ProviderErrNetwork, msg, err, true)
}

func (a *OutlookAdapter) wrapHTTPError(statusCode int, body string) error {
	switch statusCode {
	case 401:
		return out.NewProviderError("outlook", out.ProviderErrTokenExpired, "Token expired", nil, false)
	case 403:
		return out.NewProviderError("outlook", out.ProviderErrAuth, "Access denied", nil, false)
	case 404:
		return out.NewProviderError("outlook", out.ProviderErrNotFound, "Not found", nil, false)
	case 429:
		return out.NewProviderError("outlook", out.ProviderErrRateLimit, "Too many requests", nil, true)
	default:
		return out.NewProviderError("outlook", out.ProviderErrServer, fmt.Sprintf("HTTP %d: %s", statusCode, body), nil, true)
	}
}

// extractSkipToken pulls the $skiptoken parameter out of an @odata.nextLink.
func extractSkipToken(nextLink string) string {
	if nextLink == "" {
		return ""
	}
	parsed, err := url.Parse(nextLink)
	if err != nil {
		return ""
	}
	for _, key := range []string{"$skiptoken", "$skip"} {
		if v := parsed.Query().Get(key); v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.MailProviderPort = (*OutlookAdapter)(nil)

// Package mailsearch implements mailbox keyword search across providers.
package mailsearch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

const defaultMaxResults = 50

// Service implements in.MailSearchService over the provider adapters.
type Service struct {
	factory out.MailProviderFactory
	log     zerolog.Logger
}

func NewService(factory out.MailProviderFactory, log zerolog.Logger) *Service {
	return &Service{factory: factory, log: log}
}

// Search runs the query against the user's mailbox and returns summaries of
// the matching messages.
func (s *Service) Search(ctx context.Context, accessToken string, query *domain.MailSearchQuery) ([]domain.EmailSummary, error) {
	prov, err := s.factory.CreateProvider(string(query.Provider))
	if err != nil {
		return nil, err
	}

	result, err := prov.SearchMessages(ctx, &oauth2.Token{AccessToken: accessToken}, &out.SearchOptions{
		Keywords:   query.Keywords,
		After:      query.Start,
		Before:     query.End,
		Folder:     string(query.Folder),
		MaxResults: defaultMaxResults,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.EmailSummary, 0, len(result.Messages))
	for _, msg := range result.Messages {
		summaries = append(summaries, toSummary(msg))
	}

	s.log.Info().Str("provider", string(query.Provider)).
		Int("matches", len(summaries)).Msg("mailbox search completed")
	return summaries, nil
}

func toSummary(msg out.ProviderMailMessage) domain.EmailSummary {
	attachments := make([]domain.AttachmentInfo, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, domain.AttachmentInfo{
			Filename: att.Filename,
			MimeType: att.MimeType,
			Size:     att.Size,
		})
	}

	return domain.EmailSummary{
		ID:      msg.ExternalID,
		Subject: msg.Subject,
		Sender: domain.EmailAddress{
			Name:  msg.From.Name,
			Email: msg.From.Email,
		},
		Date:           msg.Date.UTC().Format(time.RFC3339),
		Content:        msg.Body,
		HasAttachments: msg.HasAttachment || len(msg.Attachments) > 0,
		Attachments:    attachments,
	}
}

var _ in.MailSearchService = (*Service)(nil)

// Package in defines inbound ports (driving ports) for the application.
package in

import (
	"context"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

// AuthService handles OAuth code exchange and token validation.
type AuthService interface {
	// ExchangeCode trades an authorization code for tokens and the user's
	// profile.
	ExchangeCode(ctx context.Context, provider domain.MailProvider, code string) (*domain.AuthSession, error)

	// Validate reports whether the access token is still accepted by the
	// provider.
	Validate(ctx context.Context, provider domain.MailProvider, accessToken string) (bool, error)
}

// MailSearchService searches a user's mailbox.
type MailSearchService interface {
	Search(ctx context.Context, accessToken string, query *domain.MailSearchQuery) ([]domain.EmailSummary, error)
}

// AnalysisService runs invoice extraction over the PDF attachments of a set
// of messages and packages the originals for download.
type AnalysisService interface {
	// Analyze processes every message's PDF attachments, reports progress
	// under jobID, and returns extracted invoices plus failed filenames.
	Analyze(ctx context.Context, provider domain.MailProvider, accessToken string, emailIDs []string, jobID string) (*domain.AnalysisResult, error)

	// Progress returns the state of a running or finished job.
	Progress(ctx context.Context, jobID string) (*domain.AnalysisProgress, error)

	// BatchArchive returns the path of the ZIP built for a batch.
	BatchArchive(batchID string) (string, error)

	// RemoveBatch deletes a batch's working directory and archive.
	RemoveBatch(batchID string) error
}

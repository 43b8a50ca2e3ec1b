// Package analysis orchestrates invoice extraction over mail attachments.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
	"github.com/NATEHSIAO/pdf-invoice/core/service/extract"
	"github.com/NATEHSIAO/pdf-invoice/core/service/pdftext"
)

// ErrJobNotFound is returned when no progress exists for a job ID.
var ErrJobNotFound = errors.New("analysis job not found")

// ErrBatchNotFound is returned when a batch archive does not exist.
var ErrBatchNotFound = errors.New("batch not found")

// Service runs the per-message pipeline: fetch PDF envelopes, standardize to
// raw bytes, read the text layer, extract the invoice. One failing document
// never aborts the batch.
type Service struct {
	factory   out.MailProviderFactory
	reader    *pdftext.Reader
	extractor *extract.Extractor
	progress  out.ProgressStore
	workDir   string
	log       zerolog.Logger
}

// NewService creates the analysis service. workDir is the base directory for
// per-batch files; it is created on demand.
func NewService(factory out.MailProviderFactory, progress out.ProgressStore, workDir string, log zerolog.Logger) *Service {
	return &Service{
		factory:   factory,
		reader:    pdftext.NewReader(log),
		extractor: extract.NewExtractor(log),
		progress:  progress,
		workDir:   workDir,
		log:       log,
	}
}

// Analyze processes the PDF attachments of the given messages. Progress is
// reported under jobID after every message. Original PDFs are collected into
// a per-batch ZIP whose download path is returned with the result.
func (s *Service) Analyze(ctx context.Context, provider domain.MailProvider, accessToken string, emailIDs []string, jobID string) (*domain.AnalysisResult, error) {
	prov, err := s.factory.CreateProvider(string(provider))
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{AccessToken: accessToken}

	batchID := fmt.Sprintf("batch_%s_%s", time.Now().Format("20060102150405"), uuid.New().String()[:8])
	batchDir := filepath.Join(s.workDir, batchID)
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch dir: %w", err)
	}

	s.setProgress(ctx, jobID, domain.AnalysisProgress{
		Total:   len(emailIDs),
		Current: 0,
		Status:  domain.AnalysisStatusProcessing,
		Message: "fetching attachments",
	})

	result := &domain.AnalysisResult{
		Invoices:    []domain.InvoiceRecord{},
		FailedFiles: []string{},
	}
	saved := 0

	for i, emailID := range emailIDs {
		if err := ctx.Err(); err != nil {
			s.setProgress(ctx, jobID, domain.AnalysisProgress{
				Total: len(emailIDs), Current: i,
				Status:  domain.AnalysisStatusFailed,
				Message: "analysis cancelled",
			})
			return nil, err
		}

		s.analyzeMessage(ctx, prov, token, emailID, batchDir, result, &saved)

		s.setProgress(ctx, jobID, domain.AnalysisProgress{
			Total:   len(emailIDs),
			Current: i + 1,
			Status:  domain.AnalysisStatusProcessing,
			Message: fmt.Sprintf("processed %d of %d messages", i+1, len(emailIDs)),
		})
	}

	if saved > 0 {
		if err := buildArchive(batchDir, s.archivePath(batchID)); err != nil {
			s.log.Error().Str("batch_id", batchID).Err(err).Msg("failed to build batch archive")
		} else {
			result.DownloadURL = "/api/pdf/download/" + batchID
		}
	}

	s.setProgress(ctx, jobID, domain.AnalysisProgress{
		Total:   len(emailIDs),
		Current: len(emailIDs),
		Status:  domain.AnalysisStatusCompleted,
		Message: fmt.Sprintf("extracted %d invoices, %d failures", len(result.Invoices), len(result.FailedFiles)),
	})

	return result, nil
}

// analyzeMessage runs the pipeline for a single message. All failures are
// recorded in the result; none propagate.
func (s *Service) analyzeMessage(ctx context.Context, prov out.MailProviderPort, token *oauth2.Token, emailID, batchDir string, result *domain.AnalysisResult, saved *int) {
	msg, err := prov.GetMessage(ctx, token, emailID)
	if err != nil {
		s.log.Warn().Str("email_id", emailID).Err(err).Msg("failed to fetch message")
		result.FailedFiles = append(result.FailedFiles, emailID)
		return
	}
	email := emailContext(msg)

	envelopes, err := prov.GetPDFAttachments(ctx, token, emailID)
	if err != nil {
		s.log.Warn().Str("email_id", emailID).Err(err).Msg("failed to fetch attachments")
		result.FailedFiles = append(result.FailedFiles, emailID)
		return
	}

	for i := range envelopes {
		env := &envelopes[i]

		raw, err := extract.StandardizeAttachment(env)
		if err != nil {
			s.log.Warn().Str("filename", env.Filename).Err(err).Msg("attachment payload not decodable")
			result.FailedFiles = append(result.FailedFiles, env.Filename)
			continue
		}

		text, err := s.reader.ExtractText(raw)
		if err != nil {
			s.log.Warn().Str("filename", env.Filename).Err(err).Msg("pdf unreadable")
			result.FailedFiles = append(result.FailedFiles, env.Filename)
			continue
		}

		rec, err := s.extractor.Extract(text, email, env.Filename)
		if err != nil {
			if failure, ok := domain.IsExtractionFailure(err); ok {
				s.log.Warn().Str("filename", env.Filename).
					Str("reason", string(failure.Reason)).Msg("extraction failed")
			} else {
				s.log.Error().Str("filename", env.Filename).Err(err).Msg("extraction error")
			}
			result.FailedFiles = append(result.FailedFiles, env.Filename)
			continue
		}
		result.Invoices = append(result.Invoices, *rec)

		if err := s.savePDF(batchDir, env.Filename, rec.InvoiceNumber, raw); err != nil {
			s.log.Warn().Str("filename", env.Filename).Err(err).Msg("failed to save original pdf")
		} else {
			*saved++
		}
	}
}

// Progress returns the stored state for a job.
func (s *Service) Progress(ctx context.Context, jobID string) (*domain.AnalysisProgress, error) {
	progress, ok, err := s.progress.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrJobNotFound
	}
	return &progress, nil
}

// BatchArchive returns the archive path for a batch ID.
func (s *Service) BatchArchive(batchID string) (string, error) {
	if !validBatchID(batchID) {
		return "", ErrBatchNotFound
	}
	path := s.archivePath(batchID)
	if _, err := os.Stat(path); err != nil {
		return "", ErrBatchNotFound
	}
	return path, nil
}

// RemoveBatch deletes a batch's directory and archive.
func (s *Service) RemoveBatch(batchID string) error {
	if !validBatchID(batchID) {
		return ErrBatchNotFound
	}
	if err := os.RemoveAll(filepath.Join(s.workDir, batchID)); err != nil {
		return err
	}
	if err := os.Remove(s.archivePath(batchID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SweepStaleBatches removes batch artifacts older than maxAge. Runs until the
// context is cancelled.
func (s *Service) SweepStaleBatches(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(maxAge)
		}
	}
}

func (s *Service) sweepOnce(maxAge time.Duration) {
	entries, err := os.ReadDir(s.workDir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "batch_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.workDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.log.Warn().Str("path", path).Err(err).Msg("failed to sweep stale batch")
		} else {
			s.log.Debug().Str("path", path).Msg("swept stale batch")
		}
	}
}

func (s *Service) setProgress(ctx context.Context, jobID string, progress domain.AnalysisProgress) {
	if err := s.progress.Set(ctx, jobID, progress); err != nil {
		s.log.Warn().Str("job_id", jobID).Err(err).Msg("failed to record progress")
	}
}

func (s *Service) archivePath(batchID string) string {
	return filepath.Join(s.workDir, batchID+".zip")
}

func (s *Service) savePDF(batchDir, filename, invoiceNumber string, raw []byte) error {
	name := sanitizeFilename(filename)
	if name == "" {
		name = invoiceNumber + ".pdf"
	}
	return os.WriteFile(filepath.Join(batchDir, name), raw, 0o644)
}

// sanitizeFilename keeps only the base name so attachment names cannot escape
// the batch directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func validBatchID(batchID string) bool {
	if !strings.HasPrefix(batchID, "batch_") {
		return false
	}
	return !strings.ContainsAny(batchID, "/\\.")
}

var _ in.AnalysisService = (*Service)(nil)

func emailContext(msg *out.ProviderMailMessage) domain.EmailContext {
	sender := msg.From.Email
	if msg.From.Name != "" {
		sender = fmt.Sprintf("%s <%s>", msg.From.Name, msg.From.Email)
	}
	return domain.EmailContext{
		Subject: msg.Subject,
		Sender:  sender,
		Date:    msg.Date.UTC().Format(time.RFC3339),
	}
}

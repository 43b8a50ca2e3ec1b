package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/pkg/apperr"
	"github.com/NATEHSIAO/pdf-invoice/pkg/logger"
	"github.com/NATEHSIAO/pdf-invoice/pkg/response"
)

// PDFHandler serves invoice analysis, progress polling, and batch download.
type PDFHandler struct {
	authService     in.AuthService
	analysisService in.AnalysisService
}

func NewPDFHandler(authService in.AuthService, analysisService in.AnalysisService) *PDFHandler {
	return &PDFHandler{
		authService:     authService,
		analysisService: analysisService,
	}
}

func (h *PDFHandler) Register(app fiber.Router) {
	pdf := app.Group("/pdf")
	pdf.Post("/analyze", h.Analyze)
	pdf.Get("/progress/:job_id", h.Progress)
	pdf.Get("/download/:batch_id", h.Download)
	pdf.Delete("/batch/:batch_id", h.RemoveBatch)
}

type analyzeRequest struct {
	Provider string   `json:"provider"`
	EmailIDs []string `json:"email_ids"`
	JobID    string   `json:"job_id"`
}

type analyzeResponse struct {
	JobID       string                 `json:"job_id"`
	Invoices    []domain.InvoiceRecord `json:"invoices"`
	FailedFiles []string               `json:"failed_files"`
	DownloadURL string                 `json:"download_url,omitempty"`
}

// Analyze runs extraction over the PDF attachments of the given messages.
// Progress is readable under the returned job_id while the request runs.
func (h *PDFHandler) Analyze(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	provider, err := domain.ParseMailProvider(req.Provider)
	if err != nil {
		return apperr.InvalidInput("provider", err.Error())
	}
	if len(req.EmailIDs) == 0 {
		return apperr.MissingField("email_ids")
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	valid, err := h.authService.Validate(c.Context(), provider, token)
	if err != nil {
		return toAppError(err)
	}
	if !valid {
		return apperr.InvalidToken("token rejected by provider")
	}

	result, err := h.analysisService.Analyze(c.Context(), provider, token, req.EmailIDs, jobID)
	if err != nil {
		return toAppError(err)
	}

	logger.Info("analysis finished: job=%s invoices=%d failures=%d",
		jobID, len(result.Invoices), len(result.FailedFiles))
	return response.OK(c, analyzeResponse{
		JobID:       jobID,
		Invoices:    result.Invoices,
		FailedFiles: result.FailedFiles,
		DownloadURL: result.DownloadURL,
	})
}

// Progress returns the stored state for an analysis job.
func (h *PDFHandler) Progress(c *fiber.Ctx) error {
	jobID := c.Params("job_id")
	if jobID == "" {
		return apperr.MissingField("job_id")
	}

	progress, err := h.analysisService.Progress(c.Context(), jobID)
	if err != nil {
		return toAppError(err)
	}
	return response.OK(c, progress)
}

// Download streams the batch's ZIP of original PDFs. Cleanup is handled by
// the stale-batch sweeper, not here, since the response body is written after
// the handler returns.
func (h *PDFHandler) Download(c *fiber.Ctx) error {
	batchID := c.Params("batch_id")

	path, err := h.analysisService.BatchArchive(batchID)
	if err != nil {
		return toAppError(err)
	}
	return c.Download(path, "invoices_"+batchID+".zip")
}

// RemoveBatch deletes a batch's files once the caller is done with them.
func (h *PDFHandler) RemoveBatch(c *fiber.Ctx) error {
	batchID := c.Params("batch_id")

	if err := h.analysisService.RemoveBatch(batchID); err != nil {
		return toAppError(err)
	}
	return response.OK(c, fiber.Map{"status": "removed"})
}

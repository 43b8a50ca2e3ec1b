package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/pkg/apperr"
	"github.com/NATEHSIAO/pdf-invoice/pkg/logger"
	"github.com/NATEHSIAO/pdf-invoice/pkg/response"
)

// EmailHandler serves mailbox search.
type EmailHandler struct {
	authService   in.AuthService
	searchService in.MailSearchService
}

func NewEmailHandler(authService in.AuthService, searchService in.MailSearchService) *EmailHandler {
	return &EmailHandler{
		authService:   authService,
		searchService: searchService,
	}
}

func (h *EmailHandler) Register(app fiber.Router) {
	emails := app.Group("/emails")
	emails.Post("/search", h.Search)
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type searchRequest struct {
	Provider  string    `json:"provider"`
	Keywords  string    `json:"keywords"`
	DateRange dateRange `json:"dateRange"`
	Folder    string    `json:"folder"`
}

// Search validates the request, checks the bearer token with the provider,
// and runs the mailbox query.
func (h *EmailHandler) Search(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	query, err := h.buildQuery(&req)
	if err != nil {
		return err
	}

	valid, err := h.authService.Validate(c.Context(), query.Provider, token)
	if err != nil {
		return toAppError(err)
	}
	if !valid {
		return apperr.InvalidToken("token rejected by provider")
	}

	summaries, err := h.searchService.Search(c.Context(), token, query)
	if err != nil {
		return toAppError(err)
	}

	logger.Info("mailbox search: provider=%s keywords=%q matches=%d",
		query.Provider, query.Keywords, len(summaries))
	return response.OK(c, summaries)
}

func (h *EmailHandler) buildQuery(req *searchRequest) (*domain.MailSearchQuery, error) {
	provider, err := domain.ParseMailProvider(req.Provider)
	if err != nil {
		return nil, apperr.InvalidInput("provider", err.Error())
	}

	if req.Keywords == "" {
		return nil, apperr.MissingField("keywords")
	}

	folder := req.Folder
	if folder == "" {
		folder = string(domain.FolderInbox)
	}
	parsedFolder, err := domain.ParseMailFolder(folder)
	if err != nil {
		return nil, apperr.InvalidInput("folder", err.Error())
	}

	start, err := time.Parse("2006-01-02", req.DateRange.Start)
	if err != nil {
		return nil, apperr.InvalidInput("dateRange.start", "must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.DateRange.End)
	if err != nil {
		return nil, apperr.InvalidInput("dateRange.end", "must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperr.InvalidInput("dateRange", "end must not precede start")
	}

	return &domain.MailSearchQuery{
		Provider: provider,
		Keywords: req.Keywords,
		Start:    start,
		End:      end,
		Folder:   parsedFolder,
	}, nil
}

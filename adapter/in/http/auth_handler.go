package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/pkg/apperr"
	"github.com/NATEHSIAO/pdf-invoice/pkg/logger"
	"github.com/NATEHSIAO/pdf-invoice/pkg/response"
)

// AuthHandler serves the OAuth callback and token-check endpoints.
type AuthHandler struct {
	authService in.AuthService
}

func NewAuthHandler(authService in.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(app fiber.Router) {
	auth := app.Group("/auth")
	auth.Post("/callback/:provider", h.Callback)
	auth.Get("/check", h.Check)
	auth.Post("/logout", h.Logout)
}

type callbackRequest struct {
	Code string `json:"code"`
}

// Callback exchanges the authorization code sent by the frontend for tokens
// and the user's profile.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	provider, err := domain.ParseMailProvider(c.Params("provider"))
	if err != nil {
		return apperr.InvalidInput("provider", err.Error())
	}

	var req callbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}
	if req.Code == "" {
		return apperr.MissingField("code")
	}

	session, err := h.authService.ExchangeCode(c.Context(), provider, req.Code)
	if err != nil {
		logger.WithError(err).Warn("OAuth code exchange failed for %s", provider)
		return toAppError(err)
	}

	logger.Info("OAuth sign-in completed: provider=%s user=%s", provider, session.User.Email)
	return response.OK(c, session)
}

// Check validates the caller's bearer token against the named provider.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	provider, err := domain.ParseMailProvider(c.Query("provider", string(domain.ProviderGoogle)))
	if err != nil {
		return apperr.InvalidInput("provider", err.Error())
	}

	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	valid, err := h.authService.Validate(c.Context(), provider, token)
	if err != nil {
		return toAppError(err)
	}
	if !valid {
		return apperr.InvalidToken("token rejected by provider")
	}

	return response.OK(c, fiber.Map{"status": "authenticated"})
}

// Logout is a client-side operation; tokens are never stored server-side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"status": "logged_out"})
}

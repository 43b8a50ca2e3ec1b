// Package http implements the inbound HTTP handlers.
package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
	"github.com/NATEHSIAO/pdf-invoice/core/service/analysis"
	"github.com/NATEHSIAO/pdf-invoice/pkg/apperr"
)

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", apperr.Unauthorized("missing Authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", apperr.Unauthorized("Authorization header must be a Bearer token")
	}
	return strings.TrimSpace(token), nil
}

// toAppError maps service-layer failures to HTTP-facing application errors.
func toAppError(err error) *apperr.AppError {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var provErr *out.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case out.ProviderErrAuth, out.ProviderErrTokenExpired:
			return apperr.Unauthorized("authentication expired, please sign in again").WithError(err)
		case out.ProviderErrRateLimit:
			return apperr.RateLimited("provider rate limit reached, retry later").WithError(err)
		case out.ProviderErrNotFound:
			return apperr.NotFound("message").WithError(err)
		case out.ProviderErrInvalidInput:
			return apperr.BadRequest(provErr.Message).WithError(err)
		default:
			return apperr.ExternalError(provErr.Provider, err)
		}
	}

	if errors.Is(err, analysis.ErrJobNotFound) {
		return apperr.NotFound("analysis job")
	}
	if errors.Is(err, analysis.ErrBatchNotFound) {
		return apperr.NotFound("batch")
	}
	if _, ok := domain.IsExtractionFailure(err); ok {
		return apperr.ValidationFailed(err.Error()).WithError(err)
	}

	return apperr.InternalWithError(err)
}

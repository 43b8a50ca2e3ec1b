package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
	"github.com/NATEHSIAO/pdf-invoice/core/service/analysis"
	"github.com/NATEHSIAO/pdf-invoice/pkg/apperr"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "app error passes through",
			err:        apperr.NotFound("batch"),
			wantCode:   apperr.CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "provider auth error maps to 401",
			err:        out.NewProviderError("gmail", out.ProviderErrAuth, "bad token", nil, false),
			wantCode:   apperr.CodeUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "provider token expiry maps to 401",
			err:        out.NewProviderError("outlook", out.ProviderErrTokenExpired, "expired", nil, false),
			wantCode:   apperr.CodeUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "provider rate limit maps to 429",
			err:        out.NewProviderError("gmail", out.ProviderErrRateLimit, "slow down", nil, true),
			wantCode:   "RATE_LIMITED",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "provider not found maps to 404",
			err:        out.NewProviderError("outlook", out.ProviderErrNotFound, "gone", nil, false),
			wantCode:   apperr.CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "provider server error maps to 502",
			err:        out.NewProviderError("gmail", out.ProviderErrServer, "upstream broke", nil, true),
			wantCode:   apperr.CodeExternalError,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown job maps to 404",
			err:        analysis.ErrJobNotFound,
			wantCode:   apperr.CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown batch maps to 404",
			err:        analysis.ErrBatchNotFound,
			wantCode:   apperr.CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "extraction failure maps to 400",
			err:        &domain.ExtractionFailure{Reason: domain.FailureNoText},
			wantCode:   apperr.CodeValidationFailed,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anything else maps to 500",
			err:        errors.New("boom"),
			wantCode:   apperr.CodeInternalError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toAppError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
		})
	}
}

// Package auth implements the OAuth code-exchange and validation flows.
package auth

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

// Service implements in.AuthService over the provider adapters.
type Service struct {
	factory out.MailProviderFactory
	log     zerolog.Logger
}

func NewService(factory out.MailProviderFactory, log zerolog.Logger) *Service {
	return &Service{factory: factory, log: log}
}

// ExchangeCode trades the authorization code for tokens and loads the user's
// profile from the provider.
func (s *Service) ExchangeCode(ctx context.Context, provider domain.MailProvider, code string) (*domain.AuthSession, error) {
	prov, err := s.factory.CreateProvider(string(provider))
	if err != nil {
		return nil, err
	}

	token, err := prov.ExchangeToken(ctx, code)
	if err != nil {
		s.log.Warn().Str("provider", string(provider)).Err(err).Msg("code exchange failed")
		return nil, err
	}

	profile, err := prov.GetProfile(ctx, token)
	if err != nil {
		s.log.Warn().Str("provider", string(provider)).Err(err).Msg("profile fetch failed")
		return nil, err
	}

	return &domain.AuthSession{
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		User: domain.ProviderUser{
			ID:      profile.ID,
			Email:   profile.Email,
			Name:    profile.Name,
			Picture: profile.Picture,
		},
	}, nil
}

// Validate asks the provider whether the bearer token is still good.
func (s *Service) Validate(ctx context.Context, provider domain.MailProvider, accessToken string) (bool, error) {
	prov, err := s.factory.CreateProvider(string(provider))
	if err != nil {
		return false, err
	}
	return prov.ValidateToken(ctx, &oauth2.Token{AccessToken: accessToken})
}

var _ in.AuthService = (*Service)(nil)

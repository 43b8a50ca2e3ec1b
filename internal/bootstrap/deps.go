package bootstrap

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/NATEHSIAO/pdf-invoice/adapter/out/persistence"
	"github.com/NATEHSIAO/pdf-invoice/adapter/out/provider"
	"github.com/NATEHSIAO/pdf-invoice/config"
	"github.com/NATEHSIAO/pdf-invoice/core/port/in"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
	"github.com/NATEHSIAO/pdf-invoice/core/service/analysis"
	"github.com/NATEHSIAO/pdf-invoice/core/service/auth"
	"github.com/NATEHSIAO/pdf-invoice/core/service/mailsearch"
	"github.com/NATEHSIAO/pdf-invoice/infra/database"
	"github.com/NATEHSIAO/pdf-invoice/pkg/logger"
)

type Dependencies struct {
	Config *config.Config
	Redis  *redis.Client

	ProviderFactory *provider.Factory
	ProgressStore   out.ProgressStore

	AuthService       in.AuthService
	MailSearchService in.MailSearchService
	AnalysisService   *analysis.Service
}

// NewDependencies wires the provider adapters, progress store, and services.
// Redis is optional; without it, progress lives in process memory.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDevelopment() {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Redis (optional)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed, using in-memory progress: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
		}
	}

	// Progress store
	if deps.Redis != nil {
		deps.ProgressStore = persistence.NewRedisProgressStore(deps.Redis, cfg.ProgressTTL)
		logger.Info("Progress store: redis (ttl=%v)", cfg.ProgressTTL)
	} else {
		deps.ProgressStore = analysis.NewMemoryProgressStore()
		logger.Info("Progress store: in-memory")
	}

	// Mail providers
	deps.ProviderFactory = provider.NewFactory(
		&provider.GmailConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		},
		&provider.OutlookConfig{
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
			RedirectURL:  cfg.MicrosoftRedirectURL,
			TenantID:     cfg.MicrosoftTenantID,
		},
	)

	// Services
	deps.AuthService = auth.NewService(deps.ProviderFactory, zlog)
	deps.MailSearchService = mailsearch.NewService(deps.ProviderFactory, zlog)
	deps.AnalysisService = analysis.NewService(deps.ProviderFactory, deps.ProgressStore, cfg.WorkDir, zlog)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

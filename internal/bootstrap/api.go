package bootstrap

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/NATEHSIAO/pdf-invoice/adapter/in/http"
	"github.com/NATEHSIAO/pdf-invoice/config"
	"github.com/NATEHSIAO/pdf-invoice/infra/middleware"
	"github.com/NATEHSIAO/pdf-invoice/pkg/logger"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	// Initialize logger
	logLevel := logger.ParseLevel(cfg.LogLevel)
	if cfg.IsDevelopment() && logLevel > logger.LevelDebug {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "pdf-invoice-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		Prefork:               false,
		StrictRouting:         false,
		CaseSensitive:         false,

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is a drop-in replacement for encoding/json
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 10 * 1024 * 1024, // 10MB

		ServerHeader:       "",
		DisableDefaultDate: true,

		DisableKeepalive:             false,
		StreamRequestBody:            true,
		DisablePreParseMultipartForm: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS - AllowCredentials:true requires explicit origins (not "*")
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400, // 24 hours
	}))

	// Health check (no auth required)
	healthHandler := http.NewHealthHandler()
	healthHandler.Register(app)

	// API routes
	api := app.Group("/api")

	authHandler := http.NewAuthHandler(deps.AuthService)
	authHandler.Register(api)

	emailHandler := http.NewEmailHandler(deps.AuthService, deps.MailSearchService)
	emailHandler.Register(api)

	pdfHandler := http.NewPDFHandler(deps.AuthService, deps.AnalysisService)
	pdfHandler.Register(api)

	// Background sweep of stale batch files
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go deps.AnalysisService.SweepStaleBatches(sweepCtx, cfg.BatchSweepInterval, cfg.BatchMaxAge)

	fullCleanup := func() {
		stopSweep()
		cleanup()
	}

	logger.Info("API server initialized successfully")

	return app, fullCleanup, nil
}

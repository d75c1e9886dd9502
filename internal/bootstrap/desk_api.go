package bootstrap

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"desk_server/adapter/in/http"
	"desk_server/config"
	"desk_server/infra/middleware"
	"desk_server/pkg/logger"
)

// NewAPI builds the Fiber application: webhook ingestion, the agent API
// and health endpoints, on top of the shared dependency set.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "desk-api",
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

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// Webhook payloads are small; anything bigger is junk.
		BodyLimit: 1 * 1024 * 1024,

		Concurrency: 256 * 1024,

		ServerHeader:       "",
		DisableDefaultDate: true,
		DisableKeepalive:   false,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS for the agent console. Credentials require explicit origins.
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
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health check (no auth required)
	healthHandler := http.NewHealthHandler(deps.SQLDB, deps.Redis, deps.Mongo)
	healthHandler.Register(app)

	// Webhook ingestion (authenticated by the platform's secret token,
	// not by JWT). Generous rate limit: the bot platform bursts hard and
	// a 429 would trigger its retry loop.
	webhookHandler := http.NewWebhookHandler(
		cfg.TelegramWebhookSecret,
		deps.UpdateDedupe,
		deps.UpdateArchive,
		deps.ChannelRepo,
		deps.MessageRepo,
		deps.MessageProducer,
		cfg.StaffUserIDs,
	)
	webhookHandler.Register(app)

	// Agent API (JWT + rate limiting)
	api := app.Group("/api/v1")

	rateLimiter := middleware.NewRateLimiter(300, time.Minute)
	api.Use(rateLimiter.Handler())
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	analysisHandler := http.NewAnalysisHandler(deps.Pipeline)
	analysisHandler.Register(api)

	messageHandler := http.NewMessageHandler(deps.MessageRepo)
	messageHandler.Register(api)

	caseHandler := http.NewCaseHandler(deps.CaseRepo)
	caseHandler.Register(api)

	channelHandler := http.NewChannelHandler(deps.ChannelRepo)
	channelHandler.Register(api)

	patternHandler := http.NewPatternHandler(deps.PatternRepo)
	patternHandler.Register(api)

	metricsHandler := http.NewMetricsHandler(deps.SQLDB)
	metricsHandler.Register(api)

	logger.Info("API server initialized successfully")

	return app, cleanup, nil
}

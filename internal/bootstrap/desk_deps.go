package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"desk_server/adapter/out/cache"
	"desk_server/adapter/out/messaging"
	mongoadapter "desk_server/adapter/out/mongodb"
	"desk_server/adapter/out/persistence"
	"desk_server/adapter/out/telegram"
	"desk_server/config"
	"desk_server/core/agent/llm"
	"desk_server/core/port/out"
	"desk_server/core/service/classification"
	"desk_server/core/service/triage"
	"desk_server/infra/database"
	"desk_server/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dependencies holds every shared adapter and service, wired once and
// handed to both the API and the worker.
type Dependencies struct {
	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client
	Mongo *mongo.Client

	MessageRepo out.MessageRepository
	CaseRepo    out.CaseRepository
	ChannelRepo out.ChannelRepository
	PatternRepo out.PatternRepository

	UpdateArchive *mongoadapter.UpdateArchive
	UpdateDedupe  *cache.UpdateDedupe

	MessageProducer out.MessageProducer

	Pipeline *classification.Pipeline
	Triage   *triage.Evaluator
}

// NewDependencies connects the infrastructure and wires the classification
// pipeline and triage evaluator. The returned cleanup closes connections in
// reverse order.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	var cleanups []func()

	deps := &Dependencies{}

	// PostgreSQL: pgxpool for health checks, sqlx for the repositories
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connect: %w", err)
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	sqlxURL := cfg.DatabaseURL
	// Keep sqlx on the simple protocol so it shares the server-side
	// settings with pgxpool and never fights over prepared statements.
	if !strings.Contains(sqlxURL, "default_query_exec_mode") {
		sqlxURL = appendParam(sqlxURL, "default_query_exec_mode=simple_protocol")
	}

	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		runCleanups(cleanups)
		return nil, nil, fmt.Errorf("sqlx connect: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	deps.MessageRepo = persistence.NewMessageAdapter(sqlDB)
	deps.CaseRepo = persistence.NewCaseAdapter(sqlDB)
	deps.ChannelRepo = persistence.NewChannelAdapter(sqlDB)
	deps.PatternRepo = persistence.NewPatternAdapter(sqlDB)

	// Redis: job streams, channel locks, webhook dedupe. Optional; without
	// it the worker consumes nothing and triage runs unlocked.
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, continuing without streams and locks")
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
			deps.MessageProducer = messaging.NewRedisProducer(redisClient)
		}
	}
	deps.UpdateDedupe = cache.NewUpdateDedupe(deps.Redis)

	// MongoDB: raw webhook payload archive. Optional.
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongoadapter.Connect(cfg.MongoDBURL)
		if err != nil {
			logger.WithError(err).Warn("MongoDB unavailable, raw update archive disabled")
		} else {
			deps.Mongo = mongoClient
			cleanups = append(cleanups, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mongoClient.Disconnect(ctx)
			})

			archive := mongoadapter.NewUpdateArchive(mongoClient.Database(cfg.MongoDBName))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := archive.EnsureIndexes(ctx); err != nil {
				logger.WithError(err).Warn("Failed to ensure archive indexes")
			}
			cancel()
			deps.UpdateArchive = archive
		}
	}

	// Pattern catalog: built-in rules plus database overrides. Overrides
	// are read once at startup; edits apply on the next restart.
	rules := classification.DefaultRules()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		overrides, err := deps.PatternRepo.ListActive(ctx)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("Failed to load pattern overrides, using built-in rules")
		} else if len(overrides) > 0 {
			rules = classification.MergeOverrides(rules, overrides)
			logger.Info("Loaded %d pattern overrides", len(overrides))
		}
	}

	catalog, err := classification.NewCatalog(rules)
	if err != nil {
		logger.WithError(err).Warn("Pattern catalog rejected overrides, using built-in rules")
		catalog = classification.NewDefaultCatalog()
	}
	analyzer := classification.NewAnalyzer(catalog)

	// External model is optional; the nil check keeps a typed-nil
	// classifier out of the pipeline's interface field.
	var modelClassifier out.MessageClassifier
	if classifier := llm.NewClassifier(llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})); classifier != nil {
		modelClassifier = classifier
		logger.Info("Model classification enabled (%s)", cfg.LLMModel)
	} else {
		logger.Info("No model credentials, classification runs on heuristics only")
	}

	deps.Pipeline = classification.NewPipeline(analyzer, modelClassifier, &classification.PipelineConfig{
		LLMTimeout: cfg.LLMTimeout(),
	})

	// Triage wiring. The reply sender is nil without a bot token, which
	// disables auto-replies without touching the rest of the policy.
	var replySender out.ReplySender
	if sender := telegram.NewSender(cfg.TelegramBotToken, deps.Redis); sender != nil {
		replySender = sender
	}

	deps.Triage = triage.NewEvaluator(
		deps.MessageRepo,
		deps.CaseRepo,
		deps.ChannelRepo,
		cache.NewChannelLock(deps.Redis),
		replySender,
	)

	cleanup := func() {
		runCleanups(cleanups)
	}

	return deps, cleanup, nil
}

func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func appendParam(url, param string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + param
}

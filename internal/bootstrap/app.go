package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-review/internal/analyses"
	"resume-review/internal/llm"
	"resume-review/internal/llm/gemini"
	"resume-review/internal/llm/openai"
	"resume-review/internal/services/health"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/server"
	"resume-review/internal/shared/storage/db"
	"resume-review/internal/shared/storage/object"
	localstore "resume-review/internal/shared/storage/object/local"
	s3store "resume-review/internal/shared/storage/object/s3"
	"resume-review/internal/shared/telemetry"
	"resume-review/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Redis           *redis.Client
	Store           object.ObjectStore
	Tracker         uploads.Tracker
	AnalysesRepo    analyses.Repo
	Provider        analyses.Provider
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	UploadsHandler  *uploads.Handler
	Health          *health.Service
}

// Build prepares dependencies and the router. Dev-like environments fall back
// to in-memory implementations when infrastructure is missing.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	tracker, redisClient, err := buildTracker(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Tracker = tracker
	app.Redis = redisClient

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Provider = provider

	if sqlDB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: sqlDB}
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	app.AnalysesService = &analyses.Service{
		Repo:            app.AnalysesRepo,
		Provider:        provider,
		Tracker:         tracker,
		Store:           store,
		ProviderTimeout: cfg.ProviderTimeout,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.UploadsHandler = uploads.NewHandler(tracker)
	app.Health = buildHealth(sqlDB, tracker)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		UploadsHandler:  app.UploadsHandler,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     sqlDB != nil,
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"redis":        redisClient != nil,
	})
	return app, nil
}

// Close releases connections held by the app.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			telemetry.Error("bootstrap.redis_close_failed", map[string]any{"error": err.Error()})
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			telemetry.Error("bootstrap.db_close_failed", map[string]any{"error": err.Error()})
		}
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Error("bootstrap.memory_repo", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			telemetry.Error("bootstrap.memory_repo", map[string]any{"reason": "migrations failed", "error": err.Error()})
			return nil, nil
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildTracker(ctx context.Context, cfg config.Config) (uploads.Tracker, *redis.Client, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return uploads.NewMemoryTracker(cfg.UploadStateTTL, nil), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.IsDevLike() {
			telemetry.Error("bootstrap.memory_tracker", map[string]any{"reason": "redis ping failed", "error": err.Error()})
			return uploads.NewMemoryTracker(cfg.UploadStateTTL, nil), nil, nil
		}
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return uploads.NewRedisTracker(client, cfg.UploadStateTTL), client, nil
}

// NewProvider builds the analysis provider selected by LLM_PROVIDER.
func NewProvider(ctx context.Context, cfg config.Config) (analyses.Provider, error) {
	var client llm.Client
	switch cfg.LLMProvider {
	case "mock", "":
		return analyses.MockProvider{Delay: cfg.MockProviderDelay}, nil
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		client = c
	case "openai":
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, errors.New("unknown LLM_PROVIDER " + cfg.LLMProvider)
	}
	return analyses.NewLLMProvider(client), nil
}

func buildHealth(sqlDB *sql.DB, tracker uploads.Tracker) *health.Service {
	var dbPinger, uploadsPinger health.Pinger
	if sqlDB != nil {
		dbPinger = sqlDB
	}
	if rt, ok := tracker.(*uploads.RedisTracker); ok {
		uploadsPinger = health.PingFunc(rt.Ping)
	}
	return health.NewService(dbPinger, uploadsPinger)
}

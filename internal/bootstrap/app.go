package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-critic/internal/analyses"
	"resume-critic/internal/llm"
	"resume-critic/internal/llm/gemini"
	"resume-critic/internal/llm/openai"
	"resume-critic/internal/llm/openrouter"
	"resume-critic/internal/records"
	"resume-critic/internal/records/sheets"
	"resume-critic/internal/services/health"
	"resume-critic/internal/sessions"
	"resume-critic/internal/shared/config"
	"resume-critic/internal/shared/server"
	"resume-critic/internal/shared/storage/db"
	"resume-critic/internal/shared/storage/object"
	localstore "resume-critic/internal/shared/storage/object/local"
	s3store "resume-critic/internal/shared/storage/object/s3"
	"resume-critic/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Dialect         db.Dialect
	Store           object.ObjectStore
	Sessions        sessions.Repo
	Records         records.Sink
	LLM             llm.Client
	Prompts         *llm.Prompts
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	Health          *health.Service
}

// Build validates configuration and wires every dependency. Any error here
// is a startup failure.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	policy, err := records.ParsePolicy(cfg.RecordFailurePolicy)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}

	if err := app.buildDB(ctx); err != nil {
		return nil, err
	}
	// Later failures must release the pool opened by buildDB.
	fail := func(err error) (*App, error) {
		_ = app.Close()
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	app.Store = store

	if app.DB != nil {
		app.Sessions = &sessions.SQLRepo{DB: app.DB, TTL: cfg.SessionTTL}
	} else {
		app.Sessions = sessions.NewMemoryRepo(cfg.SessionTTL, nil)
	}

	sink, err := app.buildRecords(ctx)
	if err != nil {
		return fail(err)
	}
	app.Records = sink

	client, err := buildLLM(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	app.LLM = client

	prompts, err := llm.LoadPrompts(cfg.PromptDir)
	if err != nil {
		return fail(err)
	}
	prompts.Temperature = llm.Temperature(cfg.LLMTemperature)
	app.Prompts = prompts

	app.AnalysesService = &analyses.Service{
		Store:    app.Store,
		Sessions: app.Sessions,
		Records:  app.Records,
		Policy:   policy,
		LLM:      app.LLM,
		Prompts:  app.Prompts,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, cfg.MaxUploadBytes)
	app.Health = health.NewService(app.DB, cfg.LLMProvider, cfg.LLMModel)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"provider":       cfg.LLMProvider,
		"model":          cfg.LLMModel,
		"object_store":   cfg.ObjectStoreType,
		"record_sinks":   strings.Join(cfg.RecordSinks, ","),
		"record_policy":  string(policy),
		"database":       string(app.Dialect),
		"session_ttl_ms": cfg.SessionTTL.Milliseconds(),
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// SweepSessions drops sessions idle longer than the configured TTL.
func (a *App) SweepSessions(ctx context.Context) {
	var removed int64
	switch repo := a.Sessions.(type) {
	case *sessions.MemoryRepo:
		removed = int64(repo.Sweep())
	case *sessions.SQLRepo:
		n, err := repo.DeleteIdleBefore(ctx, time.Now().Add(-a.Config.SessionTTL))
		if err != nil {
			telemetry.Warn("sessions.sweep.failed", map[string]any{"err": err.Error()})
			return
		}
		removed = n
	}
	if removed > 0 {
		telemetry.Info("sessions.sweep", map[string]any{"removed": removed})
	}
}

// RunSweeper calls SweepSessions every interval until ctx is done.
func (a *App) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.SweepSessions(ctx)
		}
	}
}

// connectDB is swapped in tests to observe the pool lifecycle.
var connectDB = db.Connect

// buildDB connects when DATABASE_URL is set and applies migrations.
func (a *App) buildDB(ctx context.Context) error {
	if strings.TrimSpace(a.Config.DatabaseURL) == "" {
		telemetry.Info("bootstrap.database.disabled", map[string]any{"reason": "DATABASE_URL empty; using in-memory repositories"})
		return nil
	}
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, dialect, err := connectDB(ctx, a.Config.DatabaseURL, opts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	a.DB = sqlDB
	a.Dialect = dialect
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:       cfg.AWSRegion,
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			KMSKeyID:     cfg.SSEKMSKeyID,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3PathStyle,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildRecords(ctx context.Context) (records.Sink, error) {
	var sinks []records.NamedSink
	for _, name := range a.Config.RecordSinks {
		switch name {
		case "memory":
			sinks = append(sinks, records.NamedSink{Name: name, Sink: records.NewMemoryRepo()})
		case "sql":
			if a.DB == nil {
				return nil, errors.New("RECORD_SINKS=sql requires a database")
			}
			sinks = append(sinks, records.NamedSink{Name: name, Sink: &records.SQLRepo{DB: a.DB}})
		case "sheets":
			creds, err := a.Config.SheetsCredentials()
			if err != nil {
				return nil, err
			}
			sink, err := sheets.New(ctx, sheets.Config{
				CredentialsJSON: creds,
				Title:           a.Config.SheetsSpreadsheetTitle,
				SpreadsheetID:   a.Config.SheetsSpreadsheetID,
			})
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, records.NamedSink{Name: name, Sink: sink})
		default:
			return nil, fmt.Errorf("unknown record sink %q", name)
		}
	}
	return records.NewFanout(sinks...), nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewClient(ctx, gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	case "openrouter":
		return openrouter.NewClient(openrouter.Options{
			APIKey:  cfg.OpenRouterAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
			Title:   "resume-critic",
		})
	default:
		return openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	}
}

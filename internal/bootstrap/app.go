package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/analyses"
	"legal-backend/internal/documents"
	"legal-backend/internal/intake"
	"legal-backend/internal/provider"
	"legal-backend/internal/provider/demo"
	"legal-backend/internal/provider/openai"
	"legal-backend/internal/provider/remote"
	"legal-backend/internal/queue"
	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/server"
	"legal-backend/internal/shared/storage/db"
	"legal-backend/internal/shared/storage/object"
	localstore "legal-backend/internal/shared/storage/object/local"
	"legal-backend/internal/shared/storage/object/miniostore"
	s3store "legal-backend/internal/shared/storage/object/s3"
	"legal-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Queue    queue.Client
	Selector *provider.Selector
	Provider provider.Provider

	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	IntakeService    *intake.Service

	DocumentsHandler *documents.Handler
	AnalysesHandler  *analyses.Handler
	IntakeHandler    *intake.Handler
}

// Build prepares every dependency and the router. The provider mode probe is
// not started; callers decide when with App.Selector.Start.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	selector, analysisProvider, err := Providers(cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		Selector: selector,
		Provider: analysisProvider,
	}

	buildServices(app)

	app.Router = server.NewRouter(cfg, server.RouterDeps{
		Intake:    app.IntakeHandler,
		Documents: app.DocumentsHandler,
		Analyses:  app.AnalysesHandler,
	})

	return app, nil
}

// Close drains in-flight analyses and releases the database.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.IntakeService != nil {
		err = a.IntakeService.Shutdown(ctx)
	}
	closeDB(a.DB)
	return err
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.DefaultServerOptions()
	if isDevLike(cfg.Env) {
		// dev falls back to memory repos, so fail fast
		opts.ConnectAttempts = 1
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts.Override(db.PoolOptions(cfg.DBPool)))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			closeDB(sqlDB)
			sqlDB = nil
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.AWSRegion,
			Prefix:    cfg.S3Prefix,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
}

// Providers builds the mode selector and the provider that follows its decision.
func Providers(cfg config.Config) (*provider.Selector, provider.Provider, error) {
	live, err := buildLiveProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	selector := provider.NewSelector(live, cfg.HealthCheckTimeout)
	return selector, provider.NewSwitch(selector, live, demo.New(cfg.DemoDelay)), nil
}

// buildLiveProvider returns nil when only demo mode is wanted.
func buildLiveProvider(cfg config.Config) (provider.Provider, error) {
	var live provider.Provider
	switch cfg.AnalysisProvider {
	case "demo":
		return nil, nil
	case "openai":
		p, err := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		live = p
	default:
		c, err := remote.NewClient(cfg.AnalysisBackendURL, cfg.AnalysisTimeout)
		if err != nil {
			return nil, err
		}
		live = c
	}
	return provider.WithRetry(live, provider.RetryPolicy{
		MaxRetries: cfg.AnalysisMaxRetries,
		BaseDelay:  cfg.AnalysisRetryBaseDelay,
	}), nil
}

func buildServices(app *App) {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	docSvc := &documents.Service{Store: app.Store, Repo: docRepo}
	analysisSvc := &analyses.Service{Repo: analysisRepo, Queue: app.Queue}
	intakeSvc := &intake.Service{
		Sessions:        intake.NewMemoryStore(),
		Provider:        app.Provider,
		Modes:           app.Selector,
		Documents:       docSvc,
		Recorder:        analysisSvc,
		MaxUploadBytes:  app.Config.MaxUploadBytes,
		AnalysisTimeout: app.Config.AnalysisTimeout,
	}

	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.IntakeService = intakeSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysesHandler = analyses.NewHandler(analysisSvc)
	app.IntakeHandler = intake.NewHandler(intakeSvc)
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

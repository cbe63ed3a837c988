package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	googleauth "study-assistant/internal/auth"
	"study-assistant/internal/chats"
	"study-assistant/internal/documents"
	"study-assistant/internal/ingest"
	"study-assistant/internal/llm"
	"study-assistant/internal/llm/gemini"
	locallm "study-assistant/internal/llm/local"
	"study-assistant/internal/llm/openai"
	"study-assistant/internal/scan"
	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/config"
	"study-assistant/internal/shared/server"
	"study-assistant/internal/shared/storage/cache"
	"study-assistant/internal/shared/storage/db"
	mongostore "study-assistant/internal/shared/storage/mongo"
	"study-assistant/internal/shared/storage/object"
	localstore "study-assistant/internal/shared/storage/object/local"
	miniostore "study-assistant/internal/shared/storage/object/minio"
	s3store "study-assistant/internal/shared/storage/object/s3"
	"study-assistant/internal/shared/telemetry"
	"study-assistant/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Mongo  *mongo.Database
	Store  object.ObjectStore
	Cache  cache.Store
	AI     llm.Completer
	Issuer *auth.TokenIssuer

	DocumentsRepo    documents.DocumentsRepo
	ChatsRepo        chats.Repo
	UsersRepo        users.Repo
	DocumentsService *documents.Service
	ScanService      *scan.Service
	ChatsService     *chats.Service
	UsersService     *users.Service

	closers []func(context.Context) error
}

// Close releases clients opened by Build in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build connects backing services selected by cfg and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.Env)
	if err != nil {
		return nil, err
	}
	app.Issuer = issuer

	steps := []func(context.Context, *App) error{
		buildRecordStore,
		buildStore,
		buildCache,
		buildAI,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
	}

	buildServices(app)
	return app, nil
}

func buildRecordStore(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.RecordStore {
	case "postgres":
		sqlDB, err := openPostgres(ctx, cfg)
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.db_unavailable", map[string]any{"error": err, "fallback": "memory"})
				break
			}
			return err
		}
		if !db.IsLambdaRuntime() {
			app.closers = append(app.closers, func(context.Context) error { return sqlDB.Close() })
		}
		if err := migratePostgres(ctx, sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		app.DB = sqlDB
		app.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
		app.ChatsRepo = &chats.PGRepo{DB: sqlDB}
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		return nil
	case "mongo":
		database, err := mongostore.Database(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		app.Mongo = database
		app.closers = append(app.closers, mongostore.Close)

		docRepo := documents.NewMongoRepo(database)
		chatRepo := chats.NewMongoRepo(database)
		userRepo := users.NewMongoRepo(database)
		for _, ensure := range []func(context.Context) error{docRepo.EnsureIndexes, chatRepo.EnsureIndexes, userRepo.EnsureIndexes} {
			if err := ensure(ctx); err != nil {
				return fmt.Errorf("ensure mongo indexes: %w", err)
			}
		}
		app.DocumentsRepo = docRepo
		app.ChatsRepo = chatRepo
		app.UsersRepo = userRepo
		return nil
	}

	telemetry.Info("bootstrap.record_store", map[string]any{"store": "memory"})
	app.DocumentsRepo = documents.NewMemoryRepo()
	app.ChatsRepo = chats.NewMemoryRepo()
	app.UsersRepo = users.NewMemoryRepo()
	return nil
}

// Swapped in tests.
var (
	openPostgres    = connectPostgres
	migratePostgres = db.RunMigrations
)

func connectPostgres(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	}
	return db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
}

func buildStore(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			KMSKeyID:      cfg.SSEKMSKeyID,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return err
		}
		app.Store = store
	case "minio":
		store, err := miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return err
		}
		app.Store = store
	default:
		app.Store = localstore.New(cfg.LocalStoreDir, cfg.PublicUploadsPath)
	}
	telemetry.Info("bootstrap.object_store", map[string]any{"store": cfg.ObjectStoreType})
	return nil
}

// buildCache prefers Redis. The memory cache still backs OAuth state on a single instance.
func buildCache(ctx context.Context, app *App) error {
	cfg := app.Config
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		app.Cache = cache.NewMemory()
		return nil
	}
	r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err, "fallback": "memory"})
			app.Cache = cache.NewMemory()
			return nil
		}
		return err
	}
	app.Cache = r
	app.closers = append(app.closers, func(context.Context) error { return r.Close() })
	app.DocumentsRepo = &documents.CachedRepo{Repo: app.DocumentsRepo, Cache: r, TTL: cfg.CacheTTL}
	return nil
}

func buildAI(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.LLMProvider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return notConfigured(app, err)
		}
		app.AI = client
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return notConfigured(app, err)
		}
		app.AI = client
	case "local":
		app.AI = locallm.NewClient()
	default:
		app.AI = llm.PlaceholderClient{}
	}
	telemetry.Info("bootstrap.llm", map[string]any{"provider": cfg.LLMProvider, "model": cfg.LLMModel})
	return nil
}

// notConfigured keeps dev environments bootable without provider credentials.
func notConfigured(app *App, err error) error {
	if !isDevLike(app.Config.Env) {
		return err
	}
	telemetry.Warn("bootstrap.llm_unavailable", map[string]any{"error": err, "fallback": "placeholder"})
	app.AI = llm.PlaceholderClient{}
	return nil
}

func buildServices(app *App) {
	cfg := app.Config
	sessions := users.Sessions{Issuer: app.Issuer, Secure: cfg.CookieSecure}

	app.DocumentsService = &documents.Service{
		Repo:      app.DocumentsRepo,
		Store:     app.Store,
		Extractor: ingest.Extractor{AI: app.AI},
		Table:     ingest.DefaultTable,
	}
	app.ScanService = &scan.Service{AI: app.AI}
	app.ChatsService = &chats.Service{Repo: app.ChatsRepo, AI: app.AI}
	app.UsersService = users.NewService(app.UsersRepo)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        app.Issuer,
		DocumentHandler: documents.NewHandler(app.DocumentsService, cfg.UploadMaxBytes, cfg.ImageUploadMaxBytes),
		ScanHandler:     scan.NewHandler(app.ScanService, cfg.ScanMaxBytes),
		ChatHandler:     chats.NewHandler(app.ChatsService),
		UserHandler:     users.NewHandler(app.UsersService, sessions),
		GoogleAuth: googleauth.NewGoogleService(googleauth.GoogleOptions{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			UIRedirect:   cfg.UIRedirectURL,
		}, app.Cache, app.UsersService, sessions),
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

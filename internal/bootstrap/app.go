package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"docfixer-backend/internal/billing"
	"docfixer-backend/internal/docfix"
	"docfixer-backend/internal/llm"
	"docfixer-backend/internal/llm/openai"
	"docfixer-backend/internal/shared/config"
	"docfixer-backend/internal/shared/storage/db"
	"docfixer-backend/internal/shared/storage/object"
	localstore "docfixer-backend/internal/shared/storage/object/local"
	s3store "docfixer-backend/internal/shared/storage/object/s3"
	"docfixer-backend/internal/shared/telemetry"
	"docfixer-backend/internal/usage"
	"docfixer-backend/internal/users"
)

// App holds the wired application dependencies.
type App struct {
	Cfg config.Config
	DB  *sql.DB

	Users   *users.Service
	Usage   *usage.Service
	Docfix  *docfix.Service
	Billing *billing.Service

	UsersHandler   *users.Handler
	UsageHandler   *usage.Handler
	DocfixHandler  *docfix.Handler
	BillingHandler *billing.Handler
}

type options struct {
	improver llm.Improver
	store    object.ObjectStore
	db       *sql.DB
}

// Option overrides a dependency, mainly for tests.
type Option func(*options)

// WithImprover substitutes the paragraph improver.
func WithImprover(i llm.Improver) Option {
	return func(o *options) { o.improver = i }
}

// WithObjectStore substitutes the object store.
func WithObjectStore(s object.ObjectStore) Option {
	return func(o *options) { o.store = s }
}

// WithDB substitutes the database connection.
func WithDB(conn *sql.DB) Option {
	return func(o *options) { o.db = conn }
}

// Build wires the application from configuration. When no database is
// configured or reachable, in-memory stores are used instead.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sqlDB := o.db
	if sqlDB == nil && cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			telemetry.Warn("db.connect_failed", map[string]any{"error": err.Error()})
		} else if err := db.RunMigrations(ctx, conn); err != nil {
			telemetry.Warn("db.migrate_failed", map[string]any{"error": err.Error()})
			conn.Close()
		} else {
			sqlDB = conn
		}
	}

	var userRepo users.Repo
	var usageStore usage.Store
	if sqlDB != nil {
		userRepo = users.NewPGRepo(sqlDB)
		usageStore = usage.NewPGStore(sqlDB)
	} else {
		userRepo = users.NewMemoryRepo()
		usageStore = usage.NewMemoryStore()
	}

	store := o.store
	if store == nil {
		switch cfg.ObjectStoreType {
		case "s3":
			s3, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
			if err != nil {
				return nil, fmt.Errorf("init s3 store: %w", err)
			}
			store = s3
		default:
			store = localstore.New(cfg.LocalStoreDir)
		}
	}

	improver := o.improver
	if improver == nil {
		if cfg.OpenAIAPIKey != "" {
			client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)
			if err != nil {
				return nil, fmt.Errorf("init openai client: %w", err)
			}
			improver = client
		} else {
			telemetry.Warn("llm.not_configured", map[string]any{
				"detail": "OPENAI_API_KEY unset; fix-document requests will be refused",
			})
			improver = llm.Unconfigured{}
		}
	}

	userSvc := users.NewService(userRepo)
	usageSvc := usage.NewService(usageStore, usage.PlanLimits{
		Free: cfg.FreeMonthlyLimit,
		Pro:  cfg.ProMonthlyLimit,
	})
	docfixSvc := docfix.NewService(improver, store)
	billingSvc := billing.NewService(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		ProPriceID:    cfg.StripeProPriceID,
		FrontendURL:   cfg.FrontendURL,
	}, userSvc)

	return &App{
		Cfg:            cfg,
		DB:             sqlDB,
		Users:          userSvc,
		Usage:          usageSvc,
		Docfix:         docfixSvc,
		Billing:        billingSvc,
		UsersHandler:   users.NewHandler(userSvc, cfg.JWTSecret, cfg.TokenTTL),
		UsageHandler:   usage.NewHandler(usageSvc, userSvc),
		DocfixHandler:  docfix.NewHandler(docfixSvc, userSvc, usageSvc, cfg.MaxUploadBytes),
		BillingHandler: billing.NewHandler(billingSvc),
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

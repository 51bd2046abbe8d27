package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/spacehub/internal/accounts/billing"
	httpapi "github.com/aussiebroadwan/spacehub/internal/accounts/http"
	"github.com/aussiebroadwan/spacehub/internal/accounts/mail"
	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the accounts service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   jwtx.Signer
	tokens   *service.TokenIssuer
	hasher   cryptox.Hasher
	mailer   service.Mailer
	billing  service.Billing // nil without STRIPE_SECRET_KEY
	limiter  httpx.LimiterStore
	redis    *redis.Client // nil unless RATELIMIT_REDIS_ADDR is set
	registry *prometheus.Registry
	metrics  *service.Metrics

	// Services
	accountService      *service.AccountService
	profileService      *service.ProfileService
	invitationService   *service.InvitationService
	adminService        *service.AdminService
	bootstrapService    *service.BootstrapService
	authorizer          *service.Authorizer
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			File:    cfg.LogFile,
		}),
	}
	slog.SetDefault(app.logger)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCrypto(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initIntegrations(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.seedAdmin(context.Background()); err != nil {
		app.closeIntegrations()
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("accounts service starting", "addr", app.cfg.HTTPAddr, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops background work and closes
// every connection the application owns.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.closeIntegrations()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase opens the SQLite store and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initCrypto loads the pepper and signing key.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.Hasher{
		Algorithm:  app.cfg.PasswordHashAlg,
		Pepper:     pepper,
		Argon2:     cryptox.DefaultArgon2Params,
		BcryptCost: app.cfg.BcryptCost,
	}

	signer, err := InitSigner(app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.signer = signer
	app.tokens = service.NewTokenIssuer(signer, app.cfg.Issuer, app.cfg.SessionTTL, nil)
	return nil
}

// initIntegrations wires the outbound collaborators: mail, billing, the
// rate limiter backend and metrics.
func (app *Application) initIntegrations() error {
	switch app.cfg.MailDriver {
	case "smtp":
		app.mailer = mail.NewSMTPSender(app.cfg.SMTPAddr, app.cfg.SMTPUsername, app.cfg.SMTPPassword, app.cfg.MailFrom)
		app.logger.Info("mail delivered over SMTP", "addr", app.cfg.SMTPAddr)
	case "amqp":
		app.mailer = mail.NewAMQPSender(app.cfg.AMQPURL, app.cfg.AMQPQueue)
		app.logger.Info("mail published to AMQP", "queue", app.cfg.AMQPQueue)
	default:
		app.mailer = mail.LogSender{}
		app.logger.Warn("mail driver is log; codes and links are only written to the log")
	}

	if app.cfg.StripeSecretKey != "" {
		app.billing = billing.NewStripe(app.cfg.StripeSecretKey, nil)
		app.logger.Info("billing enabled", "provider", "stripe")
	} else {
		app.logger.Info("billing disabled; card registration will fail")
	}

	if app.cfg.RateLimitRedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RateLimitRedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = app.redis.Close()
			return fmt.Errorf("failed to reach rate limit redis: %w", err)
		}
		app.limiter = httpx.NewRedisStore(app.redis, "spacehub:ratelimit")
		app.logger.Info("rate limits shared through redis", "addr", app.cfg.RateLimitRedisAddr)
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = service.NewMetrics(app.registry)
	return nil
}

func (app *Application) closeIntegrations() {
	if c, ok := app.mailer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing mail sender", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	codes := &service.OTPGenerator{Digits: app.cfg.OTPDigits, TTL: app.cfg.OTPTTL}
	passwords := service.PasswordPolicy{MinLength: app.cfg.PasswordMinLength}

	app.accountService = &service.AccountService{
		Store:             app.db,
		Hasher:            app.hasher,
		Tokens:            app.tokens,
		Codes:             codes,
		Mailer:            app.mailer,
		Billing:           app.billing,
		Passwords:         passwords,
		Metrics:           app.metrics,
		OptimisticLocking: app.cfg.OptimisticLocking,
		ResetRequireOTP:   app.cfg.ResetRequireOTP,
	}
	app.profileService = &service.ProfileService{
		Store:             app.db,
		Billing:           app.billing,
		OptimisticLocking: app.cfg.OptimisticLocking,
	}
	app.invitationService = &service.InvitationService{
		Store:     app.db,
		Hasher:    app.hasher,
		Tokens:    app.tokens,
		Codes:     codes,
		Mailer:    app.mailer,
		Passwords: passwords,
		Metrics:   app.metrics,
		TTL:       app.cfg.InviteTTL,
		BaseURL:   app.cfg.PublicBaseURL,
	}
	app.adminService = &service.AdminService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:     app.db,
		Hasher:    app.hasher,
		Passwords: passwords,
	}
	app.authorizer = &service.Authorizer{Store: app.db, Tokens: app.tokens}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = app.metrics
}

// seedAdmin creates the configured administrator on an empty deployment.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" {
		done, err := app.bootstrapService.IsBootstrapped(ctx)
		if err != nil {
			return fmt.Errorf("failed to check for an admin: %w", err)
		}
		if !done {
			app.logger.Warn("no admin account exists; set ADMIN_EMAIL and ADMIN_PASSWORD to seed one")
		}
		return nil
	}

	ctx = slogx.WithContext(ctx, app.logger)
	created, err := app.bootstrapService.SeedAdmin(ctx, app.cfg.AdminEmail, app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if created {
		app.logger.Info("admin account seeded", "email", app.cfg.AdminEmail)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens.Keys,
		BuildVersion,
		app.db,
		app.logger,
		app.limiter,
		httpapi.RateLimits{
			Strict:   app.cfg.RateLimitStrict,
			Moderate: app.cfg.RateLimitModerate,
			Lenient:  app.cfg.RateLimitLenient,
		},
		app.registry,
	)

	router.AccountService = app.accountService
	router.ProfileService = app.profileService
	router.InvitationService = app.invitationService
	router.AdminService = app.adminService
	router.Authorizer = app.authorizer
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

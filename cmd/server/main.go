package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/agronet/identity-api/internal/auth"
	"github.com/agronet/identity-api/internal/config"
	"github.com/agronet/identity-api/internal/database"
	"github.com/agronet/identity-api/internal/handlers"
	"github.com/agronet/identity-api/internal/logger"
	"github.com/agronet/identity-api/internal/metrics"
	"github.com/agronet/identity-api/internal/middleware"
	"github.com/agronet/identity-api/internal/oauth"
	"github.com/agronet/identity-api/internal/queue"
	"github.com/agronet/identity-api/internal/telemetry"
)

const serviceName = "identity-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(zapLogger)

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("google_configured", cfg.Google.Configured()),
		zap.Bool("microsoft_configured", cfg.Microsoft.Configured()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing is optional
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	// Audit publishing is best-effort: without AMQP the service still
	// authenticates, it just leaves no audit trail.
	var audit queue.AuditPublisher
	if cfg.AMQPURL != "" {
		publisher, err := queue.NewRabbitMQPublisher(cfg.AMQPURL)
		if err != nil {
			zapLogger.Warn("failed_to_connect_to_rabbitmq_audit_disabled", zap.Error(err))
		} else {
			audit = publisher
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := publisher.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
		}
	}

	users := database.NewUserRepository(db)
	resolver := auth.NewResolver(users, zapLogger)
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.SessionTTL)
	cookies := auth.NewCookiePolicy(cfg.SessionCookieName, cfg.SessionTTL, cfg.Production())
	collector := metrics.NewCollector()

	providers := buildProviders(cfg, zapLogger)

	authHandler := handlers.NewAuthHandler(handlers.AuthHandlerConfig{
		Resolver:    resolver,
		Tokens:      tokens,
		Cookies:     cookies,
		Providers:   providers,
		FrontendURL: cfg.FrontendURL,
		Audit:       audit,
		Collector:   collector,
		Logger:      zapLogger,
	})
	healthChecker := handlers.NewHealthChecker(db)

	r := mux.NewRouter()

	// Middleware registered first wraps outermost.
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS([]string{cfg.FrontendURL}))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/health", healthChecker.HealthCheck).Methods("GET")
	r.Handle("/metrics", collector.Handler()).Methods("GET")

	session := middleware.Session(users, tokens, cookies, collector, zapLogger)
	authHandler.RegisterRoutes(r, session)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// buildProviders registers every OAuth provider that has credentials.
// Callback URLs follow the route shape under BASE_URL.
func buildProviders(cfg *config.Config, zapLogger *zap.Logger) oauth.Registry {
	var providers []oauth.Provider

	if cfg.Google.Configured() {
		providers = append(providers, oauth.NewGoogleProvider(
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			cfg.BaseURL+"/oauth/google/callback",
		))
		zapLogger.Info("oauth_provider_registered", zap.String("provider", "google"))
	}

	if cfg.Microsoft.Configured() {
		providers = append(providers, oauth.NewMicrosoftProvider(
			cfg.Microsoft.ClientID,
			cfg.Microsoft.ClientSecret,
			cfg.BaseURL+"/oauth/microsoft/callback",
			cfg.Microsoft.Tenant,
		))
		zapLogger.Info("oauth_provider_registered", zap.String("provider", "microsoft"))
	}

	if len(providers) == 0 {
		zapLogger.Warn("no_oauth_providers_configured")
	}

	return oauth.NewRegistry(providers...)
}

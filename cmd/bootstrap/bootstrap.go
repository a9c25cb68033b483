package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"okapi-care-network/config"
	deliveryHttp "okapi-care-network/internal/delivery/http"
	"okapi-care-network/internal/delivery/http/handler"
	"okapi-care-network/internal/delivery/http/middleware"
	"okapi-care-network/internal/domain/feature"
	"okapi-care-network/internal/domain/rbac"
	"okapi-care-network/internal/infrastructure/cache"
	"okapi-care-network/internal/infrastructure/database"
	"okapi-care-network/internal/infrastructure/metrics"
	"okapi-care-network/internal/repository"
	"okapi-care-network/internal/service"
	"okapi-care-network/internal/usecase"
	"okapi-care-network/pkg/jwt"
	"okapi-care-network/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log, err := setupLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}
	app.Log = log
	log.Info("Configuration loaded successfully")

	// The role table is compiled in; refuse to serve with an inconsistent one.
	if err := rbac.Validate(); err != nil {
		return nil, fmt.Errorf("invalid role table: %w", err)
	}

	features, err := feature.NewSet(cfg.Features.Enabled, cfg.Features.Disabled)
	if err != nil {
		return nil, fmt.Errorf("invalid feature configuration: %w", err)
	}
	log.WithField("coming_soon", features.ComingSoon()).Info("Feature flags loaded")

	if cfg.DB.MigrateOnStart {
		if err := migrate(cfg.DB, log); err != nil {
			return nil, err
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize all layers
	app.Server = initializeServer(cfg, log, db, redisClient, features)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(parsed)
	return log, nil
}

func migrate(cfg config.DBConfig, log *logrus.Logger) error {
	migrator, err := database.NewMigrator(cfg)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	defer migrator.Close()

	changed, err := migrator.Up()
	if err != nil {
		return err
	}
	if changed {
		log.Info("Database migrations applied")
	} else {
		log.Info("Database schema up to date")
	}
	return nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client, features *feature.Set) *http.Server {
	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	tokenStore := service.NewTokenStore(redisClient, log)
	auditService := service.NewAuditService(db, log, auditLogRepo, appMetrics)
	checker := rbac.StaticChecker{}

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, jwtService, tokenStore, auditService)
	accessUsecase := usecase.NewAccessUsecase(log, checker, features)
	staffUsecase := usecase.NewStaffUsecase(db, log, userRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	accessHandler := handler.NewAccessHandler(accessUsecase, customValidator)
	staffHandler := handler.NewStaffHandler(staffUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	permissionMiddleware := middleware.NewPermissionMiddleware(checker, auditService, appMetrics)
	facilityMiddleware := middleware.NewFacilityScopeMiddleware(auditService)
	featureMiddleware := middleware.NewFeatureMiddleware(features)
	loginLimiter := middleware.NewRateLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.Security.AllowedOrigins)
	clientIPMiddleware := middleware.NewClientIPMiddleware(cfg.Security.TrustedProxyHops)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		accessHandler,
		staffHandler,
		auditLogHandler,
		healthHandler,
		authMiddleware,
		permissionMiddleware,
		facilityMiddleware,
		featureMiddleware,
		loginLimiter,
		corsMiddleware,
		clientIPMiddleware,
		appMetrics,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

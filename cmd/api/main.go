package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/eufiscalizo-api/api/swagger"
	"github.com/noah-isme/eufiscalizo-api/internal/bootstrap"
	"github.com/noah-isme/eufiscalizo-api/internal/handler"
	internalmiddleware "github.com/noah-isme/eufiscalizo-api/internal/middleware"
	"github.com/noah-isme/eufiscalizo-api/internal/service"
	"github.com/noah-isme/eufiscalizo-api/pkg/config"
	"github.com/noah-isme/eufiscalizo-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/eufiscalizo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/eufiscalizo-api/pkg/middleware/requestid"
)

// @title Eu Fiscalizo API
// @version 1.0.0
// @description Campus facilities reporting: students report problems, administrators resolve them.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	stores, err := bootstrap.Open(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer stores.Close() //nolint:errcheck

	verifier, err := service.NewSharedSecretVerifier(cfg.Auth.SharedSecret)
	if err != nil {
		return err
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	authSvc := service.NewAuthService(stores.Users, verifier, validate, metrics, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	registry := service.NewInspectionRegistry(stores.Inspections, logr)
	inspectionSvc := service.NewInspectionService(registry, validate, metrics, logr)

	checks := map[string]handler.ReadinessCheck{}
	if stores.DB != nil {
		checks["database"] = stores.DB.PingContext
	}
	if stores.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return stores.Redis.Ping(ctx).Err() }
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	routes := handler.RouterConfig{
		APIPrefix:   cfg.APIPrefix,
		Auth:        handler.NewAuthHandler(authSvc),
		Inspections: handler.NewInspectionHandler(inspectionSvc),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
		Tokens:      authSvc,
		LoginLimit:  cfg.RateLimit.LoginLimit,
		LoginWindow: cfg.RateLimit.LoginWindow,
	}
	if stores.Redis != nil {
		routes.Limiter = internalmiddleware.NewRedisLimiter(stores.Redis, logr)
	}
	handler.RegisterRoutes(r, routes)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eufiscalizo-api/internal/bootstrap"
	"github.com/noah-isme/eufiscalizo-api/internal/cli"
	"github.com/noah-isme/eufiscalizo-api/internal/service"
	"github.com/noah-isme/eufiscalizo-api/pkg/config"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logr, err := logger.NewCLI(os.Getenv("FISCALIZO_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.Open(ctx, cfg, logr)
	if err != nil {
		logr.Error("failed to open store", zap.Error(err))
		return 1
	}
	defer stores.Close() //nolint:errcheck

	if cfg.Store.Driver == config.StoreMemory {
		logr.Warn("STORE_DRIVER=memory keeps inspections only for this invocation")
	}

	sessions, err := stores.Sessions(cfg, logr)
	if err != nil {
		logr.Error("failed to open session store", zap.Error(err))
		return 1
	}
	verifier, err := service.NewSharedSecretVerifier(cfg.Auth.SharedSecret)
	if err != nil {
		logr.Error("invalid shared secret", zap.Error(err))
		return 1
	}

	validate := validator.New()
	identity := service.NewIdentityStore(stores.Users, sessions, verifier, logr)
	registry := service.NewInspectionRegistry(stores.Inspections, logr)
	inspections := service.NewInspectionService(registry, validate, nil, logr)

	app := cli.New(identity, inspections, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", appErr.Code, appErr.Message)
			return 1
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fundingintake/internal/server/config"
	"fundingintake/internal/server/httpapi"
	"fundingintake/internal/server/repository/postgres"
	"fundingintake/internal/server/repository/sqlite"
	"fundingintake/internal/server/service"
	"fundingintake/internal/server/vault"
	cryptohelper "fundingintake/internal/shared/crypto"
)

type App struct {
	version   string
	buildDate string
	logger    *zap.Logger
	server    *http.Server
	repo      service.Repository
}

func New(version, buildDate string, cfg config.Config, logger *zap.Logger) (*App, error) {
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("using the development JWT secret; set INTAKE_JWT_SECRET")
	}
	if cfg.ReviewerEmail == "" {
		logger.Warn("no reviewer credential configured; reviewer login is disabled")
	}

	sealer, err := openSealer(cfg.CardKeyFile, logger)
	if err != nil {
		return nil, err
	}
	repo, err := openRepository(cfg, sealer)
	if err != nil {
		return nil, err
	}

	services := service.NewServices(repo, cfg, logger)
	router := httpapi.NewRouter(services, logger, httpapi.Options{
		MaxRequestBytes:      cfg.MaxRequestBytes,
		RequireReviewerToken: cfg.RequireReviewerToken,
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &App{version: version, buildDate: buildDate, logger: logger, server: server, repo: repo}, nil
}

func openSealer(keyFile string, logger *zap.Logger) (*cryptohelper.Sealer, error) {
	key, created, err := vault.LoadOrGenerate(keyFile)
	if err != nil {
		return nil, fmt.Errorf("card key: %w", err)
	}
	if created {
		logger.Info("generated card key", zap.String("path", keyFile))
	}
	return cryptohelper.NewSealer(key)
}

func openRepository(cfg config.Config, sealer *cryptohelper.Sealer) (service.Repository, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.New(ctx, cfg.DatabaseDSN, sealer)
	default:
		return sqlite.New(cfg.DatabaseDSN, sealer)
	}
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = a.repo.Close() }()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	a.logger.Info("intake server started",
		zap.String("version", a.version),
		zap.String("build_date", a.buildDate),
		zap.String("addr", a.server.Addr),
	)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

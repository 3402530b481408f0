package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/nurpe/wasteops-collections/internal/auth"
	"github.com/nurpe/wasteops-collections/internal/config"
	"github.com/nurpe/wasteops-collections/internal/db"
	"github.com/nurpe/wasteops-collections/internal/excel"
	httphandler "github.com/nurpe/wasteops-collections/internal/http"
	"github.com/nurpe/wasteops-collections/internal/http/middleware"
	"github.com/nurpe/wasteops-collections/internal/logger"
	"github.com/nurpe/wasteops-collections/internal/metrics"
	"github.com/nurpe/wasteops-collections/internal/pdf"
	"github.com/nurpe/wasteops-collections/internal/repository"
	"github.com/nurpe/wasteops-collections/internal/service"
	"github.com/nurpe/wasteops-collections/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	backend, closers := openBackend(ctx, cfg, log)
	defer func() {
		if err := closeAll(closers); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer := metrics.New(registry)

	verifier, err := service.NewCredentialVerifier(cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid credential settings")
	}

	userRepo := repository.NewUserRepository(backend, cfg.Storage.Seed, log)
	sessionRepo := repository.NewSessionRepository(backend, log)
	collectionRepo := repository.NewCollectionRepository(backend, cfg.Storage.Seed, log)
	reportRepo := repository.NewReportRepository(backend, cfg.Storage.Seed, log)

	identityService := service.NewIdentityService(userRepo, sessionRepo, verifier, log, service.WithObserver(observer))
	collectionService := service.NewCollectionService(
		collectionRepo,
		service.ParseCompletionPolicy(cfg.Collections.CompletePolicy),
		log,
		service.WithObserver(observer),
	)
	reportService := service.NewReportService(collectionRepo, reportRepo, excel.NewGenerator(), pdf.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(identityService, collectionService, reportService, tokenParser, cfg.Auth.AccessTTL, log)
	authMiddleware := middleware.Auth(tokenParser, identityService)
	router := httphandler.NewRouter(handler, authMiddleware, httphandler.RouterOptions{
		Environment: cfg.Environment,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log,
		Observer:    observer,
		Gatherer:    registry,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown server")
		}
	}()

	log.Info().
		Str("addr", server.Addr).
		Str("storage", cfg.Storage.Backend).
		Str("complete_policy", cfg.Collections.CompletePolicy).
		Msg("starting collections service")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// openBackend falls back to an unavailable store when the configured one cannot be reached,
// so the service keeps serving seed data.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Backend, []io.Closer) {
	switch cfg.Storage.Backend {
	case config.StorageSQL:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("database unavailable, running without persistence")
			return storage.Unavailable{}, nil
		}
		sqlDB, err := database.DB()
		if err != nil {
			log.Error().Err(err).Msg("database unavailable, running without persistence")
			return storage.Unavailable{}, nil
		}
		return storage.NewSQL(database), []io.Closer{sqlDB}

	case config.StorageRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		store, client, err := storage.NewRedis(pingCtx, storage.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error().Err(err).Msg("redis unavailable, running without persistence")
			return storage.Unavailable{}, nil
		}
		return store, []io.Closer{client}

	case config.StorageNone:
		return storage.Unavailable{}, nil

	default:
		return storage.NewMemory(), nil
	}
}

func closeAll(closers []io.Closer) error {
	var errs error
	for _, c := range closers {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

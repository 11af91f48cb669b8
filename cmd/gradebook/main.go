package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/gradebook/internal/adapters/http/api"
	"github.com/okian/gradebook/internal/adapters/http/swagger"
	"github.com/okian/gradebook/internal/adapters/repository"
	service "github.com/okian/gradebook/internal/app"
	"github.com/okian/gradebook/internal/config"
	"github.com/okian/gradebook/pkg/logger"
	"github.com/okian/gradebook/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// .env first so its values feed the GRADEBOOK_* layer.
	if err := config.LoadDotenv(os.Getenv("GRADEBOOK_DOTENV")); err != nil {
		os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	handler, svc, err := newHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(ctx, "closing history store failed", logger.Error(err))
		}
	}()

	go metrics.RunSystemCollector(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newHandler opens the configured history store and builds the router.
func newHandler(ctx context.Context, cfg *config.Config) (http.Handler, *service.Service, error) {
	store, err := repository.Open(ctx, repository.Settings{
		Backend:       cfg.Store,
		HistoryPath:   cfg.HistoryPath,
		DatabaseDSN:   cfg.DatabaseDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisKey:      cfg.RedisKey,
	}, repository.WithLogger(logger.Named("history")))
	if err != nil {
		return nil, nil, err
	}
	metrics.UpdateHistorySize(store.Count(ctx))

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithStore(store),
	)

	server := api.NewServer(svc,
		api.WithAllowedOrigins(cfg.AllowedOrigins()),
		api.WithRequestTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger.Named("http")),
	)
	router := server.Router(ctx, func(r chi.Router) { swagger.Register(ctx, r) })
	return router, svc, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/cache"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/httpapi"
	"github.com/nikolayk812/storefront/internal/logging"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/storeapi"
	"go.uber.org/zap"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogCache, closeCache, err := newCatalogCache(cfg)
	if err != nil {
		return fmt.Errorf("newCatalogCache: %w", err)
	}
	defer closeCache()

	client, err := storeapi.New(cfg.StoreAPIURL,
		storeapi.WithToken(cfg.StoreAPIToken),
		storeapi.WithLogger(logger.Named("storeapi")))
	if err != nil {
		return fmt.Errorf("storeapi.New: %w", err)
	}

	repo, closeRepo, err := newCartRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("newCartRepository: %w", err)
	}
	defer closeRepo()

	catalog, err := service.NewCatalog(client, catalogCache, cfg.CatalogFetchTimeout, logger.Named("catalog"))
	if err != nil {
		return fmt.Errorf("service.NewCatalog: %w", err)
	}

	submitter, err := service.NewSubmitter(client, service.SubmitterConfig{
		Policy: domain.DeliveryPolicy{
			Fee:           cfg.DeliveryFee,
			FreeThreshold: cfg.FreeDeliveryThreshold,
			Currency:      cfg.Currency,
		},
		Token:   cfg.StoreAPIToken,
		Timeout: cfg.OrderTimeout,
	}, logger.Named("submitter"))
	if err != nil {
		return fmt.Errorf("service.NewSubmitter: %w", err)
	}

	sessions, err := service.NewSessions(submitter, repo, logger.Named("sessions"),
		service.WithIdleTimeout(cfg.SessionIdleTimeout))
	if err != nil {
		return fmt.Errorf("service.NewSessions: %w", err)
	}
	go sessions.RunJanitor(ctx, sessionSweepInterval)

	handler, err := httpapi.NewHandler(catalog, sessions, logger.Named("http"))
	if err != nil {
		return fmt.Errorf("httpapi.NewHandler: %w", err)
	}

	var proxy *httpapi.Proxy
	if cfg.ProxyEnabled {
		proxy, err = httpapi.NewProxy(cfg.StoreAPIURL, cfg.StoreAPIToken, nil, logger.Named("proxy"))
		if err != nil {
			return fmt.Errorf("httpapi.NewProxy: %w", err)
		}
	}

	gin.SetMode(cfg.GinMode)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      httpapi.NewRouter(handler, proxy, logger.Named("http")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.OrderTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr), zap.Bool("proxy", cfg.ProxyEnabled))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	logger.Info("server stopped")

	return nil
}

// newCatalogCache uses Redis when REDIS_URL is set and process memory otherwise.
func newCatalogCache(cfg config.Config) (port.CatalogCache, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cache.WithTTL(cfg.CatalogTTL)), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)

	c, err := cache.NewRedis(client, cache.WithTTL(cfg.CatalogTTL))
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("cache.NewRedis: %w", err)
	}

	return c, func() { _ = client.Close() }, nil
}

// newCartRepository returns a nil repository when DATABASE_URL is empty, carts then live in memory only.
func newCartRepository(ctx context.Context, cfg config.Config) (port.CartRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pool.Ping: %w", err)
	}

	repo, err := repository.NewCart(pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("repository.NewCart: %w", err)
	}

	return repo, pool.Close, nil
}

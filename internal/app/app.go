// Package app wires the gateway's adapters and domain components into a
// runnable HTTP server: config, logging, metrics, Redis, the upstream
// client, the token pool, and the generation orchestrator.
package app

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	ginadapter "github.com/uniedit/genbridge/internal/adapter/inbound/gin"
	"github.com/uniedit/genbridge/internal/adapter/outbound/rediscache"
	"github.com/uniedit/genbridge/internal/adapter/outbound/sessionpool"
	"github.com/uniedit/genbridge/internal/adapter/outbound/sessionprovider"
	"github.com/uniedit/genbridge/internal/adapter/outbound/upstream"
	"github.com/uniedit/genbridge/internal/domain/generation"
	"github.com/uniedit/genbridge/internal/port/outbound"
	"github.com/uniedit/genbridge/internal/shared/cache"
	"github.com/uniedit/genbridge/internal/shared/config"
	"github.com/uniedit/genbridge/internal/shared/logger"
	"github.com/uniedit/genbridge/internal/shared/metrics"
)

// App holds every long-lived component the running gateway needs to serve
// requests and shut down cleanly.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	router http.Handler

	redisClient redis.UniversalClient
}

// New wires the full dependency graph from cfg. Redis is best-effort: a
// connection failure downgrades the Credit Cache to an always-miss no-op
// rather than failing startup, matching that cache's advisory role.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	m := metrics.New("genbridge")

	var redisClient redis.UniversalClient
	creditCache, err := buildCreditCache(cfg, log, &redisClient)
	if err != nil {
		return nil, err
	}

	upstreamClient := upstream.New(upstream.Config{
		AccessKeyID:      cfg.Upstream.AccessKeyID,
		SecretAccessKey:  cfg.Upstream.SecretAccessKey,
		RequestTimeout:   cfg.Upstream.RequestTimeout,
		UploadTimeout:    cfg.Upstream.UploadTimeout,
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
		FailureRatio:     cfg.CircuitBreaker.FailureRatio,
		OpenTimeout:      cfg.CircuitBreaker.OpenTimeout,
		HalfOpenMaxCalls: cfg.CircuitBreaker.HalfOpenMaxCalls,
	}, m)

	pool := sessionpool.New(cfg.Pool.Tokens)
	sessions := sessionprovider.New()

	orchestrator := generation.New(upstreamClient, pool, sessions, creditCache, generation.DefaultConfig())

	handler := ginadapter.NewHandler(orchestrator)
	router := ginadapter.NewRouter(handler, m, log)

	return &App{
		cfg:         cfg,
		log:         log,
		router:      router,
		redisClient: redisClient,
	}, nil
}

// buildCreditCache connects to Redis and wraps it in a rediscache.CreditCache.
// A connection failure is logged and downgraded to a no-op cache instead of
// aborting startup: the credit check is advisory, never load-bearing.
func buildCreditCache(cfg *config.Config, log *logger.Logger, redisClient *redis.UniversalClient) (outbound.CreditCachePort, error) {
	client, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, credit cache will always miss", logger.Err(err))
		return rediscache.NoOp{}, nil
	}
	*redisClient = client
	return rediscache.New(client), nil
}

// Router returns the gateway's HTTP handler.
func (a *App) Router() http.Handler {
	return a.router
}

// Server builds an *http.Server bound to the app's router and the
// configured timeouts.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}
}

// Stop releases the app's long-lived resources.
func (a *App) Stop() error {
	if a.redisClient == nil {
		return nil
	}
	if err := cache.Close(a.redisClient); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

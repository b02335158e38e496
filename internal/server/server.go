// Package server composes the application's long-lived dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - redis client (cache and job queue)
//   - background job worker server (asynq)
//   - dependency health checker and its periodic monitor
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/go-insurance/internal/config"
	"github.com/deppfellow/go-insurance/internal/database"
	"github.com/deppfellow/go-insurance/internal/lib/health"
	"github.com/deppfellow/go-insurance/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/go-insurance/internal/logger"
)

const redisPingTimeout = 5 * time.Second

// Server is the application container. It is not the HTTP server itself.
// RedisReady is false when the startup ping failed; the client stays for
// health reporting but no cache is built on it.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database
	Redis         *redis.Client
	RedisReady    bool
	Job           *job.JobService
	Health        *health.Checker

	monitor    *health.Monitor
	httpServer *http.Server
}

// New connects every dependency and starts the job worker.
//
// A database failure aborts startup. Redis is optional: a failed ping is
// logged and the service runs without a cache.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	redisReady := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisReady = false
		logger.Error().Err(err).Msg("failed to connect to redis, continuing without cache")
	}

	jobService := job.NewJobService(logger, cfg)
	jobService.InitHandlers(cfg, logger)

	if err := jobService.Start(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		RedisReady:    redisReady,
		Job:           jobService,
	}

	s.Health = NewHealthChecker(cfg, logger, loggerService.GetApplication(), db, redisClient)

	if cfg.Observability.HealthChecks.Enabled {
		monitor, err := health.NewMonitor(s.Health, cfg.Observability.HealthChecks.Interval, logger)
		if err != nil {
			jobService.Stop()
			db.Close()
			return nil, err
		}
		monitor.Start()
		s.monitor = monitor
	}

	return s, nil
}

// NewHealthChecker builds the checker for the dependencies listed in the
// observability config. The database check is always present.
func NewHealthChecker(cfg *config.Config, logger *zerolog.Logger, nrApp *newrelic.Application, db health.Pinger, rdb redis.Cmdable) *health.Checker {
	checks := []health.Check{health.DatabaseCheck(db)}
	if rdb != nil && cfg.Observability.HasCheck("redis") {
		checks = append(checks, health.RedisCheck(rdb))
	}

	return health.NewChecker(
		cfg.Primary.Env,
		cfg.Observability.HealthChecks.Timeout,
		logger,
		nrApp,
		checks...,
	)
}

// SetupHTTPServer configures the net/http server around handler.
// Config timeouts are interpreted as seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases every dependency.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.monitor != nil {
		s.monitor.Stop()
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/avatarctic/placeproxy/configs"
	"github.com/avatarctic/placeproxy/internal/application/query"
	"github.com/avatarctic/placeproxy/internal/application/services"
	"github.com/avatarctic/placeproxy/internal/core/ports"
	"github.com/avatarctic/placeproxy/internal/infrastructure/health"
	"github.com/avatarctic/placeproxy/internal/infrastructure/httpserver"
	"github.com/avatarctic/placeproxy/internal/infrastructure/memcache"
	"github.com/avatarctic/placeproxy/internal/infrastructure/redis"
	"github.com/avatarctic/placeproxy/internal/infrastructure/repositories"
	"github.com/avatarctic/placeproxy/internal/infrastructure/wdqs"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(cfg.Log)
	logger.Info("Starting place proxy...")

	var (
		cache          ports.Cache
		rateLimitRepo  ports.RateLimitRepository = repositories.NewRateLimitMemoryRepository()
		healthCheckers []ports.HealthChecker
	)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")

		rateLimitRepo = repositories.NewRateLimitRedisRepository(redisClient)
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
		if cfg.Cache.Backend == "redis" {
			cache = redis.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
		}
	}
	if cache == nil {
		cache = memcache.New(memcache.WithCapacity(cfg.Cache.MaxEntries))
	}
	healthCheckers = append(healthCheckers, health.NewCacheHealthChecker(cache))

	logger.WithFields(logrus.Fields{
		"backend":         cfg.Cache.Backend,
		"ttl":             cfg.Cache.TTL,
		"max_entries":     cfg.Cache.MaxEntries,
		"coalesce_misses": cfg.Cache.CoalesceMisses,
	}).Info("Result cache configured")

	builder, err := query.NewBuilder(cfg.Upstream.LabelLanguages)
	if err != nil {
		logger.Fatal("Invalid upstream configuration:", err)
	}

	client := wdqs.NewClient(wdqs.Config{
		Endpoint:       cfg.Upstream.Endpoint,
		UserAgent:      cfg.Upstream.UserAgent,
		Timeout:        cfg.Upstream.Timeout,
		MaxAttempts:    cfg.Upstream.MaxAttempts,
		RetryBaseDelay: cfg.Upstream.RetryBaseDelay,
		RetryMaxDelay:  cfg.Upstream.RetryMaxDelay,
		RequestsPerSec: cfg.Upstream.RequestsPerSec,
		Burst:          cfg.Upstream.Burst,
	}, nil, logger)

	// Decorate the upstream-backed repository with the read-through cache
	baseRepo := repositories.NewWikidataPlaceRepository(builder, client, logger)
	placeRepo := repositories.NewCachingPlaceRepository(baseRepo, cache, cfg.Cache.TTL,
		repositories.WithMissCoalescing(cfg.Cache.CoalesceMisses),
		repositories.WithLogger(logger),
	)
	placeService := services.NewPlaceService(placeRepo, logger)

	var rateLimiter ports.RateLimiterService
	if cfg.RateLimit.DefaultRequestsPerMinute > 0 {
		rateLimiter = services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
			DefaultRequestsPerMinute: cfg.RateLimit.DefaultRequestsPerMinute,
			BurstMultiplier:          cfg.RateLimit.BurstMultiplier,
			Window:                   cfg.RateLimit.Window,
			KeyPrefix:                cfg.RateLimit.KeyPrefix,
		}, logger)
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		PlaceService:       placeService,
		RateLimiterService: rateLimiter,
		HealthCheckers:     healthCheckers,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aryodp/edgegate/internal/auth"
	"github.com/aryodp/edgegate/internal/cache"
	"github.com/aryodp/edgegate/internal/config"
	"github.com/aryodp/edgegate/internal/domain"
	"github.com/aryodp/edgegate/internal/httpserver"
	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/logger"
	"github.com/aryodp/edgegate/internal/probe"
	"github.com/aryodp/edgegate/internal/query"
	"github.com/aryodp/edgegate/internal/redis"
	"github.com/aryodp/edgegate/internal/scheduler"
	"github.com/aryodp/edgegate/internal/snapshot"
	"github.com/aryodp/edgegate/internal/upstream"
	"github.com/aryodp/edgegate/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	dataCache   *cache.DatasetCache
	refresher   *scheduler.Refresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	dataCache := cache.New()

	// Snapshot backend: file by default, Redis when an address is
	// configured. A broken Redis is fatal here on purpose: the
	// operator asked for it explicitly.
	var store snapshot.Store
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		client, err := redis.New(redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisDialTimeout,
			ReadTimeout:  cfg.RedisReadTimeout,
			WriteTimeout: cfg.RedisWriteTimeout,
			PingTimeout:  cfg.RedisPingTimeout,
			PoolSize:     cfg.RedisPoolSize,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		store = snapshot.NewRedisStore(client)
		loggerClient.Info("using redis snapshot backend",
			logger.String("addr", cfg.RedisAddr))
	} else {
		store = snapshot.NewFileStore(cfg.SnapshotFile)
		loggerClient.Info("using file snapshot backend",
			logger.String("path", cfg.SnapshotFile))
	}

	// Hydrate the cache from the last snapshot so the query endpoint
	// answers right after restart. Any failure here just means a cold
	// start.
	hydrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if ds, err := store.Load(hydrateCtx); err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			loggerClient.Info("no snapshot present, starting cold")
		} else {
			loggerClient.Warn("snapshot hydration failed, starting cold",
				logger.Error(err))
		}
	} else {
		dataCache.Replace(ds)
		loggerClient.Info("cache hydrated from snapshot",
			logger.Int("rows", len(ds.Rows)),
			logger.Time("fetched_at", ds.FetchedAt))
	}
	cancel()

	users, err := auth.LoadStore(cfg.UsersFile)
	if err != nil {
		loggerClient.Errorf("Failed to load users file: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("credential store loaded",
		logger.Int("users", users.Count()))

	// Create manual refresh trigger channel
	reloadTrigger := make(chan struct{}, 1)

	fetcher := upstream.NewFetcher(cfg.UpstreamURL, cfg.UpstreamTimeout)
	refresher := scheduler.NewRefresher(
		fetcher,
		dataCache,
		store,
		loggerClient,
		cfg.RefreshMinute,
		reloadTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		Cache:             dataCache,
		Query:             query.New(dataCache),
		Prober:            probe.NewClient(cfg.ProbeTimeout),
		Users:             users,
		ReloadTrigger:     reloadTrigger,
		CheckBurst:        cfg.CheckBurst,
		CheckRefillPerMin: cfg.CheckRefillPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		dataCache:   dataCache,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting edgegate v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("edgegate %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the refresher (cold-start fetch if needed, then the
	// hourly schedule)
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start dataset refresher: %w", err)
	}
	a.logger.Info("dataset refresher started",
		logger.Int("refresh_minute", a.cfg.RefreshMinute))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop refresher
	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ edgegate stopped cleanly")
	return nil
}

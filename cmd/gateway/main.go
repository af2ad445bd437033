package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"debounce-gateway/middleware/debounce"
	"debounce-gateway/middleware/debounce/application"
	"debounce-gateway/middleware/debounce/domain"
	"debounce-gateway/middleware/debounce/infra"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("gateway", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "JSON config file (optional; GATEWAY_* env vars override it)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	closer, err := setupLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("log setup error: %v", err)
	}
	defer func() { _ = closer.Close() }()

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		logrus.Fatalf("invalid upstream_url: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var limiter domain.LimiterStore
	if cfg.Rate.Enabled {
		store := infra.NewStore(cfg.Rate.RunsPerSecond, cfg.Rate.Burst)
		store.StartJanitor(ctx)
		limiter = store
	}

	stats, memStats, closeStats := buildStats(cfg.Stats)
	defer closeStats()

	starter := &infra.UpstreamStarter{
		Client:       &http.Client{Timeout: cfg.Debounce.UpstreamTimeout},
		MaxBodyBytes: cfg.Debounce.MaxResponseBody,
	}

	registry := debounce.NewRegistry(func(key domain.Key) *application.Controller {
		return debounce.New(debounce.Options{
			Name:   "upstream",
			Start:  starter.Start,
			Cancel: starter.Cancel,
			Rate:   cfg.Debounce.Rate,
			Logger: logrus.WithField("key", string(key)),
		})
	},
		debounce.WithRegistryStats(stats),
		debounce.WithRegistryIdleTTL(cfg.Debounce.IdleTTL),
		debounce.WithRegistryCleanupEvery(cfg.Debounce.CleanupEvery),
	)
	registry.StartJanitor(ctx)

	h := debounce.Proxy(debounce.ProxyOptions{
		Upstream:           target,
		Registry:           registry,
		Store:              limiter,
		RetryAfter:         cfg.Rate.RetryAfter,
		KeyHeader:          cfg.Debounce.KeyHeader,
		TrustXForwardedFor: cfg.Debounce.TrustXFF,
		AddHeaders:         cfg.Rate.AddHeaders,
		MaxRequestBody:     cfg.Debounce.MaxRequestBody,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Debounce.UpstreamTimeout + cfg.Debounce.Rate + 5*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logrus.WithFields(logrus.Fields{
		"listen":   cfg.ListenAddr,
		"upstream": target.String(),
	}).Info("gateway listening")
	logrus.WithFields(logrus.Fields{
		"debounce_rate": cfg.Debounce.Rate.String(),
		"key_header":    cfg.Debounce.KeyHeader,
		"trust_xff":     cfg.Debounce.TrustXFF,
	}).Info("debounce")
	logrus.WithFields(logrus.Fields{
		"enabled":         cfg.Rate.Enabled,
		"runs_per_second": cfg.Rate.RunsPerSecond,
		"burst":           cfg.Rate.Burst,
	}).Info("admission")
	logrus.WithFields(logrus.Fields{
		"backend":    cfg.Stats.Backend,
		"redis_addr": cfg.Stats.RedisAddr,
		"bucket":     cfg.Stats.Bucket,
		"ttl":        cfg.Stats.TTL.String(),
		"track_keys": cfg.Stats.TrackKeys,
	}).Info("stats")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("server error: %v", err)
	}

	if memStats != nil {
		total := memStats.Total()
		logrus.WithFields(logrus.Fields{
			"runs":      total.Runs,
			"cancels":   total.Cancels,
			"successes": total.Successes,
			"errors":    total.Errors,
		}).Info("final stats")
	}
}

// buildStats monta o StatsStore conforme stats.backend. Para "memory" também
// devolve o store concreto, usado para logar os totais no encerramento.
func buildStats(cfg statsConfig) (domain.StatsStore, *infra.MemoryStatsStore, func()) {
	switch cfg.Backend {
	case "memory":
		mem := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.TrackKeys))
		return mem, mem, func() {}

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logrus.Fatalf("redis stats ping error: %v", err)
		}

		store := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Prefix),
			infra.WithStatsTTL(cfg.TTL),
			infra.WithStatsBucket(cfg.Bucket),
			infra.WithStatsTrackKeys(cfg.TrackKeys),
		)
		return store, nil, func() { _ = rdb.Close() }
	}

	return nil, nil, func() {}
}

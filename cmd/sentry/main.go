package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pmercer/marketwire/internal/config"
	"github.com/pmercer/marketwire/internal/consensus"
	"github.com/pmercer/marketwire/internal/database"
	"github.com/pmercer/marketwire/internal/dedup"
	"github.com/pmercer/marketwire/internal/delivery"
	"github.com/pmercer/marketwire/internal/enrich"
	"github.com/pmercer/marketwire/internal/pipeline"
	"github.com/pmercer/marketwire/internal/poller"
	"github.com/pmercer/marketwire/internal/provider"
	"github.com/pmercer/marketwire/internal/store"
	"github.com/pmercer/marketwire/internal/stream"
	"github.com/pmercer/marketwire/internal/universe"
	"github.com/pmercer/marketwire/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/sentry.local.yaml", "path to config file")
	flag.Parse()

	// Local .env is optional; environment wins either way.
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting sentry",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"provider_url", cfg.Providers.BaseURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Database and persistent store.
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st, err := store.NewPGStore(ctx, pool)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	logger.Info("database connected")

	// Provider client.
	client := provider.NewClient(
		cfg.Providers.BaseURL,
		cfg.Providers.APIKey,
		provider.WithListingURL(cfg.Providers.ListingURL),
		provider.WithFallbackURL(cfg.Providers.FallbackURL),
		provider.WithTimeout(cfg.Providers.Timeout),
		provider.WithRetries(cfg.Providers.MaxRetries, time.Second),
		provider.WithLogger(logger),
	)

	// Pipeline stages, innermost first.
	deduper := dedup.NewDeduper(dedup.Config{
		MemoryCapacity: cfg.Dedup.MemoryCapacity,
		Retention:      cfg.Dedup.Retention,
	}, st, logger)

	aggregator := consensus.NewAggregator(consensus.Config{
		Threshold: cfg.Consensus.Threshold,
		TTL:       cfg.Consensus.TTL,
	}, nil, logger)

	narrator := enrich.NewCachedNarrator(enrich.KeywordNarrator{}, st, logger)
	enricher := enrich.NewEnricher(enrich.DefaultConfig(), narrator, st, logger)

	hub := stream.NewHub(stream.DefaultConfig(), nil, logger)

	queue := delivery.NewQueue(delivery.Config{
		Capacity:     cfg.Delivery.Capacity,
		AutoInterval: cfg.Delivery.AutoInterval,
	}, hub, logger)

	engine := pipeline.NewEngine(pipeline.Config{
		FlushInterval: cfg.Delivery.AutoInterval,
		FlushTimeout:  cfg.Delivery.FlushTimeout,
		QueueCapacity: cfg.Delivery.Capacity,
	}, deduper, aggregator, enricher, queue, nil, hub, logger)

	// Universe manager and poller feed the engine.
	universeMgr := universe.NewManager(universe.Config{
		PriorityCap:  cfg.Universe.PriorityCap,
		SyncInterval: cfg.Universe.SyncInterval,
		Defaults:     cfg.Universe.Defaults,
	}, st, client, engine, logger)

	priceCache := poller.NewPriceCache(st, client,
		cfg.Poller.PriceCacheMaxAge, cfg.Poller.PriceWindow, logger)

	poll := poller.New(poller.Config{
		PriorityInterval: cfg.Poller.PriorityInterval,
		StandardInterval: cfg.Poller.StandardInterval,
		GlobalInterval:   cfg.Poller.GlobalInterval,
		Concurrency:      cfg.Poller.Concurrency,
		RequestTimeout:   cfg.Poller.RequestTimeout,
		PriorityNewsMax:  cfg.Poller.PriorityNewsMax,
		StandardNewsMax:  cfg.Poller.StandardNewsMax,
		FundamentalsProb: cfg.Poller.FundamentalsProb,
	}, client, universeMgr, engine, priceCache, logger)

	universeMgr.SetPollNow(poll.PollNow)
	engine.BindSymbolCommands(universeMgr)
	hub.BindCommander(engine)

	// Health server runs before the pipeline so startup is observable.
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: healthHandler(pool, universeMgr, queue, engine, hub),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	streamServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Stream.Port),
		Handler: hub,
	}
	go func() {
		logger.Info("starting stream server", "port", cfg.Stream.Port)
		if err := streamServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("stream server error", "error", err)
		}
	}()

	// Start order: engine first so nothing polled is lost, then the
	// universe, then the loops that sweep it.
	components := []struct {
		name  string
		start func(context.Context) error
		stop  func(context.Context) error
	}{
		{"pipeline engine", engine.Start, engine.Stop},
		{"deduper", deduper.Start, deduper.Stop},
		{"universe manager", universeMgr.Start, universeMgr.Stop},
		{"poller", poll.Start, poll.Stop},
	}

	started := make([]int, 0, len(components))
	for i, c := range components {
		if err := c.start(ctx); err != nil {
			logger.Error("failed to start component", "component", c.name, "error", err)
			cancel()
			break
		}
		started = append(started, i)
	}

	logger.Info("sentry running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
		"stream_url", fmt.Sprintf("ws://localhost:%d/", cfg.Stream.Port),
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop in reverse start order.
	for i := len(started) - 1; i >= 0; i-- {
		c := components[started[i]]
		if err := c.stop(shutdownCtx); err != nil {
			logger.Warn("component stop failed", "component", c.name, "error", err)
		}
	}

	queue.Stop()
	hub.Close()
	streamServer.Shutdown(shutdownCtx)
	healthServer.Shutdown(shutdownCtx)

	logger.Info("sentry stopped")
}

// healthHandler builds the health and debug endpoints.
func healthHandler(pool interface{ Ping(context.Context) error }, uni *universe.Manager, queue *delivery.Queue, engine *pipeline.Engine, hub *stream.Hub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		health.Components["universe"] = map[string]any{
			"full":       uni.FullSize(),
			"monitoring": len(uni.MonitoredSymbols()),
			"priority":   len(uni.PrioritySymbols()),
		}
		if uni.FullSize() == 0 && health.Status == "healthy" {
			health.Status = "degraded"
		}

		health.Components["delivery"] = map[string]any{
			"depth": queue.Depth(),
			"mode":  queue.Mode(),
		}
		health.Components["stream_clients"] = hub.ClientCount()
		health.Components["pipeline"] = engine.Stats()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/universe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"full_size":  uni.FullSize(),
			"monitoring": uni.MonitoredSymbols(),
			"priority":   uni.PrioritySymbols(),
			"standard":   uni.StandardSymbols(),
		})
	})

	return mux
}

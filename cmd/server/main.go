package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"friendsd/internal/audit"
	"friendsd/internal/friends"
	friendsmetrics "friendsd/internal/friends/metrics"
	"friendsd/internal/friends/registry"
	"friendsd/internal/friends/store/relationship"
	jwttoken "friendsd/internal/jwt_token"
	"friendsd/internal/platform/config"
	"friendsd/internal/platform/httpserver"
	"friendsd/internal/platform/logger"
	httpmetrics "friendsd/internal/platform/metrics"
	"friendsd/internal/platform/redis"
	"friendsd/internal/platform/tracing"
)

const shutdownTimeout = 10 * time.Second

type relationshipStore interface {
	registry.Store
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	auditStore, closeAudit, err := openAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	publisher := audit.NewPublisher(audit.WithLogger(log))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := friends.Deps{
		Store:       store,
		Audit:       publisher,
		Logger:      log,
		Metrics:     friendsmetrics.New(reg),
		HTTPMetrics: httpmetrics.New(reg),
	}
	if redisClient != nil {
		deps.Redis = redisClient.Client
	}
	if cfg.HostTokenKey != "" {
		deps.HostAuth = jwttoken.NewMiddlewareAdapter(jwttoken.NewJWTService(cfg.HostTokenKey, "friendsd"))
	} else {
		log.Warn("host API authentication disabled: FRIENDSD_HOST_TOKEN_KEY is not set")
	}
	module := friends.New(cfg, deps)
	module.Handler.AddHealthCheck("store", store.Ping)
	if redisClient != nil {
		module.Handler.AddHealthCheck("redis", redisClient.Health)
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	module.Handler.Register(r)
	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting friendsd", "addr", cfg.Addr, "store", cfg.Store)
		return httpserver.Run(gctx, srv, shutdownTimeout)
	})
	g.Go(func() error {
		return module.Sweeper.Run(gctx)
	})
	// The audit worker outlives the session flush so Left events are kept.
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(gctx))
	defer stopAudit()
	g.Go(func() error {
		return audit.NewWorker(auditStore, publisher.Events(), log).Run(auditCtx)
	})
	g.Go(func() error {
		defer stopAudit()
		<-gctx.Done()
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return module.Shutdown(flushCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Server) (relationshipStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return relationship.NewInMemory(), nil
	case config.StorePostgres:
		return relationship.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return relationship.OpenSQLite(ctx, cfg.SQLitePath)
	}
}

// openAuditStore produces events to Kafka when brokers are configured.
// Otherwise events are only logged.
func openAuditStore(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("audit events logged only: no kafka brokers configured")
		return audit.Discard, func() {}, nil
	}
	sink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.Kafka.Topic)
	return sink, sink.Close, nil
}

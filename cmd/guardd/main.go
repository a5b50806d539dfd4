// Package main provides the unified launchpad server:
// - HTTP API for launch lifecycle and purchase admission
// - Event fanout to persistent storage, AMQP, and a WebSocket feed
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/rthefinder/USDG/internal/api"
	"github.com/rthefinder/USDG/internal/authority"
	"github.com/rthefinder/USDG/internal/launchpad"
	"github.com/rthefinder/USDG/internal/notify"
	"github.com/rthefinder/USDG/internal/storage"
	chstore "github.com/rthefinder/USDG/internal/storage/clickhouse"
	"github.com/rthefinder/USDG/internal/storage/memory"
	"github.com/rthefinder/USDG/internal/storage/migrations"
	pgstore "github.com/rthefinder/USDG/internal/storage/postgres"
)

type config struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	ClickhouseDSN string `env:"CLICKHOUSE_DSN"`
	AMQPURL       string `env:"AMQP_URL"`
	AMQPQueue     string `env:"AMQP_QUEUE" envDefault:"launch_events"`
	RPCEndpoint   string `env:"SOLANA_RPC_ENDPOINT"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"true"`
	FeedEnabled   bool   `env:"FEED_ENABLED" envDefault:"true"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("parse environment")
	}

	log := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores: PostgreSQL for launch state, ClickHouse for the event
	// history. Without DSNs everything runs in memory.
	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage init")
	}
	defer cleanup()

	// Event fanout. The store sink always runs so /verification and
	// /stats can read purchase history back.
	fan := notify.NewFanout(log)
	fan.Add("store", notify.NewStore(stores.events))

	var hub *notify.Hub
	if cfg.FeedEnabled {
		hub = notify.NewHub(log)
		defer hub.Close()
		fan.Add("feed", hub)
	}

	if cfg.AMQPURL != "" {
		pub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			log.WithError(err).Fatal("amqp connect")
		}
		defer pub.Close()
		fan.Add("amqp", pub)
		log.WithField("queue", cfg.AMQPQueue).Info("amqp publisher enabled")
	}

	var checker authority.Checker
	var revoker authority.Revoker = authority.NewStatic()
	if cfg.RPCEndpoint != "" {
		checker = authority.NewRPCChecker(cfg.RPCEndpoint)
		log.WithField("endpoint", cfg.RPCEndpoint).Info("on-chain authority checks enabled")
	}

	svc := launchpad.NewService(launchpad.Config{
		Launches:     stores.launches,
		Participants: stores.participants,
		Liquidity:    stores.liquidity,
		Purchases:    stores.purchases,
		Revoker:      revoker,
		Sink:         fan,
		Log:          log,
	})

	srv := api.NewServer(api.ServerConfig{
		Service: svc,
		Events:  stores.events,
		Hub:     hub,
		Checker: checker,
		Log:     log,
	})

	// Graceful shutdown on SIGINT/SIGTERM; a second signal forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("shutting down")
		cancel()

		select {
		case <-sigCh:
			log.Warn("second signal, forcing exit")
			os.Exit(1)
		case <-time.After(cfg.ShutdownTimeout):
			log.Warn("shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("http server")
	}
	log.Info("shutdown complete")
}

type allStores struct {
	launches     storage.LaunchStore
	participants storage.ParticipantStore
	liquidity    storage.LiquidityStore
	purchases    storage.PurchaseWriter
	events       storage.EventStore
}

// buildStores wires persistent backends when DSNs are configured and
// runs their migrations, falling back to memory otherwise. The cleanup
// func closes whatever was opened.
func buildStores(ctx context.Context, cfg config, log *logrus.Entry) (*allStores, func(), error) {
	launchMem := memory.NewLaunchStore()
	participantMem := memory.NewParticipantStore()
	stores := &allStores{
		launches:     launchMem,
		participants: participantMem,
		liquidity:    memory.NewLiquidityStore(),
		purchases:    memory.NewPurchaseWriter(launchMem, participantMem),
		events:       memory.NewEventStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, cleanup, err
		}
		stores.launches = pgstore.NewLaunchStore(pool)
		stores.participants = pgstore.NewParticipantStore(pool)
		stores.liquidity = pgstore.NewLiquidityStore(pool)
		stores.purchases = pgstore.NewPurchaseWriter(pool)
		log.Info("postgres storage enabled")
	} else {
		log.Warn("POSTGRES_DSN not set, launch state is in-memory only")
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { conn.Close() })
		stores.events = chstore.NewEventStore(conn)
		log.Info("clickhouse event history enabled")
	} else {
		log.Warn("CLICKHOUSE_DSN not set, event history is in-memory only")
	}

	return stores, cleanup, nil
}

func newLogger(cfg config) *logrus.Entry {
	l := logrus.New()
	if cfg.LogJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return logrus.NewEntry(l).WithField("service", "guardd")
}

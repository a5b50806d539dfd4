// Package main provides the background worker. On cron schedules it
// refreshes verification reports (including on-chain authority checks)
// and launch stats for recent launches, writing the results as JSON
// under the output directory.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rthefinder/USDG/internal/authority"
	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/stats"
	"github.com/rthefinder/USDG/internal/storage"
	chstore "github.com/rthefinder/USDG/internal/storage/clickhouse"
	"github.com/rthefinder/USDG/internal/storage/migrations"
	pgstore "github.com/rthefinder/USDG/internal/storage/postgres"
	"github.com/rthefinder/USDG/internal/verify"
)

type config struct {
	PostgresDSN   string `env:"POSTGRES_DSN,required"`
	ClickhouseDSN string `env:"CLICKHOUSE_DSN,required"`
	RPCEndpoint   string `env:"SOLANA_RPC_ENDPOINT"`
	OutputDir     string `env:"OUTPUT_DIR" envDefault:"output"`
	MetricsAddr   string `env:"METRICS_ADDR" envDefault:":9091"`
	LaunchLimit   int    `env:"LAUNCH_LIMIT" envDefault:"100"`
	VerifySpec    string `env:"VERIFY_SCHEDULE" envDefault:"@every 5m"`
	StatsSpec     string `env:"STATS_SCHEDULE" envDefault:"@every 1m"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"true"`
}

type worker struct {
	launches storage.LaunchStore
	events   storage.EventStore
	checker  authority.Checker
	limit    int
	out      string
	log      *logrus.Entry
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("parse environment")
	}

	log := newLogger(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres connect")
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("postgres migrations")
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		log.WithError(err).Fatal("clickhouse connect")
	}
	defer conn.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.WithError(err).Fatal("create output dir")
	}

	w := &worker{
		launches: pgstore.NewLaunchStore(pool),
		events:   chstore.NewEventStore(conn),
		limit:    cfg.LaunchLimit,
		out:      cfg.OutputDir,
		log:      log,
	}
	if cfg.RPCEndpoint != "" {
		w.checker = authority.NewRPCChecker(cfg.RPCEndpoint)
		log.WithField("endpoint", cfg.RPCEndpoint).Info("on-chain authority checks enabled")
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.VerifySpec, func() { w.runVerify(ctx) }); err != nil {
		log.WithError(err).Fatal("invalid verify schedule")
	}
	if _, err := c.AddFunc(cfg.StatsSpec, func() { w.runStats(ctx) }); err != nil {
		log.WithError(err).Fatal("invalid stats schedule")
	}
	c.Start()

	go func() {
		http.Handle("/metrics", observability.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
			log.WithError(err).Error("metrics server")
		}
	}()

	// One immediate pass so output exists before the first tick.
	w.runVerify(ctx)
	w.runStats(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("shutting down")
	cancel()
	<-c.Stop().Done()
	log.Info("shutdown complete")
}

// runVerify regenerates the verification report for each recent launch.
func (w *worker) runVerify(ctx context.Context) {
	start := time.Now()
	defer func() {
		observability.DefaultMetrics.WorkerRunDuration.
			WithLabelValues("verify").Observe(time.Since(start).Seconds())
	}()

	launches, err := w.launches.List(ctx, w.limit)
	if err != nil {
		w.log.WithError(err).Error("list launches")
		return
	}

	for _, l := range launches {
		if ctx.Err() != nil {
			return
		}
		report, err := w.buildReport(ctx, l)
		if err != nil {
			w.log.WithError(err).WithField("launch_id", l.LaunchID).Error("verification refresh")
			continue
		}
		if err := w.writeJSON(l.LaunchID, "verification.json", report); err != nil {
			w.log.WithError(err).WithField("launch_id", l.LaunchID).Error("write report")
			continue
		}
		w.log.WithFields(logrus.Fields{
			"launch_id": l.LaunchID,
			"overall":   report.Overall,
		}).Info("verification refreshed")
	}
}

// runStats recomputes participation stats for each recent launch.
func (w *worker) runStats(ctx context.Context) {
	start := time.Now()
	defer func() {
		observability.DefaultMetrics.WorkerRunDuration.
			WithLabelValues("stats").Observe(time.Since(start).Seconds())
	}()

	launches, err := w.launches.List(ctx, w.limit)
	if err != nil {
		w.log.WithError(err).Error("list launches")
		return
	}

	for _, l := range launches {
		if ctx.Err() != nil {
			return
		}
		purchases, err := w.purchaseHistory(ctx, l.LaunchID)
		if err != nil {
			w.log.WithError(err).WithField("launch_id", l.LaunchID).Error("stats refresh")
			continue
		}
		result := stats.Compute(l.LaunchID, purchases, l.Config.Distribution.TotalSupply, time.Now().Unix())
		if result == nil {
			continue
		}
		if err := w.writeJSON(l.LaunchID, "stats.json", result); err != nil {
			w.log.WithError(err).WithField("launch_id", l.LaunchID).Error("write stats")
			continue
		}
		observability.DefaultMetrics.StatsRefreshes.Inc()
	}
}

func (w *worker) buildReport(ctx context.Context, l *domain.Launch) (*verify.Report, error) {
	purchases, err := w.purchaseHistory(ctx, l.LaunchID)
	if err != nil {
		return nil, err
	}

	authorities := verify.Authorities{}
	if w.checker != nil {
		state, err := w.checker.GetMintAuthorities(ctx, l.TokenMint)
		if err != nil {
			w.log.WithError(err).WithField("token_mint", l.TokenMint).Warn("authority check failed")
		} else {
			observability.DefaultMetrics.AuthorityChecks.Inc()
			authorities = verify.Authorities{
				MintAuthority:   state.MintAuthority,
				FreezeAuthority: state.FreezeAuthority,
				Verified:        true,
				CheckedAt:       time.Now().Unix(),
			}
		}
	}

	return verify.GenerateReport(l.LaunchID, l.Config, purchases, authorities, "worker", time.Now().Unix()), nil
}

func (w *worker) purchaseHistory(ctx context.Context, launchID string) ([]verify.Purchase, error) {
	events, err := w.events.GetPurchases(ctx, launchID)
	if err != nil {
		return nil, err
	}
	purchases := make([]verify.Purchase, 0, len(events))
	for _, e := range events {
		purchases = append(purchases, verify.Purchase{
			Wallet:    e.Wallet,
			Amount:    e.Amount,
			Timestamp: e.Timestamp,
		})
	}
	return purchases, nil
}

// writeJSON writes v to <out>/<launchID>/<name> atomically via rename.
func (w *worker) writeJSON(launchID, name string, v interface{}) error {
	dir := filepath.Join(w.out, launchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := filepath.Join(dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
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
	return logrus.NewEntry(l).WithField("service", "worker")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/myat555/WildfireNowcast/internal/alerts"
	"github.com/myat555/WildfireNowcast/internal/api"
	"github.com/myat555/WildfireNowcast/internal/assets"
	"github.com/myat555/WildfireNowcast/internal/config"
	"github.com/myat555/WildfireNowcast/internal/engine"
	"github.com/myat555/WildfireNowcast/internal/ingest"
	"github.com/myat555/WildfireNowcast/internal/logging"
	"github.com/myat555/WildfireNowcast/internal/model"
	"github.com/myat555/WildfireNowcast/internal/notify"
	"github.com/myat555/WildfireNowcast/internal/observability"
	"github.com/myat555/WildfireNowcast/internal/pipeline"
	"github.com/myat555/WildfireNowcast/internal/results"
	"github.com/myat555/WildfireNowcast/internal/scheduler"
	"github.com/myat555/WildfireNowcast/internal/storage"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "nowcast.yaml", "path to config file")
	flag.Parse()

	manager, err := config.NewManager(config.ResolvePath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := manager.Get()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting nowcast", "version", version, "config", manager.Path())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := assets.Load(cfg.Catalog, logger)
	if err != nil {
		logger.Error("catalog load failed", "err", err)
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			logger.Error("storage schema init failed", "err", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()
	alertsStore := alerts.NewStore(cfg.Alerts.StoreLimit)
	resultsStore := results.NewStore(cfg.Results.StoreLimit)

	index := engine.NewGridIndex(
		cfg.Alerting.GridCellDeg,
		cfg.Alerting.SuppressionRadiusKm,
		time.Duration(cfg.Alerting.SuppressionWindow),
		clock,
	)
	notifier := notify.NewLogNotifier(logger)
	eng := engine.NewEngine(index, notifier, alertsStore, store, metrics, logger, clock)
	skips := &ingest.SkipTally{}
	pipe := pipeline.New(cfg.Assessment, catalog, eng, resultsStore, store, metrics, skips, logger, clock)

	hotspots := make(chan model.Hotspot, cfg.Ingest.ChannelBuffer)
	parser := ingest.NewParser()
	ingest.StartKafka(ctx, manager, parser, hotspots, skips, logger)
	ingest.StartFileTail(ctx, manager, hotspots, skips, logger)
	ingest.StartREST(ctx, manager, hotspots, skips, logger)

	runner := pipeline.NewRunner(pipe, hotspots, cfg.Assessment.BatchSize, logger)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(logger)
		if err := sched.Add(cfg.Scheduler.Spec, func() {
			runner.Tick(ctx)
		}); err != nil {
			logger.Error("scheduler setup failed", "spec", cfg.Scheduler.Spec, "err", err)
			os.Exit(1)
		}
		if err := sched.Add("@every 10m", func() {
			if err := catalog.Reload(manager.Get().Catalog, logger); err != nil {
				logger.Warn("catalog reload failed", "err", err)
			}
		}); err != nil {
			logger.Error("scheduler setup failed", "err", err)
			os.Exit(1)
		}
		sched.Start()
	}

	api.Start(ctx, manager, resultsStore, alertsStore, store, logger, version)

	stop := make(chan struct{})
	go manager.Watch(3*time.Second, func(next *config.Config) {
		logger.Info("config reloaded", "path", manager.Path())
	}, func(err error) {
		logger.Warn("config reload failed", "err", err)
	}, stop)

	<-ctx.Done()
	close(stop)
	logger.Info("shutting down")
	if sched != nil {
		<-sched.Stop().Done()
	}
	// Drain whatever arrived since the last tick before exiting.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	runner.Tick(drainCtx)
	drainCancel()
	logger.Info("shutdown complete")
}

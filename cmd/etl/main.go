package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tephra-map-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/tephra-map-etl/internal/adapter/kafka"
	"github.com/couchcryptid/tephra-map-etl/internal/adapter/plotmap"
	"github.com/couchcryptid/tephra-map-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/tephra-map-etl/internal/adapter/tallychart"
	"github.com/couchcryptid/tephra-map-etl/internal/basemap"
	"github.com/couchcryptid/tephra-map-etl/internal/config"
	"github.com/couchcryptid/tephra-map-etl/internal/observability"
	"github.com/couchcryptid/tephra-map-etl/internal/pipeline"
)

type closer interface {
	Close() error
}

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "path", cfg.OutputDir, "error", err)
		return 1
	}

	proj, err := basemap.NewLambertConformal(basemap.NorthAtlantic())
	if err != nil {
		logger.Error("failed to build map projection", "error", err)
		return 1
	}

	renderer, err := plotmap.NewRenderer(proj, cfg.OutputDir, cfg.MapDPI, logger)
	if err != nil {
		logger.Error("failed to build map renderer", "error", err)
		return 1
	}

	sinks := []pipeline.SummarySink{csvfile.NewSummaryWriter(cfg.SummaryPath, logger)}
	var closers []closer

	if cfg.SummaryDBPath != "" {
		store, err := sqlite.NewSummaryStore(cfg.SummaryDBPath, logger)
		if err != nil {
			logger.Error("failed to open summary database", "path", cfg.SummaryDBPath, "error", err)
			return 1
		}
		sinks = append(sinks, store)
		closers = append(closers, store)
		logger.Info("sqlite summary store enabled", "path", cfg.SummaryDBPath)
	}

	if cfg.KafkaEnabled() {
		publisher := kafkaadapter.NewSummaryPublisher(cfg.KafkaBrokers, cfg.KafkaSummaryTopic, clock, logger)
		sinks = append(sinks, publisher)
		closers = append(closers, publisher)
		logger.Info("kafka summary publisher enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSummaryTopic)
	}

	opts := []pipeline.Option{pipeline.WithClock(clock)}
	if cfg.CompositionCharts {
		opts = append(opts, pipeline.WithTallyRenderer(tallychart.NewRenderer(cfg.OutputDir, logger)))
	}

	p := pipeline.New(
		csvfile.NewLoader(logger),
		renderer,
		sinks,
		logger,
		metrics,
		opts...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, runErr := p.Run(ctx, pipeline.RunSpec{
		Paths:        cfg.InputFiles,
		Tephras:      cfg.Tephras,
		Compositions: cfg.Compositions,
	})
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	closeAll(closers, cfg.ShutdownTimeout, logger)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}

// closeAll closes the optional sinks, giving up after timeout so a stuck
// broker cannot hold the process open.
func closeAll(closers []closer, timeout time.Duration, logger *slog.Logger) {
	if len(closers) == 0 {
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Error("sink close error", "error", err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("timed out closing summary sinks", "timeout", timeout)
	}
}

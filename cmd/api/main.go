package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"example.com/runtracker/internal/activities"
	"example.com/runtracker/internal/api"
	"example.com/runtracker/internal/config"
	"example.com/runtracker/internal/logging"
	"example.com/runtracker/internal/mediator"
	"example.com/runtracker/internal/outbox"
	"example.com/runtracker/internal/persistence"
	httptransport "example.com/runtracker/internal/transport/http"
	"example.com/runtracker/internal/validation"
	"example.com/runtracker/internal/workouts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("runtracker stopped", "error", err)
	}
}

func run(cfg config.Config, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persistence.Open(ctx, persistence.Config{Driver: cfg.DatabaseDriver, URL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.Close()
	prometheus.MustRegister(collectors.NewDBStatsCollector(db.DB(), "runtracker"))

	if cfg.IsProduction() {
		err = db.Migrate(ctx)
	} else {
		log.Warn("recreating database schema", "environment", cfg.Environment)
		err = db.ResetSchema(ctx)
	}
	if err != nil {
		return err
	}

	validator, err := validation.New(validation.DefaultConfig(), activities.KindRule)
	if err != nil {
		return fmt.Errorf("build validator: %w", err)
	}

	m := mediator.New(
		mediator.Logging(log),
		mediator.Metrics(),
		mediator.Validation(validator),
	)
	if err := errors.Join(
		activities.Register(m, persistence.NewActivityStore(db)),
		workouts.Register(m, persistence.NewWorkoutStore(db)),
	); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	handler, err := api.NewHandler(m, log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(log)
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("runtracker listening", "address", cfg.HTTPAddress, "driver", db.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		dispatcher := outbox.NewDispatcher(db.SQL, db.DialectName, producer, log, outbox.DispatcherConfig{
			PollInterval: cfg.OutboxPollInterval,
			BatchSize:    cfg.OutboxBatchSize,
			LockRows:     db.Driver == persistence.DriverPostgres,
		})
		g.Go(func() error {
			return dispatcher.Start(gctx)
		})
	} else {
		log.Info("outbox dispatcher disabled", "reason", "KAFKA_BROKERS is empty")
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

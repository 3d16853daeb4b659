package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/mimimart/checkout/internal/messaging"
	"github.com/mimimart/checkout/internal/orders"
	"github.com/mimimart/checkout/internal/payments"
	"github.com/mimimart/checkout/internal/reconciler"
	"github.com/mimimart/checkout/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "reconciler", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(kafkaBrokers, ","), messaging.TopicPaymentExpired)
		defer func() { _ = producer.Close() }()
	}

	interval := 60 * time.Second
	if v := os.Getenv("SWEEP_INTERVAL_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			logger.Error("invalid SWEEP_INTERVAL_SECONDS", "value", v)
			os.Exit(1)
		}
		interval = time.Duration(seconds) * time.Second
	}

	var publisher reconciler.EventPublisher
	if producer != nil {
		publisher = producer
	}
	rec := reconciler.New(payments.NewRepository(db), orders.NewRepository(db), publisher, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting payment reconciler", "interval", interval.String())

	// One sweep at a time; the ticker only fires again after the previous
	// sweep returned.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if _, err := rec.Sweep(ctx, time.Now().UTC()); err != nil {
				logger.Error("sweep failed", "error", err)
			}
		}
	}
}

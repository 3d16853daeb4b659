package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mimimart/checkout/internal/messaging"
	"github.com/mimimart/checkout/internal/telemetry"
	"github.com/mimimart/checkout/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "notification-worker", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	notifierURL := os.Getenv("NOTIFIER_SERVICE_URL")
	if notifierURL == "" {
		logger.Error("NOTIFIER_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")

	orderCreated := messaging.NewConsumer(brokers, messaging.TopicOrderCreated, "notification-worker")
	defer func() { _ = orderCreated.Close() }()

	paymentExpired := messaging.NewConsumer(brokers, messaging.TopicPaymentExpired, "notification-worker")
	defer func() { _ = paymentExpired.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	handler := worker.NewNotificationHandler(notifierURL, httpClient, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notification worker", "brokers", brokers)

	errCh := make(chan error, 2)
	go func() { errCh <- orderCreated.Consume(ctx, handler.HandleOrderCreated) }()
	go func() { errCh <- paymentExpired.Consume(ctx, handler.HandlePaymentExpired) }()

	if err := <-errCh; err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mimimart/checkout/internal/gateway"
	"github.com/mimimart/checkout/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	checkoutServiceURL := os.Getenv("CHECKOUT_SERVICE_URL")
	if checkoutServiceURL == "" {
		logger.Error("CHECKOUT_SERVICE_URL is required")
		os.Exit(1)
	}

	adminKey := os.Getenv("ADMIN_API_KEY")
	if adminKey == "" {
		logger.Error("ADMIN_API_KEY is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	checkoutProxy := gateway.NewServiceProxy(checkoutServiceURL, httpClient)
	handler := gateway.NewHandler(checkoutProxy, adminKey, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/cart", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/cart/", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/guest/cart", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/guest/cart/", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/orders", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/orders/", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/payments/callback", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("/admin/", telemetry.WithHTTPRoute(handler.HandleAdmin))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "gateway",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting gateway", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

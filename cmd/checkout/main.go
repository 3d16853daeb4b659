package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mimimart/checkout/internal/cart"
	"github.com/mimimart/checkout/internal/checkout"
	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/identifier"
	"github.com/mimimart/checkout/internal/messaging"
	"github.com/mimimart/checkout/internal/orders"
	"github.com/mimimart/checkout/internal/payments"
	"github.com/mimimart/checkout/internal/products"
	"github.com/mimimart/checkout/internal/shipments"
	"github.com/mimimart/checkout/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "checkout", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("checkout", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

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

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		logger.Error("REDIS_URL environment variable is required")
		os.Exit(1)
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	var producer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(kafkaBrokers, ","), messaging.TopicOrderCreated)
		defer func() { _ = producer.Close() }()
	}

	workerID := envInt64(logger, "WORKER_ID", 0)
	snowflake, err := identifier.NewSnowflake(workerID)
	if err != nil {
		logger.Error("failed to create id generator", "error", err)
		os.Exit(1)
	}
	numbers := identifier.NewNumberGenerator(time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))

	guestCartTTL := time.Duration(envInt64(logger, "GUEST_CART_TTL_HOURS", 72)) * time.Hour

	memberCarts := cart.NewMemberRepository(db)
	guestCarts := cart.NewGuestRepository(redisClient, guestCartTTL)
	catalog := products.NewPostgresCatalog(db)
	orderRepo := orders.NewRepository(db)
	paymentRepo := payments.NewRepository(db)
	shipmentRepo := shipments.NewRepository(db)
	factory := orders.NewFactory(catalog, snowflake, numbers)

	shippingFee, err := domain.ParseMoney(envString("SHIPPING_FEE", "60.00"))
	if err != nil {
		logger.Error("invalid SHIPPING_FEE", "error", err)
		os.Exit(1)
	}

	checkoutCfg := checkout.Config{
		PaymentExpiryMinutes: int(envInt64(logger, "PAYMENT_EXPIRY_MINUTES", 30)),
		ShippingFee:          shippingFee,
	}

	var eventPublisher checkout.EventPublisher
	if producer != nil {
		eventPublisher = producer
	}
	checkoutService := checkout.NewService(db, memberCarts, factory, orderRepo, paymentRepo, shipmentRepo, snowflake, numbers, eventPublisher, logger, checkoutCfg)

	payGateway := payments.NewGateway(
		envString("ECPAY_MERCHANT_ID", "2000132"),
		envString("ECPAY_HASH_KEY", "5294y06JbISpM5x9"),
		envString("ECPAY_HASH_IV", "v77hoKGq4kWxNNIS"),
	)

	cartHandler := cart.NewHandler(memberCarts, guestCarts, logger)
	checkoutHandler := checkout.NewHandler(checkoutService, orderRepo, logger)
	paymentHandler := payments.NewHandler(db, paymentRepo, orderRepo, payGateway, logger)
	shipmentHandler := shipments.NewHandler(shipmentRepo, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /cart", telemetry.WithHTTPRoute(cartHandler.HandleGet))
	mux.HandleFunc("POST /cart/items", telemetry.WithHTTPRoute(cartHandler.HandleAddItem))
	mux.HandleFunc("PUT /cart/items/{productID}", telemetry.WithHTTPRoute(cartHandler.HandleUpdateItem))
	mux.HandleFunc("DELETE /cart/items/{productID}", telemetry.WithHTTPRoute(cartHandler.HandleRemoveItem))
	mux.HandleFunc("DELETE /cart", telemetry.WithHTTPRoute(cartHandler.HandleClear))
	mux.HandleFunc("POST /cart/merge", telemetry.WithHTTPRoute(cartHandler.HandleMerge))

	mux.HandleFunc("GET /guest/cart", telemetry.WithHTTPRoute(cartHandler.HandleGuestGet))
	mux.HandleFunc("POST /guest/cart/items", telemetry.WithHTTPRoute(cartHandler.HandleGuestAddItem))
	mux.HandleFunc("PUT /guest/cart/items/{productID}", telemetry.WithHTTPRoute(cartHandler.HandleGuestUpdateItem))
	mux.HandleFunc("DELETE /guest/cart/items/{productID}", telemetry.WithHTTPRoute(cartHandler.HandleGuestRemoveItem))

	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(checkoutHandler.HandleCreate))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(checkoutHandler.HandleList))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(checkoutHandler.HandleGet))
	mux.HandleFunc("POST /orders/{id}/cancel", telemetry.WithHTTPRoute(checkoutHandler.HandleCancel))

	mux.HandleFunc("GET /orders/{orderID}/payment", telemetry.WithHTTPRoute(paymentHandler.HandleGetByOrder))
	mux.HandleFunc("POST /orders/{orderID}/payment/params", telemetry.WithHTTPRoute(paymentHandler.HandleCreateParams))
	mux.HandleFunc("POST /payments/callback", telemetry.WithHTTPRoute(paymentHandler.HandleCallback))

	mux.HandleFunc("GET /orders/{orderID}/shipment", telemetry.WithHTTPRoute(shipmentHandler.HandleGetByOrder))
	mux.HandleFunc("POST /admin/orders/{orderID}/shipment/ship", telemetry.WithHTTPRoute(shipmentHandler.HandleRecordShipping))
	mux.HandleFunc("PATCH /admin/orders/{orderID}/shipment/status", telemetry.WithHTTPRoute(shipmentHandler.HandleUpdateStatus))
	mux.HandleFunc("POST /admin/orders/{orderID}/shipment/delivered", telemetry.WithHTTPRoute(shipmentHandler.HandleMarkDelivered))

	mux.Handle("GET /metrics", metricsHandler)

	port := envString("PORT", "8080")

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "checkout",
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
		logger.Info("starting checkout service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(logger *slog.Logger, key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.Error("invalid integer environment variable", "key", key, "value", v)
		os.Exit(1)
	}
	return n
}

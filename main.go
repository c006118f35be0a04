package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-raffles/internal/auth"
	"ms-raffles/internal/clients"
	clients_api "ms-raffles/internal/clients/api"
	"ms-raffles/internal/config"
	"ms-raffles/internal/kafka"
	"ms-raffles/internal/logger"
	"ms-raffles/internal/notify"
	"ms-raffles/internal/orders"
	"ms-raffles/internal/orders/order_api"
	rediswrap "ms-raffles/internal/orders/redis"
	"ms-raffles/internal/proofs"
	"ms-raffles/internal/raffles"
	raffles_api "ms-raffles/internal/raffles/api"
	raffles_db "ms-raffles/internal/raffles/db"
	"ms-raffles/internal/settings"
	settings_api "ms-raffles/internal/settings/api"
	tickets_db "ms-raffles/internal/tickets/db"
	"ms-raffles/internal/tickets/qr"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	_, err = redisClient.ConfigSet(ctx, "notify-keyspace-events", "Ex").Result()
	if err != nil {
		logger.Warn("REDIS", fmt.Sprintf("Failed to enable keyspace notifications: %v", err))
	}

	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return bunDB, redisClient
}

// subscribeLockExpiry logs advisory number locks that expired before their
// checkout finished, a signal of abandoned purchases.
func subscribeLockExpiry(rdb *redis.Client, logger *logger.Logger) {
	ctx := context.Background()
	pubsub := rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	logger.Info("REDIS", "Subscribed to Redis keyevent expired notifications")

	go func() {
		for msg := range pubsub.Channel() {
			if strings.HasPrefix(msg.Payload, "number_lock:") {
				logger.Warn("ALLOCATION", fmt.Sprintf("Number lock expired before checkout completed: %s", msg.Payload))
			}
		}
	}()
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Raffle Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	var producer *kafka.Producer
	var bridge *notify.Bridge
	emitter := notify.NewOrderEventEmitter()

	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))

		requiredTopics := []string{
			cfg.Kafka.Topics.TicketInserted,
			cfg.Kafka.Topics.OrderApproved,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}

		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketInserted, cfg.Kafka.Topics.OrderApproved)
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketInserted, cfg.Kafka.GroupID)
		bridge = notify.NewBridge(consumer, emitter, logger)
		go bridge.Start()
		defer bridge.Close()
	} else {
		logger.Warn("KAFKA", "Kafka disabled, admin notifications will not be delivered")
	}

	var uploader orders.ProofUploader
	var resolver order_api.ProofResolver
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		tg, err := proofs.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn("TELEGRAM", fmt.Sprintf("Proof storage unavailable: %v", err))
		} else {
			uploader = tg
			resolver = tg
		}
	} else {
		logger.Warn("TELEGRAM", "Telegram disabled, payment proofs will not be stored")
	}

	ticketStore := tickets_db.New(bunDB)
	raffleStore := raffles_db.New(bunDB)
	settingsDB := settings.New(bunDB)

	var events orders.EventPublisher
	if producer != nil {
		events = producer
	}

	orderService := orders.NewOrderService(
		ticketStore,
		raffleStore,
		rediswrap.NewRedis(redisClient),
		events,
		uploader,
		logger,
	)
	raffleService := raffles.NewService(raffleStore, logger)
	clientService := clients.NewService(ticketStore, raffleStore)

	qrGen := qr.NewQRGenerator(os.Getenv("QR_SECRET"))

	orderHandler := order_api.NewHandler(orderService, qrGen, resolver, logger)
	sseHandler := order_api.NewSSEHandler(logger, emitter)
	raffleHandler := raffles_api.NewHandler(raffleService, logger)
	clientHandler := clients_api.NewHandler(clientService, logger)
	settingsHandler := settings_api.NewHandler(settingsDB, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/raffles", raffleHandler.List)
		r.Get("/raffles/{raffleID}", raffleHandler.Get)
		r.Get("/raffles/{raffleID}/availability", orderHandler.Availability)
		r.Get("/raffles/{raffleID}/verify/{cedula}", orderHandler.VerifyByCedula)
		r.Get("/verify/{cedula}", orderHandler.VerifyGlobal)
		r.Post("/raffles/{raffleID}/orders", orderHandler.PlaceOrder)
		r.Post("/orders/{orderID}/payments", orderHandler.CompletePayment)
		r.Get("/orders/{orderID}/qr", orderHandler.OrderQR)
		r.Get("/orders/{orderID}/ticket", orderHandler.OrderTicket)
		r.Get("/settings", settingsHandler.GetSettings)
		r.Get("/payment-methods", settingsHandler.ListPaymentMethods)
	})
	logger.Info("ROUTER", "Public storefront routes registered under /api/public")

	// --- Admin Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Use(auth.RequireAdmin)
		logger.Info("AUTH", "JWT middleware applied to admin API routes")

		r.Route("/api/admin", func(r chi.Router) {
			r.Route("/raffles", func(r chi.Router) {
				r.Post("/", raffleHandler.Create)
				r.Put("/{raffleID}", raffleHandler.Update)
				r.Patch("/{raffleID}/status", raffleHandler.SetStatus)
				r.Delete("/{raffleID}", raffleHandler.Delete)
				r.Get("/{raffleID}/orders", orderHandler.ListOrders)
				r.Get("/{raffleID}/stats", orderHandler.Stats)
				r.Post("/{raffleID}/orders/manual", orderHandler.AdminAddOrder)
				r.Get("/{raffleID}/orders/stream", sseHandler.HandleRaffleOrders)
			})
			logger.Info("ROUTER", "Admin raffle routes registered under /api/admin/raffles")

			r.Route("/orders", func(r chi.Router) {
				r.Patch("/{orderID}/status", orderHandler.ApplyStatus)
				r.Post("/{orderID}/undo", orderHandler.UndoStatus)
				r.Delete("/{orderID}", orderHandler.DeleteOrder)
			})
			r.Get("/proofs", orderHandler.ResolveProof)
			logger.Info("ROUTER", "Admin order routes registered under /api/admin/orders")

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", clientHandler.List)
				r.Get("/{cedula}", clientHandler.Get)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Put("/", settingsHandler.SaveSettings)
				r.Post("/payment-methods", settingsHandler.CreatePaymentMethod)
				r.Put("/payment-methods/{methodID}", settingsHandler.UpdatePaymentMethod)
				r.Delete("/payment-methods/{methodID}", settingsHandler.DeletePaymentMethod)
			})
			logger.Info("ROUTER", "Admin settings routes registered under /api/admin/settings")
		})
	})

	// No write timeout: the SSE stream endpoint holds its response open.
	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	logger.Info("REDIS", "Starting number lock expiry subscription")
	subscribeLockExpiry(redisClient, logger)

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Raffle Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("KAFKA", fmt.Sprintf("Failed to close producer: %v", err))
		}
	}

	logger.Info("APP", "Service stopped cleanly")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/cache"
	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/config"
	"github.com/cx-tal-miterani/rental-booking-system/internal/events"
	"github.com/cx-tal-miterani/rental-booking-system/internal/handlers"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/cx-tal-miterani/rental-booking-system/internal/router"
	"github.com/cx-tal-miterani/rental-booking-system/internal/service"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/cx-tal-miterani/rental-booking-system/internal/websocket"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache and sessions live in Redis when configured
	var respCache cache.Cache = cache.NewMemoryCache(cfg.CacheTTL)
	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		respCache = cache.NewRedisCache(rdb, cfg.CacheTTL)
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		log.Printf("Using Redis at %s for cache and sessions", cfg.RedisAddr)
	}

	api := backend.New(cfg.BackendURL, cfg.BackendTimeout, backend.WithCache(respCache))

	// Payment journal
	var paymentJournal journal.Journal = journal.NewMemory()
	if cfg.DatabaseURL != "" {
		pool, err := journal.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		repo := journal.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate journal: %v", err)
		}
		paymentJournal = repo
	}

	// Event stream
	var publisher events.Publisher = events.Discard{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, 1024)
		producer.Start(ctx)
		publisher = producer
	}

	hub := websocket.NewHub()
	go hub.Run()

	// Payments run in-process or on the checkout worker
	var payments reservation.Payments
	paymentTimeout := cfg.PaymentTimeout
	switch cfg.CheckoutMode {
	case config.CheckoutModeWorkflow:
		temporalClient, err := client.Dial(client.Options{
			HostPort: cfg.TemporalHost,
		})
		if err != nil {
			log.Fatalf("Failed to create Temporal client: %v", err)
		}
		defer temporalClient.Close()
		// the worker journals and publishes; only the pages are told here
		wp := service.NewWorkflowPayments(temporalClient, cfg.Currency, service.NewCheckoutObserver(hub, nil, nil))
		// a payment request must outlive the wait for the workflow
		if wait := wp.MaxWait() + cfg.BackendTimeout; paymentTimeout < wait {
			paymentTimeout = wait
		}
		payments = wp
		log.Printf("Checkouts run on Temporal at %s", cfg.TemporalHost)
	default:
		var opts []checkout.DirectOption
		opts = append(opts, checkout.WithObserver(service.NewCheckoutObserver(hub, paymentJournal, publisher)))
		gateway := newGateway(cfg, api)
		if cfg.PaymentProvider == config.PaymentProviderStripe {
			opts = append(opts, checkout.ConfirmAfterCapture())
		}
		payments = checkout.NewDirect(api, gateway, cfg.Currency, opts...)
	}

	// Initialize services
	flows := reservation.NewRegistry(api, payments)
	bookingService := service.NewBookingService(api, flows)
	adminService := service.NewAdminService(api, paymentJournal, publisher)

	// Initialize handlers
	h := handlers.NewHandler(bookingService, adminService, hub)

	// Create router
	r := router.SetupRouter(h, router.Config{
		Sessions:       sessions,
		RequestTimeout: 2 * cfg.BackendTimeout,
		PaymentTimeout: paymentTimeout,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.SecureCookies,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: paymentTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API Server starting on port %s", cfg.Port)
		log.Printf("Backend at %s (timeout %s), payments via %s", cfg.BackendURL, cfg.BackendTimeout, cfg.PaymentProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if producer != nil {
		producer.Close()
		cancel()
		producer.WaitClosed()
	}

	log.Println("Server stopped")
}

func newGateway(cfg *config.Config, api *backend.Client) checkout.Gateway {
	if cfg.PaymentProvider == config.PaymentProviderStripe {
		log.Println("Using Stripe payment intents")
		return checkout.NewStripeGateway(cfg.StripeSecretKey)
	}
	return checkout.NewBackendGateway(api)
}

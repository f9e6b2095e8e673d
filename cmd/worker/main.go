package main

import (
	"context"
	"log"

	"github.com/cx-tal-miterani/rental-booking-system/internal/activities"
	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/config"
	"github.com/cx-tal-miterani/rental-booking-system/internal/events"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/cx-tal-miterani/rental-booking-system/internal/workflows"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	var paymentJournal journal.Journal = journal.NewMemory()
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
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
		log.Println("Connected to database")
	} else {
		log.Println("DATABASE_URL not set, journaling in memory")
	}

	var publisher events.Publisher = events.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, "rental-worker", 1024)
		producer.Start(ctx)
		defer producer.WaitClosed()
		defer producer.Close()
		publisher = producer
	}

	// The worker talks to the backend with its own service token
	svcSession := session.NewService("worker", session.NewMemoryStore())
	if cfg.BackendToken != "" {
		if err := svcSession.SetToken(ctx, cfg.BackendToken); err != nil {
			log.Fatalf("Failed to store service token: %v", err)
		}
	}
	api := backend.New(cfg.BackendURL, cfg.BackendTimeout)

	var gateway checkout.Gateway = checkout.NewBackendGateway(api)
	if cfg.PaymentProvider == config.PaymentProviderStripe {
		gateway = checkout.NewStripeGateway(cfg.StripeSecretKey)
	}

	// Connect to Temporal
	log.Printf("Connecting to Temporal at %s...", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()
	log.Println("Connected to Temporal")

	// Create worker
	w := worker.New(c, workflows.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(workflows.CheckoutWorkflow)

	// Register activities
	w.RegisterActivity(&activities.Activities{
		Reservations:        api,
		Gateway:             gateway,
		Journal:             paymentJournal,
		Events:              publisher,
		Session:             svcSession,
		ConfirmAfterCapture: cfg.PaymentProvider == config.PaymentProviderStripe,
	})

	// Start worker
	log.Println("Starting Temporal worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}

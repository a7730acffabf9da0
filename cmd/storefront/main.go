package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vibecommerce/storefront/internal/cart"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/checkout"
	"github.com/vibecommerce/storefront/internal/config"
	"github.com/vibecommerce/storefront/internal/db"
	"github.com/vibecommerce/storefront/internal/events"
	"github.com/vibecommerce/storefront/internal/httpapi"
	"github.com/vibecommerce/storefront/internal/sequence"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	catalogRepo := catalog.NewPostgresRepository(pool)
	seeded, err := catalogRepo.Seed(ctx)
	if err != nil {
		logger.Fatalf("seed catalog: %v", err)
	}
	if seeded > 0 {
		logger.Printf("seeded catalog with %d products", seeded)
	}

	cartRepo := cart.NewPostgresRepository(pool)
	seqRepo := sequence.NewRepository(pool)

	var publisher checkout.EventPublisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatalf("connect to broker: %v", err)
		}
		defer conn.Close()

		rabbit, err := events.NewRabbitPublisher(conn, seqRepo)
		if err != nil {
			logger.Fatalf("create event publisher: %v", err)
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	cartSvc := cart.NewService(cartRepo, catalogRepo)
	checkoutSvc := checkout.NewService(cartRepo, seqRepo, publisher, logger)

	handler := httpapi.NewHandler(catalogRepo, cartSvc, checkoutSvc, logger)
	router := httpapi.NewRouter(handler, cfg.CORSAllowOrigins, cfg.DefaultUserID)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
}

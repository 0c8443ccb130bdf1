package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"simple-store/internal/config"
	"simple-store/internal/db"
	"simple-store/internal/events"
	"simple-store/internal/httpserver"
	"simple-store/internal/migrate"
	orderrepo "simple-store/internal/repository/order"
	productrepo "simple-store/internal/repository/product"
	userrepo "simple-store/internal/repository/user"
	"simple-store/internal/seed"
	ordersvc "simple-store/internal/service/order"
	productsvc "simple-store/internal/service/product"
	usersvc "simple-store/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		if err := migrate.Apply(ctx, dbpool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Printf("migrations applied")
	}
	if cfg.SeedOnStart {
		inserted, err := seed.Apply(ctx, dbpool)
		if err != nil {
			logger.Fatalf("seed catalog: %v", err)
		}
		logger.Printf("seed applied inserted=%d", inserted)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatalf("connect to rabbitmq: %v", err)
		}
		defer conn.Close()
		rabbit, err := events.NewRabbitPublisher(conn)
		if err != nil {
			logger.Fatalf("init order publisher: %v", err)
		}
		defer rabbit.Close()
		publisher = rabbit
		logger.Printf("publishing order events to queue %s", events.OrderCreatedQueue)
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	orderService := ordersvc.New(productService, orderrepo.NewPostgres(dbpool, logger), publisher, logger)
	userService := usersvc.New(userrepo.NewPostgres(dbpool, logger))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		OrderSvc:    orderService,
		UserSvc:     userService,
		CORSOrigins: cfg.CORSAllowOrigins,
		Metrics:     httpserver.NewMetrics(),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/abandoned"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/admin"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cache"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/config"
	h "github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/http"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/order"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/otp"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/repository"
)

func main() {
	cfg := config.Load()

	// Postgres is the order and OTP store of record.
	cred := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	db, err := repository.Connect(cred)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(db, cred); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Redis keeps the per-session carts.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	carts := cache.NewRedisCartStore(redisClient)

	// Mongo holds abandoned-cart snapshots; Kafka feeds the remarketing
	// pipeline. Both are best-effort paths behind the recorder.
	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	mongoDB, err := abandoned.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDB)
	cancelMongo()
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	snapRepo := abandoned.NewMongoRepository(mongoDB)
	if err := snapRepo.CreateIndexes(context.Background()); err != nil {
		log.Printf("failed to create snapshot indexes: %v", err)
	}

	publisher := abandoned.NewKafkaPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	recorder := abandoned.NewRecorder(snapRepo, publisher)

	// Services.
	otpService := otp.NewService(
		repository.NewOTPRepository(db),
		otp.LogSender{},
		cfg.OTPTTL,
		cfg.OTPRateWindow,
		cfg.OTPMaxIssuances,
	)
	orderService := order.NewService(repository.NewOrderRepository(db), otpService, cfg.OTPEnabled)
	console := admin.NewConsole(orderService)

	rates := cfg.TaxRates()
	cartHandler := h.NewCartHandler(carts, rates, cfg.FreeDeliveryThreshold)
	otpHandler := h.NewOTPHandler(otpService, recorder, carts, rates, cfg.FreeDeliveryThreshold)
	orderHandler := h.NewOrderHandler(orderService, carts, recorder, rates, cfg.FreeDeliveryThreshold)
	adminHandler := h.NewAdminHandler(console, recorder)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{item_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{item_id}", cartHandler.RemoveItem)
		})

		r.Route("/otp", func(r chi.Router) {
			r.Post("/send", otpHandler.SendOTP)
			r.Post("/verify", otpHandler.VerifyOTP)
		})

		r.Post("/checkout/whatsapp", orderHandler.WhatsAppCheckout)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{order_id}", orderHandler.GetOrder)
			r.Patch("/{order_id}/status", orderHandler.UpdateStatus)
			r.Patch("/{order_id}/payment-status", orderHandler.UpdatePaymentStatus)
			r.Delete("/{order_id}", orderHandler.DeleteOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/orders/bulk-status", adminHandler.BulkStatus)
			r.Post("/orders/reminders", adminHandler.Reminders)
			r.Get("/orders/export", adminHandler.ExportCSV)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/abandoned-carts", adminHandler.AbandonedCarts)
		})
	})

	// The dashboard poller runs for the lifetime of the process and stops
	// with it.
	pollCtx, stopPoller := context.WithCancel(context.Background())
	poller := admin.NewPoller(orderService, cfg.AdminPollInterval, func(newCount, total int) {
		if newCount > 0 {
			log.Printf("%d new order(s), %d total", newCount, total)
		}
	})
	go poller.Run(pollCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("feast server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

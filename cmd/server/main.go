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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ridham-007/test-vismobackend/internal/billing"
	"github.com/ridham-007/test-vismobackend/internal/config"
	"github.com/ridham-007/test-vismobackend/internal/database"
	"github.com/ridham-007/test-vismobackend/internal/handlers"
	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/middleware"
	"github.com/ridham-007/test-vismobackend/internal/store"
	"github.com/ridham-007/test-vismobackend/internal/tracing"
)

func main() {
	// A missing .env is fine; the hosting environment sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracing, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName: "vismo-backend",
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	db, err := database.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("db open/migrate: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()

	ledgerClient := ledger.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	svc := billing.NewService(store.NewSQL(db), ledgerClient, billing.Config{
		BaseCurrency:    cfg.BaseCurrency,
		PortalReturnURL: cfg.PortalReturnURL,
	})

	r := gin.Default()
	r.Use(otelgin.Middleware("vismo-backend"))
	r.Use(middleware.DevCORS(cfg))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	handlers.RegisterBillingRoutes(r.Group(""), svc, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %v", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}

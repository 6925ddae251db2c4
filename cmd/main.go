// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hostelsync/booking-backend/internal/bookingid"
	"github.com/hostelsync/booking-backend/internal/database"
	"github.com/hostelsync/booking-backend/internal/handler"
	"github.com/hostelsync/booking-backend/internal/repository"
	"github.com/hostelsync/booking-backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// ── 1. Connect to PostgreSQL and apply schema ─────────────────────────
	pool, err := database.NewPool(ctx, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("connected to postgres")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	propertyRepo := repository.NewPropertyRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	idGen := bookingid.New(log, bookingRepo)

	propertySvc := service.NewPropertyService(propertyRepo)
	bookingSvc := service.NewBookingService(bookingRepo, propertyRepo, idGen)
	reportSvc := service.NewReportService(log, bookingRepo)

	propertyHandler := handler.NewPropertyHandler(propertySvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, reportSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.AccessLog(log))  // structured access log
	r.Use(handler.CORS)            // permissive CORS

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/properties", func(r chi.Router) {
		r.Post("/", propertyHandler.CreateProperty)
		r.Get("/", propertyHandler.ListProperties)
		r.Get("/{id}", propertyHandler.GetProperty)
		r.Post("/{id}/rooms", propertyHandler.CreateRoom)
		r.Get("/{id}/bookings", bookingHandler.ListBookings)
		r.Get("/{id}/report", bookingHandler.PropertyReport)
	})
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/{identifier}", bookingHandler.GetBooking)
		r.Post("/{identifier}/cancel", bookingHandler.CancelBooking)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Info("server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

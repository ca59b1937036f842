package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "rentdesk-backend/internal/api/grpc"
	httpapi "rentdesk-backend/internal/api/http"
	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/events"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository/postgres"
	"rentdesk-backend/internal/security"
	"rentdesk-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentdesk Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Booking configuration", "release_policy", cfg.Booking.ReleasePolicy)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err, "url", cfg.NATS.URL)
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()
		publisher = events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix)
		logger.Info("Publishing booking events", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Services
	bookingSvc := service.NewBookingService(
		store,
		store.ItemRepository,
		store.RentalRepository,
		store.OrderRepository,
		publisher,
		service.WithReleasePolicy(cfg.Booking.ReleasePolicy),
	)
	services := httpapi.Services{
		Booking:   bookingSvc,
		Items:     service.NewItemService(store.ItemRepository),
		Catalog:   service.NewCatalogService(store.CatalogRepository),
		Clients:   service.NewClientService(store.ClientRepository, store.RentalRepository),
		Dashboard: service.NewDashboardService(bookingSvc, store.RentalRepository, store.ItemRepository, nil),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up gRPC health server
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer := grpcapi.NewServer(tokenManager, db.PingContext, cfg.GetHealthInterval())
		go func() {
			if err := grpcServer.Serve(ctx, lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
	}

	// Set up HTTP server
	handler := httpapi.NewHandler(services, tokenManager, db.PingContext)
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}()

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

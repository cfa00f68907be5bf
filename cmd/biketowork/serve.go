package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"biketowork/config"
	"biketowork/db"
	"biketowork/handlers"
	"biketowork/identity"
	"biketowork/middleware"
	"biketowork/ridenotif"
	"biketowork/services/rides"
	"biketowork/services/txmanager"
	"biketowork/services/users"
	"biketowork/utils"
	"biketowork/webhooks"
)

func runServer(migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Slack webhooks are delivered in the background
	dispatcher := webhooks.NewDispatcher(2)
	defer dispatcher.Stop()

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "biketowork",
		LogsURL:     cfg.ServerLogsURL,
	}, dispatcher)

	ridenotif.Init(dispatcher, cfg.SlackConfig.RidesWebhookURL, cfg.Environment)

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if migrate {
		if err := db.Migrate(context.Background(), dbConn, cfg.DatabaseSchema); err != nil {
			return err
		}
	}

	// Initialize repositories with shared connection
	usersRepo := db.NewSQLUsersRepository(dbConn, cfg.DatabaseSchema)
	ridesRepo := db.NewSQLRidesRepository(dbConn, cfg.DatabaseSchema)

	// Initialize transaction manager
	txManager := txmanager.NewTransactionManager(dbConn)

	provider := newIdentityProvider(cfg)
	usersService := users.NewUsersService(usersRepo, provider)
	ridesService := rides.NewRidesService(ridesRepo, usersRepo, txManager)
	authMiddleware := middleware.NewAuthMiddleware(provider, usersService, cfg.IsAdmin)

	// Create a new router
	router := mux.NewRouter()
	router.Use(middleware.Metrics, authMiddleware.WithSession)

	layout, err := newLayout(cfg)
	if err != nil {
		return err
	}

	handlers.NewRidesHTTPHandler(ridesService, cfg.TimeZone, layout).SetupEndpoints(router, authMiddleware)
	handlers.NewAccountsHTTPHandler(provider, layout).SetupEndpoints(router)
	handlers.NewAdminHTTPHandler(ridesService, cfg.TimeZone, layout).SetupEndpoints(router, authMiddleware)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	log.Printf("✅ GET /metrics endpoint registered")

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   utils.SplitAndTrim(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func newIdentityProvider(cfg *config.AppConfig) identity.Provider {
	if cfg.AuthProvider == config.AuthProviderDev {
		return identity.NewDevProvider(
			cfg.SessionConfig.Secret,
			cfg.SessionConfig.TTL,
			strings.HasPrefix(cfg.PublicURL, "https://"),
		)
	}
	return identity.NewClerkProvider(cfg.ClerkConfig.SecretKey, cfg.ClerkConfig.SignInURL, cfg.PublicURL)
}

func newLayout(cfg *config.AppConfig) (handlers.Layout, error) {
	if cfg.AuthProvider != config.AuthProviderClerk {
		return handlers.Layout{}, nil
	}

	scriptURL, err := cfg.ClerkConfig.ScriptURL()
	if err != nil {
		return handlers.Layout{}, err
	}
	return handlers.Layout{
		ClerkPublishableKey: cfg.ClerkConfig.PublishableKey,
		ClerkScriptURL:      scriptURL,
	}, nil
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}

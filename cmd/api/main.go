package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"bank-ledger/internal/config"
	"bank-ledger/internal/handler"
	"bank-ledger/internal/metrics"
	"bank-ledger/internal/middleware"
	"bank-ledger/internal/notify"
	"bank-ledger/internal/service"
	"bank-ledger/internal/store"
	"bank-ledger/internal/store/memory"
	"bank-ledger/internal/store/postgres"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load optional .env, then configuration
	_ = godotenv.Load()
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the ledger store
	var ledgerStore store.LedgerStore
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("Using in-memory store; state will not survive restarts")
		ledgerStore = memory.NewStore()
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		pgStore := postgres.NewStore(db)
		if err := pgStore.InitSchema(context.Background()); err != nil {
			logger.Fatalf("Failed to initialize schema: %v", err)
		}
		ledgerStore = pgStore
	}

	// Initialize layers
	collector := metrics.NewCollector()
	sender := notify.NewSender(cfg, logger)
	svc := service.NewService(ledgerStore, logger, cfg, collector, sender)
	h := handler.NewHandler(svc, logger)

	// Periodic balance-gauge refresh
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.MetricsRefresh, func() {
		if err := svc.RefreshMetrics(context.Background()); err != nil {
			logger.Errorf("Metrics refresh failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule metrics refresh: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/accounts/recover", h.RecoverAccountNumber).Methods("POST")
	r.HandleFunc("/complaints", h.RegisterComplaint).Methods("POST")
	// Administrative routes
	r.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	r.HandleFunc("/complaints", h.AllComplaints).Methods("GET")
	r.Handle("/metrics", collector.Handler()).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/account").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/deposit", h.Deposit).Methods("POST")
	authRouter.HandleFunc("/withdraw", h.Withdraw).Methods("POST")
	authRouter.HandleFunc("/transfer", h.Transfer).Methods("POST")
	authRouter.HandleFunc("/password", h.ChangePassword).Methods("POST")
	authRouter.HandleFunc("/history", h.History).Methods("GET")
	authRouter.HandleFunc("/statement", h.Statement).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

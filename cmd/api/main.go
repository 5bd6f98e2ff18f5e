package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/auth-service/internal/config"
	"github.com/Dan9191/auth-service/internal/handler"
	"github.com/Dan9191/auth-service/internal/repository"
	"github.com/Dan9191/auth-service/internal/service"
	"github.com/Dan9191/auth-service/internal/session"
	"github.com/Dan9191/auth-service/internal/utils"
	"github.com/gorilla/sessions"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := repository.NewRepository(db)
	if cfg.MigrateOnStart {
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize layers
	svc := service.NewService(repo, utils.NewPasswordHasher(cfg.BcryptCost), logger)

	opts := session.Options{
		HashKey:  []byte(cfg.SessionSecret),
		BlockKey: []byte(cfg.SessionEncryptionKey),
		MaxAge:   cfg.SessionMaxAge,
		Secure:   cfg.SessionSecure,
	}
	var store sessions.Store
	switch cfg.SessionBackend {
	case config.SessionBackendPostgres:
		pg := session.NewPGStore(db, opts)
		cleanup, err := session.StartCleanup(ctx, pg, cfg.SessionCleanupSchedule, logger)
		if err != nil {
			logger.Fatalf("Failed to schedule session cleanup: %v", err)
		}
		defer cleanup.Stop()
		store = pg
	default:
		store = session.NewCookieStore(opts)
	}
	manager := session.NewManager(store, cfg.SessionName, svc, logger)

	h := handler.NewHandler(svc, manager, repo, logger)
	router := handler.NewRouter(h, handler.RouterDeps{
		Users:          manager,
		Admins:         svc,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            logger,
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s (session backend: %s)", addr, cfg.SessionBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}

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

	"github.com/Dan9191/loan-approval/internal/artifact"
	"github.com/Dan9191/loan-approval/internal/classifier"
	"github.com/Dan9191/loan-approval/internal/config"
	"github.com/Dan9191/loan-approval/internal/handler"
	"github.com/Dan9191/loan-approval/internal/middleware"
	"github.com/Dan9191/loan-approval/internal/service"
	"github.com/Dan9191/loan-approval/internal/session"
	"github.com/Dan9191/loan-approval/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load model artifact
	bundle, err := loadBundle(cfg)
	if err != nil {
		var arity *classifier.FeatureArityMismatchError
		if errors.As(err, &arity) {
			logger.Fatalf("Model does not match the feature builder: %v", err)
		}
		logger.Fatalf("Failed to load model: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"name":        bundle.Name,
		"version":     bundle.Version,
		"fingerprint": bundle.Fingerprint,
		"source":      cfg.ArtifactSource,
	}).Info("Model loaded")

	// Initialize layers
	var notifier service.Notifier
	if cfg.NotifyEnabled {
		notifier = email.NewSender(cfg, logger)
	}
	svc := service.NewService(bundle, notifier, logger)
	store := session.NewStore(cfg.SessionTTL, logger)
	tokens := session.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	h := handler.NewHandler(svc, store, tokens, logger)

	sweeper, err := store.StartSweeper(cfg.SweepSchedule)
	if err != nil {
		logger.Fatalf("Failed to start session sweeper: %v", err)
	}

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	h.Register(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()
	logger.Infof("Starting server on %s", addr)

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-sweeper.Stop().Done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
	svc.Wait()
}

func loadBundle(cfg *config.Config) (*artifact.Bundle, error) {
	if cfg.ArtifactSource == config.SourceFile {
		return artifact.LoadFile(cfg.ArtifactPath)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		return nil, &classifier.ModelLoadError{Reason: "open artifact database", Err: err}
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return artifact.LoadDatabase(ctx, db, cfg.ArtifactName)
}

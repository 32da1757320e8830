package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"hr-admin-platform/backend/internal/audit"
	auditrepo "hr-admin-platform/backend/internal/audit/repository"
	"hr-admin-platform/backend/internal/config"
	"hr-admin-platform/backend/internal/db"
	healthhandler "hr-admin-platform/backend/internal/health/handler"
	"hr-admin-platform/backend/internal/policy"
	"hr-admin-platform/backend/internal/policy/scheduler"
	"hr-admin-platform/backend/internal/server"
	sessionrepo "hr-admin-platform/backend/internal/session/repository"
	sessionservice "hr-admin-platform/backend/internal/session/service"
	settingsrepo "hr-admin-platform/backend/internal/settings/repository"
	"hr-admin-platform/backend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := telemetry.NewProviders(ctx, cfg.OTLPEndpoint, "hr-admin-session-core", cfg.OTLPInsecure)
	if err != nil {
		logrus.Fatalf("telemetry: %v", err)
	}
	metrics, err := telemetry.NewMetrics(providers.MeterProvider)
	if err != nil {
		logrus.Fatalf("telemetry: %v", err)
	}

	sessions := sessionrepo.NewPostgresRepository(conn)
	settings := settingsrepo.NewPostgresRepository(conn)
	auditStore := auditrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditStore, metrics)
	lifecycle := sessionservice.NewLifecycle(sessions, settings, auditLogger, metrics)
	evaluator := policy.NewEvaluator(settings, sessions)
	sched := scheduler.New(evaluator, cfg.ComplianceEvery(), cfg.StatsEvery())
	go sched.Run(ctx)

	handlers := server.NewHandlers(lifecycle, sched, sessions, settings, auditStore, auditLogger, int32(cfg.AuditRetrievalLimit))
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.NewRouter(handlers, healthhandler.New(conn)),
	}

	go func() {
		logrus.Infof("admin API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("telemetry shutdown: %v", err)
	}
	logrus.Info("stopped")
}

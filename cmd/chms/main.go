// CHMS Core - Church Management System
//
// This is the main entry point for the CHMS core service. It manages
// membership records, financial transactions, dashboards, and report
// generation for a single congregation, behind a role-gated REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/parishworks/chms-core/migrations"

	"github.com/parishworks/chms-core/internal/api"
	"github.com/parishworks/chms-core/internal/audit"
	"github.com/parishworks/chms-core/internal/auth"
	"github.com/parishworks/chms-core/internal/dashboard"
	"github.com/parishworks/chms-core/internal/finance"
	"github.com/parishworks/chms-core/internal/infrastructure/config"
	"github.com/parishworks/chms-core/internal/infrastructure/database"
	"github.com/parishworks/chms-core/internal/infrastructure/logging"
	"github.com/parishworks/chms-core/internal/member"
	"github.com/parishworks/chms-core/internal/reporting"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting CHMS core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Audit trail underpins every service; failures are logged, never fatal.
	recorder := audit.NewSafeRecorder(audit.NewRecorder(db.DB), log.Logger)

	userRepo := auth.NewUserRepository(db.DB)
	authSvc := auth.NewService(userRepo, auth.NewSessionRepository(db.DB), recorder, log.Logger, auth.ServiceConfig{
		SessionTTL:       cfg.Security.SessionTTL(),
		LockoutThreshold: cfg.Security.LockoutThreshold,
		LockoutWindow:    cfg.Security.LockoutWindow(),
	})

	if cfg.Security.BootstrapAdmin {
		created, seedErr := auth.SeedAdmin(ctx, authSvc, userRepo, log.Logger)
		if seedErr != nil {
			return fmt.Errorf("seeding admin account: %w", seedErr)
		}
		if created {
			log.Info("default administrator account created")
		}
	}

	memberSvc := member.NewService(member.NewRepository(db.DB), recorder, log.Logger)
	financeSvc := finance.NewService(finance.NewRepository(db.DB), recorder, log.Logger)
	dashboardSvc := dashboard.NewService(memberSvc, financeSvc)
	reportSvc := reporting.NewService(financeSvc, memberSvc, recorder, log.Logger, reporting.Options{
		OrganisationName: cfg.Reports.OrganisationName,
		CurrencySymbol:   cfg.Reports.CurrencySymbol,
	})

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		DB:        db,
		Auth:      authSvc,
		Members:   memberSvc,
		Finances:  financeSvc,
		Dashboard: dashboardSvc,
		Reports:   reportSvc,
		Audit:     recorder,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	go sessionCleanupLoop(ctx, authSvc, log)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Database

	log.Info("CHMS core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CHMS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CHMS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// sessionCleanupLoop purges expired sessions periodically so the
// sessions table does not grow without bound.
func sessionCleanupLoop(ctx context.Context, authSvc *auth.Service, log *logging.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authSvc.CleanupExpiredSessions(ctx)
			if err != nil {
				log.Error("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("expired sessions purged", "count", n)
			}
		}
	}
}

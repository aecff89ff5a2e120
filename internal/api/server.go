// Package api provides the HTTP REST API for the CHMS core.
//
// It exposes authentication, member records, financial transactions,
// dashboard aggregates, and report downloads to client applications.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

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

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	DB        *database.DB
	Auth      *auth.Service
	Members   *member.Service
	Finances  *finance.Service
	Dashboard *dashboard.Service
	Reports   *reporting.Service
	Audit     *audit.SafeRecorder
	Version   string
}

// Server is the HTTP API server for the CHMS core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	db        *database.DB
	auth      *auth.Service
	members   *member.Service
	finances  *finance.Service
	dashboard *dashboard.Service
	reports   *reporting.Service
	audit     *audit.SafeRecorder
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Members == nil {
		return nil, fmt.Errorf("member service is required")
	}
	if deps.Finances == nil {
		return nil, fmt.Errorf("finance service is required")
	}
	if deps.Dashboard == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}
	if deps.Reports == nil {
		return nil, fmt.Errorf("reporting service is required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		db:        deps.DB,
		auth:      deps.Auth,
		members:   deps.Members,
		finances:  deps.Finances,
		dashboard: deps.Dashboard,
		reports:   deps.Reports,
		audit:     deps.Audit,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

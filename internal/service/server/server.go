package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/port"
	"github.com/vertextoedge/label-portal/internal/service/catalogue"
	"github.com/vertextoedge/label-portal/internal/service/sharelink"
	"github.com/vertextoedge/label-portal/internal/service/upload"
	"github.com/vertextoedge/label-portal/internal/util/ratelimiter"
)

// Config contains HTTP server configuration
type Config struct {
	BindAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request body limits for multipart uploads
	MaxUploadSize      int64
	MaxAdminUploadSize int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:           "0.0.0.0:3001",
		ReadTimeout:        60 * time.Second,
		WriteTimeout:       120 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxUploadSize:      100 << 20,
		MaxAdminUploadSize: 2 << 30,
	}
}

// Dependencies are the collaborators the handlers call into
type Dependencies struct {
	Store         port.Store
	Shares        *sharelink.Service
	Storage       port.RemoteStorage
	Catalogue     *catalogue.Service
	Uploads       *upload.Service
	Verifier      port.IdentityVerifier
	Roles         port.RoleResolver
	PasswordGuard *ratelimiter.Limiter
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	deps   Dependencies
	logger *zap.Logger
	server *http.Server

	shareHandler     *ShareHandler
	publicHandler    *PublicHandler
	storageHandler   *StorageHandler
	catalogueHandler *CatalogueHandler
	uploadHandler    *UploadHandler
	statusHandler    *StatusHandler
	adminHandler     *AdminHandler
}

// New creates a new HTTP server
func New(cfg *Config, deps Dependencies, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: logger,
	}

	s.shareHandler = NewShareHandler(deps.Shares, logger)
	s.publicHandler = NewPublicHandler(deps.Shares, deps.Storage, deps.PasswordGuard, logger)
	s.storageHandler = NewStorageHandler(deps.Storage, deps.Uploads, cfg.MaxAdminUploadSize, logger)
	s.catalogueHandler = NewCatalogueHandler(deps.Catalogue, logger)
	s.uploadHandler = NewUploadHandler(deps.Uploads, cfg.MaxUploadSize, logger)
	s.statusHandler = NewStatusHandler(deps.Store, deps.Catalogue, deps.PasswordGuard, logger)
	s.adminHandler = NewAdminHandler(deps.Uploads, deps.Roles, logger)

	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      LoggingMiddleware(logger)(s.routes()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	auth := AuthMiddleware(s.deps.Verifier, s.logger)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(AdminMiddleware(s.deps.Roles, s.logger)(h))
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Share-link administration
	mux.Handle("POST /api/share/create", admin(s.shareHandler.HandleCreate))
	mux.Handle("GET /api/share/list", admin(s.shareHandler.HandleList))
	mux.Handle("PATCH /api/share/{id}/deactivate", admin(s.shareHandler.HandleDeactivate))
	mux.Handle("DELETE /api/share/{id}", admin(s.shareHandler.HandleDelete))

	// Public share access
	mux.HandleFunc("GET /api/shared/{token}", s.publicHandler.HandleInfo)
	mux.HandleFunc("POST /api/shared/{token}/download", s.publicHandler.HandleDownload)

	// Admin storage browser
	mux.Handle("POST /api/admin-storage/list", admin(s.storageHandler.HandleList))
	mux.Handle("POST /api/admin-storage/upload", admin(s.storageHandler.HandleUpload))
	mux.Handle("POST /api/admin-storage/download", admin(s.storageHandler.HandleDownload))
	mux.Handle("POST /api/admin-storage/stream", admin(s.storageHandler.HandleStream))
	mux.Handle("POST /api/admin-storage/delete", admin(s.storageHandler.HandleDelete))
	mux.Handle("POST /api/admin-storage/create-folder", admin(s.storageHandler.HandleCreateFolder))
	mux.Handle("POST /api/admin-storage/search", admin(s.storageHandler.HandleSearch))
	mux.Handle("POST /api/admin-storage/move", admin(s.storageHandler.HandleMove))
	mux.Handle("POST /api/admin-storage/info", admin(s.storageHandler.HandleInfo))

	// Catalogue editor
	mux.Handle("GET /api/catalogue/artists", admin(s.catalogueHandler.HandleListArtists))
	mux.Handle("POST /api/catalogue/artists", admin(s.catalogueHandler.HandleCreateArtist))
	mux.Handle("GET /api/catalogue/artists/{id}", admin(s.catalogueHandler.HandleGetArtist))
	mux.Handle("PUT /api/catalogue/artists/{id}", admin(s.catalogueHandler.HandleUpdateArtist))
	mux.Handle("DELETE /api/catalogue/artists/{id}", admin(s.catalogueHandler.HandleDeleteArtist))
	mux.Handle("GET /api/catalogue/releases", admin(s.catalogueHandler.HandleListReleases))
	mux.Handle("POST /api/catalogue/releases", admin(s.catalogueHandler.HandleCreateRelease))
	mux.Handle("GET /api/catalogue/releases/{id}", admin(s.catalogueHandler.HandleGetRelease))
	mux.Handle("PUT /api/catalogue/releases/{id}", admin(s.catalogueHandler.HandleUpdateRelease))
	mux.Handle("DELETE /api/catalogue/releases/{id}", admin(s.catalogueHandler.HandleDeleteRelease))

	// End-user uploads
	mux.Handle("POST /api/upload", auth(http.HandlerFunc(s.uploadHandler.HandleUpload)))

	// Demo review and roles
	mux.Handle("GET /api/admin/submissions", admin(s.adminHandler.HandleListSubmissions))
	mux.Handle("PATCH /api/admin/submissions/{id}", admin(s.adminHandler.HandleReviewSubmission))
	mux.Handle("PUT /api/admin/profiles/{id}/role", admin(s.adminHandler.HandleSetRole))

	// Operational status
	mux.Handle("GET /api/admin/status", admin(s.statusHandler.HandleStatus))

	return mux
}

// Handler returns the root handler, for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.deps.Store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "timestamp": now})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": now})
}

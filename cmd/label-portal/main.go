package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/adapter/catalogue"
	"github.com/vertextoedge/label-portal/internal/adapter/postgres"
	"github.com/vertextoedge/label-portal/internal/adapter/redis"
	"github.com/vertextoedge/label-portal/internal/adapter/remote"
	"github.com/vertextoedge/label-portal/internal/adapter/sqlite"
	"github.com/vertextoedge/label-portal/internal/auth/password"
	"github.com/vertextoedge/label-portal/internal/auth/roles"
	"github.com/vertextoedge/label-portal/internal/auth/token"
	"github.com/vertextoedge/label-portal/internal/config"
	"github.com/vertextoedge/label-portal/internal/logger"
	"github.com/vertextoedge/label-portal/internal/port"
	catalogueservice "github.com/vertextoedge/label-portal/internal/service/catalogue"
	"github.com/vertextoedge/label-portal/internal/service/maintenance"
	"github.com/vertextoedge/label-portal/internal/service/server"
	"github.com/vertextoedge/label-portal/internal/service/sharelink"
	"github.com/vertextoedge/label-portal/internal/service/upload"
	"github.com/vertextoedge/label-portal/internal/util/ratelimiter"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting label-portal",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database
	store, err := openStore(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	defer store.Close()

	// Role cache is optional
	var roleCache roles.Cache
	if cfg.Redis.Addr != "" {
		cache := redis.New(redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, zapLogger)
		if err := cache.Ping(ctx); err != nil {
			zapLogger.Warn("redis unavailable, role lookups go to the database", zap.Error(err))
			cache.Close()
		} else {
			roleCache = cache
			defer cache.Close()
		}
	}

	// Remote file host
	storage, err := remote.New(cfg.Remote.Protocol, remote.Config{
		Addr:           cfg.Remote.Addr(),
		Username:       cfg.Remote.Username,
		Password:       cfg.Remote.Password,
		PrivateKeyPath: cfg.Remote.PrivateKeyPath,
		HostKey:        cfg.Remote.HostKey,
		SkipTLSVerify:  cfg.Remote.SkipTLSVerify,
		Session: remote.SessionConfig{
			ConnectTimeout:    cfg.Remote.GetConnectTimeout(),
			ConnectRetries:    cfg.Remote.ConnectRetries,
			RetryDelay:        cfg.Remote.GetRetryDelay(),
			KeepaliveInterval: cfg.Remote.GetKeepaliveInterval(),
		},
		Layout: remote.Layout{
			BasePath:        cfg.Storage.BasePath,
			AdminRoot:       cfg.Storage.AdminRoot,
			PublicRoot:      cfg.Storage.PublicRoot,
			PublicURLPrefix: cfg.Storage.PublicURLPrefix,
		},
		MaxSearchDepth: cfg.Remote.MaxSearchDepth,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to create remote storage client", zap.Error(err))
	}

	// Warm up the connection; operations reconnect on demand if this fails
	go func() {
		if err := storage.Connect(ctx); err != nil {
			zapLogger.Warn("initial remote connection failed", zap.Error(err), zap.String("addr", cfg.Remote.Addr()))
			return
		}
		zapLogger.Info("connected to remote storage",
			zap.String("protocol", cfg.Remote.Protocol),
			zap.String("addr", cfg.Remote.Addr()))
	}()

	// Services
	shareService := sharelink.New(&sharelink.Config{
		PublicBaseURL: cfg.Share.PublicBaseURL,
	}, store, password.NewDefault(), zapLogger)

	uploadService := upload.New(&upload.Config{
		MaxFileSize:          cfg.Upload.GetMaxFileSize(),
		MaxAdminFileSize:     cfg.Upload.GetMaxAdminFileSize(),
		MaxActiveSubmissions: cfg.Upload.MaxActiveSubmissions,
		AllowedDemoMIMETypes: cfg.Upload.AllowedDemoMIMETypes,
	}, storage, store, zapLogger)

	catalogueService := catalogueservice.New(catalogue.New(catalogue.Config{
		ArtistsFile:  cfg.Catalogue.ArtistsFile,
		ReleasesFile: cfg.Catalogue.ReleasesFile,
	}, zapLogger), zapLogger)

	passwordGuard := ratelimiter.New(cfg.Share.GetPasswordRetryInterval())

	// Create maintenance service
	maintenanceService := maintenance.New(&maintenance.Config{
		SweepSchedule: cfg.Share.SweepSchedule,
	}, shareService, passwordGuard, zapLogger)

	// Create HTTP server
	serverCfg := &server.Config{
		BindAddr:           cfg.HTTP.BindAddr,
		ReadTimeout:        cfg.HTTP.GetReadTimeout(),
		WriteTimeout:       cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:        cfg.HTTP.GetIdleTimeout(),
		MaxUploadSize:      cfg.Upload.GetMaxFileSize(),
		MaxAdminUploadSize: cfg.Upload.GetMaxAdminFileSize(),
	}
	httpServer := server.New(serverCfg, server.Dependencies{
		Store:         store,
		Shares:        shareService,
		Storage:       storage,
		Catalogue:     catalogueService,
		Uploads:       uploadService,
		Verifier:      token.New(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Roles:         roles.New(store, roleCache, cfg.Auth.GetRoleCacheTTL(), zapLogger),
		PasswordGuard: passwordGuard,
	}, zapLogger)

	// Start HTTP server
	go func() {
		if err := httpServer.Start(); err != nil {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Start maintenance service
	go func() {
		if err := maintenanceService.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("maintenance service stopped with error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	zapLogger.Info("application started successfully",
		zap.String("http_addr", cfg.HTTP.BindAddr),
		zap.String("remote", cfg.Remote.Protocol+"://"+cfg.Remote.Addr()),
	)
	<-sigChan

	zapLogger.Info("shutdown signal received, stopping services...")

	cancel()
	maintenanceService.Stop()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop HTTP server
	if err := httpServer.Stop(shutdownCtx); err != nil {
		zapLogger.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	// Close the remote session
	if err := storage.Disconnect(); err != nil {
		zapLogger.Error("failed to disconnect from remote storage", zap.Error(err))
	}

	zapLogger.Info("application stopped successfully")
}

// openStore opens the configured share-link database
func openStore(ctx context.Context, cfg *config.Config) (port.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return postgres.Open(openCtx, cfg.Database.DSN, cfg.Database.MaxConns)
	default:
		return sqlite.OpenWithBusyTimeout(cfg.Database.Path, cfg.Database.BusyTimeoutMs)
	}
}

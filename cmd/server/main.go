// Package main is the entry point for the Kyvex chat server. It wires the
// storage, service and transport layers together and runs the HTTP server
// until shutdown.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/auth"
	"github.com/kyvexhq/kyvexserver/internal/avatar"
	"github.com/kyvexhq/kyvexserver/internal/config"
	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/httpapi"
	"github.com/kyvexhq/kyvexserver/internal/service"
	"github.com/kyvexhq/kyvexserver/internal/ws"
	"github.com/kyvexhq/kyvexserver/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		// Sync errors on stdout/stderr are expected and can be ignored.
		_ = log.Sync()
	}()

	log.Info("starting kyvex server",
		zap.String("environment", cfg.Server.Env),
		zap.String("http_port", cfg.Server.HTTPPort),
	)

	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if err := runMigrations(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	avatars := avatar.NewClient(&cfg.Avatar, log)
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenExpiry)
	hasher := auth.NewHasher(cfg.Security.BcryptCost)

	hub := ws.NewHub(log)

	users := service.NewUserService(db, avatars, tokens, hasher, log)
	guilds := service.NewGuildService(db, avatars, hub, log)
	channels := service.NewChannelService(db, hub, log)
	messages := service.NewMessageService(db, hub, log)

	var gateway httpapi.GatewayHandler
	if cfg.Gateway.Enabled {
		gateway = ws.NewGateway(hub, users, cfg.Gateway.SendBufferSize, cfg.Gateway.MaxMessageSize, log)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.HTTPPort)
	server := httpapi.NewServer(addr, httpapi.Services{
		Users:    users,
		Guilds:   guilds,
		Channels: channels,
		Messages: messages,
	}, gateway, db, log)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatal("http server error", zap.Error(err))
	case sig := <-sigChan:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown http server gracefully", zap.Error(err))
	}

	hub.Shutdown()

	log.Info("server shut down successfully")
}

// runMigrations applies pending schema migrations at startup.
func runMigrations(db *database.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	migrationsPath := "internal/database/migrations"
	if err := db.RunMigrations(migrationsPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}

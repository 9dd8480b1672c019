// Command dutchd runs the standalone table server: the framed socket listener for game
// clients and the admin HTTP surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dutch/internal/app"
	"dutch/internal/config"
	"dutch/internal/logging"
	"dutch/internal/ports/admin"
	"dutch/internal/ports/socket"
)

const shutdownGrace = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dutchd:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadServerConfig(os.Getenv("DUTCH_CONFIG_FILE")); err != nil {
		return err
	}
	cfg := config.GetServerConfig()

	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lobby := app.NewLobby(ctx, app.LobbyOptions{
		MaxClients: cfg.MaxClients,
		Table:      app.TableOptionsFrom(cfg, logging.Adapt(log.Named("table"))),
		Log:        logging.Adapt(log.Named("lobby")),
	})
	invites := app.NewInviteService(cfg.InviteSecret, time.Duration(cfg.InviteTTLSeconds)*time.Second)

	adminSrv := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           admin.NewRouter(lobby, invites, log.Named("admin")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	adminErr := make(chan error, 1)
	go func() {
		log.Info("admin listening", zap.String("addr", cfg.AdminAddr))
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			adminErr <- err
			stop()
		}
		close(adminErr)
	}()

	serveErr := socket.NewServer(lobby, log.Named("socket")).ListenAndServe(ctx, cfg.ListenAddr)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin shutdown", zap.Error(err))
	}
	if err := <-adminErr; err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	log.Info("server stopped")
	return serveErr
}

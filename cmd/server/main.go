package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/app"
	"github.com/nekogravitycat/room-booker/internal/config"
	"github.com/nekogravitycat/room-booker/internal/db"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.IsProduction, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Connect DB
	handle, err := db.Open(ctx, cfg.DBDialect, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer handle.Close()

	version, err := db.Migrate(ctx, handle)
	if err != nil {
		logger.Fatal("failed to migrate db", zap.Error(err))
	}
	logger.Info("database ready", zap.String("dialect", string(cfg.DBDialect)), zap.Int64("schema_version", version))

	container, err := app.NewContainer(app.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		DB:            handle,
		Logger:        logger,
		TelegramToken: cfg.TelegramToken,
		BotAdminIDs:   cfg.BotAdminIDs,
		BotTimezone:   cfg.BotTimezone,
		UpcomingCount: cfg.UpcomingCount,
	})
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	// Run server in separate goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("display api running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	if container.Bot != nil {
		if err := container.Bot.RegisterHandlers(ctx); err != nil {
			logger.Warn("chat bot command menu not set", zap.Error(err))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			container.Bot.Start(ctx)
		}()
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, chat bot disabled")
	}

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server exited gracefully")
}

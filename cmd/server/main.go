package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paxtonking/optcgsim-web-sub005/internal/ai"
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/config"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
	"github.com/paxtonking/optcgsim-web-sub005/internal/repository"
	"github.com/paxtonking/optcgsim-web-sub005/internal/server"
	"github.com/paxtonking/optcgsim-web-sub005/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting match server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Card catalog
	lookup, err := catalog.LoadDir(cfg.Catalog.Dir)
	if err != nil {
		logger.Fatal("failed to load card catalog",
			zap.String("dir", cfg.Catalog.Dir),
			zap.Error(err),
		)
	}
	logger.Info("card catalog loaded", zap.String("dir", cfg.Catalog.Dir))

	// Optional result store
	var store *repository.Store
	if cfg.Database.Enabled {
		store, err = repository.New(ctx, cfg.Database.DSN, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer store.Close()
		if err := store.Init(ctx); err != nil {
			logger.Fatal("failed to initialize database schema", zap.Error(err))
		}
		logger.Info("result store initialized")
	} else {
		logger.Info("result store disabled")
	}

	engine := game.NewEngine(logger)
	botService := ai.NewService(engine, logger)
	sessionMgr := session.NewManager(engine, botService, store, logger, session.Options{
		DisconnectTimeout: cfg.Session.DisconnectTimeout,
		BotTickInterval:   cfg.Session.BotTickInterval,
	})
	logger.Info("session manager initialized",
		zap.Duration("disconnect_timeout", cfg.Session.DisconnectTimeout),
	)

	srv := server.New(sessionMgr, lookup, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("starting websocket server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}

	logger.Info("match server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

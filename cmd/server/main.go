package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/netpong/internal/api"
	"github.com/mcoot/netpong/internal/factory"
	"github.com/mcoot/netpong/internal/server"
	redisstorage "github.com/mcoot/netpong/internal/storage/redis"
)

func main() {
	// A .env file is optional; real environment variables win
	envErr := godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not load .env file", slog.String("error", envErr.Error()))
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Host = getEnvOrDefault("HOST", serverCfg.Host)
	serverCfg.Port = intFromEnv(logger, "PORT", serverCfg.Port)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		Server:      serverCfg,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Bind failures are fatal; nothing after startup is
	if err := app.Server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	defer stopPublisher()
	go app.Publisher.Run(publisherCtx)

	errCh := make(chan error, 2)
	go func() {
		errCh <- app.Server.Serve(ctx)
	}()

	// Status API, disabled with API_PORT=0
	apiCfg := api.DefaultServerConfig()
	apiCfg.Host = getEnvOrDefault("API_HOST", apiCfg.Host)
	apiCfg.Port = intFromEnv(logger, "API_PORT", apiCfg.Port)

	var apiServer *api.Server
	if apiCfg.Port != 0 {
		apiServer = api.NewServer(app.API, apiCfg, logger)
		if err := apiServer.Listen(); err != nil {
			logger.Error("failed to start status api", slog.String("error", err.Error()))
			os.Exit(1)
		}
		go func() {
			errCh <- apiServer.Serve()
		}()
		logger.Info("status api started", slog.String("addr", apiServer.Addr()))
	}

	logger.Info("game server started", slog.String("addr", app.Server.Addr().String()))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("api shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}

	// Let queued directory updates land before exiting
	stopPublisher()
	<-app.Publisher.Done()

	logger.Info("server stopped")
	os.Exit(exitCode)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func intFromEnv(logger *slog.Logger, key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		logger.Error("invalid integer in environment", slog.String("key", key), slog.String("value", val))
		os.Exit(1)
	}
	return n
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

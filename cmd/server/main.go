package main

import (
	"os"
	"strconv"

	"openai2local/internal/config"
	"openai2local/internal/core"
	logpkg "openai2local/internal/log"
	"openai2local/internal/server"
	"openai2local/internal/storage"
	"openai2local/internal/util"

	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load()

	bootstrapLogger := logpkg.CreateLogger(util.GetEnvWithDefault("LOG_LEVEL", "INFO"))

	if dotenvErr != nil {
		bootstrapLogger.Warn("No .env file found, using system environment variables")
	}

	configPath := util.GetEnvWithDefault("CONFIG_FILE", core.DefaultConfigPath)
	proxyCfg, err := config.Load(configPath, bootstrapLogger)
	if err != nil {
		bootstrapLogger.Fatal("Failed to load configuration: %v", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		if parsed, parseErr := strconv.Atoi(port); parseErr == nil && parsed > 0 {
			proxyCfg.Server.Port = parsed
		} else {
			bootstrapLogger.Warn("Invalid PORT value '%s', keeping %d", port, proxyCfg.Server.Port)
		}
	}

	logger := logpkg.CreateLogger(proxyCfg.Logging.Level)
	defer func() {
		if appLog, ok := logger.(*logpkg.AppLogger); ok {
			_ = appLog.Close()
		}
	}()
	logger.Info("Logger initialized")

	storageInstance, err := storage.InitStorage(logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() { _ = storageInstance.Close() }()

	cfg := config.ServerConfig{
		Proxy:              proxyCfg,
		GinMode:            util.GetEnvWithDefault("GIN_MODE", core.DefaultGinMode),
		HTTPClientSettings: config.DefaultHTTPClientSettings(),
		Storage:            storageInstance,
		Logger:             logger,
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server: %v", err)
	}
	defer func() { _ = srv.Close() }()

	logger.Info("Starting server on %s:%d", proxyCfg.Server.Host, proxyCfg.Server.Port)
	if err := srv.Run(); err != nil {
		logger.Fatal("Server error: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"novelhub/internal/config"
	"novelhub/internal/db"
	"novelhub/internal/email"
	"novelhub/internal/logger"
	"novelhub/internal/memstore"
	"novelhub/internal/novel"
	"novelhub/internal/server"
	"novelhub/internal/settings"
	"novelhub/internal/user"
	"novelhub/internal/wallet"
)

// @title NovelHub API
// @version 1.0
// @description Serialized novels with coin-gated premium chapters.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithLevel(cfg.LogLevel)
	logger.Info("starting novelhub", "storage", cfg.StorageDriver, "port", cfg.Port)

	repos, closeStore, err := openStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	rdb := connectRedis(cfg.RedisAddr)
	if rdb != nil {
		defer rdb.Close()
	}

	var cache settings.Cache
	if rdb != nil {
		cache = settings.NewRedisCache(rdb, cfg.SettingsCacheTTL)
	}

	userService := user.NewService(repos.users, cfg.JWTSecret)
	settingsService := settings.NewService(repos.settings, cache)
	novelService := novel.NewService(repos.novels, userService, settingsService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier wallet.Notifier
	if rdb != nil {
		mailer := email.New(rdb, email.Config{
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			SMTPHost: cfg.SMTPHost,
			SMTPPort: cfg.SMTPPort,
			SMTPUser: cfg.SMTPUser,
			SMTPPass: cfg.SMTPPass,
		})
		notifier = mailer
		go mailer.Start(ctx)
	}
	walletService := wallet.NewService(repos.wallet, repos.novels, userService, settingsService, notifier)

	if cfg.AdminEmail != "" {
		if _, err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatalf("Failed to seed admin: %v", err)
		}
	}

	srv := server.New(cfg, server.Services{
		Users:    userService,
		Novels:   novelService,
		Settings: settingsService,
		Wallet:   walletService,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on :%s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("server stopped")
}

type repositories struct {
	users    user.Repository
	novels   novel.Repository
	settings settings.Repository
	wallet   wallet.Repository
}

func openStorage(cfg *config.Config) (repositories, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store, err := memstore.Open(cfg.MemoryStorePath)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("using in-memory store", "path", cfg.MemoryStorePath)
		return repositories{
			users:    store.Users(),
			novels:   store.Novels(),
			settings: store.Settings(),
			wallet:   store.Wallet(),
		}, func() {}, nil
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		database.Close()
		return repositories{}, nil, err
	}
	logger.Info("database ready")

	return postgresRepositories(database), func() { database.Close() }, nil
}

func postgresRepositories(database *sqlx.DB) repositories {
	return repositories{
		users:    user.NewRepository(database),
		novels:   novel.NewRepository(database),
		settings: settings.NewRepository(database),
		wallet:   wallet.NewRepository(database),
	}
}

// connectRedis returns nil when Redis is unreachable; settings are then read
// from storage on every request and receipts are not sent.
func connectRedis(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", addr).Warn("redis unavailable, running without cache and email")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

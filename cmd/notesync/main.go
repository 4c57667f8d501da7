package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesync/internal/offline/adapters/httpapi"
	"notesync/internal/offline/adapters/netprobe"
	"notesync/internal/offline/adapters/redisstore"
	"notesync/internal/offline/app"
	httpServer "notesync/internal/offline/app/http"
	"notesync/internal/offline/config"
	"notesync/pkg/logger"
	"notesync/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTESYNC_LOGGER_MODE"
	EnvLoggerLevel = "NOTESYNC_LOGGER_LEVEL"
)

// Ключ разделяемого хранилища с токеном доступа; жизненным циклом токена
// управляет слой аутентификации приложения, офлайн-ядро его только читает.
const authTokenKey = "auth:token"

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrCreateStore          = "failed to create key-value store"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "offline core started"
	LogServiceShutdownDone = "offline core shutdown complete"
	LogInitStore           = "initializing key-value store"
	LogInitAPIClient       = "initializing remote notes api client"
	LogInitRepository      = "initializing offline note repository"
	LogInitMonitor         = "initializing connectivity monitor"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingMonitor     = "stopping connectivity monitor"
	LogClosingStore        = "closing key-value store"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(env)),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitStore)
		store, err := redisstore.NewStore(ctx, &cfg.Storage)
		if err != nil {
			log.Error(ctx, ErrCreateStore, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitAPIClient)
		apiClient := httpapi.NewClient(&cfg.API, func(ctx context.Context) string {
			token, _, err := store.Get(ctx, authTokenKey)
			if err != nil {
				return ""
			}
			return token
		})

		log.Info(ctx, LogInitRepository)
		repo := app.NewRepository(store)

		reconciler := app.NewReconciler(repo, apiClient, app.ReconcilerOptions{
			PushTimeout: cfg.Sync.PushTimeout,
			MaxAttempts: cfg.Sync.MaxAttempts,
		})

		log.Info(ctx, LogInitMonitor)
		monitor := netprobe.NewMonitor(apiClient, &cfg.Connectivity)
		monitor.Start(ctx)

		mode := app.NewModeController(monitor, reconciler)
		mode.Start(ctx)

		notesService := app.NewNotesService(mode, repo, apiClient)

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})

		httpServer.SetupRouter(fiberApp, notesService, mode, reconciler)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return fiberApp.Shutdown()
			},
			// Остановка контроллера режима и монитора связности.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingMonitor)
				mode.Stop()
				monitor.Stop(ctx)
				return nil
			},
			// Закрытие соединения с хранилищем.
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingStore)
				return store.Close()
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skyvision-booking/internal/auth"
	"skyvision-booking/internal/config"
	"skyvision-booking/internal/events"
	"skyvision-booking/internal/files"
	"skyvision-booking/internal/http-server/router"
	"skyvision-booking/internal/lock"
	"skyvision-booking/internal/ratelimit"
	svc "skyvision-booking/internal/service"
	"skyvision-booking/internal/session"
	"skyvision-booking/internal/storage/postgres"
	redisstore "skyvision-booking/internal/storage/redis"
	"skyvision-booking/pkg/handlers/slogpretty"
	"skyvision-booking/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting booking API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	loc, err := cfg.Booking.Loc()
	if err != nil {
		log.Error("Invalid booking location", sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = storage.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		log.Error("Failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	redisClient, err := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("Failed to init redis", sl.Err(err))
		os.Exit(1)
	}

	documents, err := files.NewLocal(cfg.Files.Dir, cfg.MaxUploadBytes)
	if err != nil {
		log.Error("Failed to init document storage", sl.Err(err))
		os.Exit(1)
	}

	var publisher events.Publisher = events.Nop{}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err = events.NewKafkaPublisher(log, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
		if err != nil {
			log.Error("Failed to init kafka publisher", sl.Err(err))
			os.Exit(1)
		}
		publisher = kafkaPublisher
	} else {
		log.Info("Kafka brokers not configured, booking events are dropped")
	}

	service := svc.NewService(log, svc.Deps{
		Store:     storage,
		Locker:    lock.NewRedisLock(redisClient),
		Sessions:  session.New(redisClient, cfg.Auth.SessionTTL),
		Limiter:   ratelimit.New(redisClient, "login", cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow),
		Files:     documents,
		Publisher: publisher,
	}, svc.Options{
		LockTTL:        cfg.Booking.LockTTL,
		LockWait:       cfg.Booking.LockWait,
		Location:       loc,
		PasswordParams: auth.DefaultParams,
	})

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	err = service.EnsureAdmin(bootstrapCtx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	cancelBootstrap()
	if err != nil {
		log.Error("Failed to bootstrap admin account", sl.Err(err))
		os.Exit(1)
	}

	handler := router.New(log, service, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error("Failed to close kafka publisher", sl.Err(err))
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close redis", sl.Err(err))
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	log.Info("Shutdown finished, server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/idealservice/waste-pickup/internal/api"
	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
	"github.com/idealservice/waste-pickup/internal/core/service"
	mongodb "github.com/idealservice/waste-pickup/internal/infrastructure/db/mongo"
	redisdb "github.com/idealservice/waste-pickup/internal/infrastructure/db/redis"
	"github.com/idealservice/waste-pickup/internal/infrastructure/idealservice"
	"github.com/idealservice/waste-pickup/internal/infrastructure/memory"
	"github.com/idealservice/waste-pickup/internal/infrastructure/queue"
	"github.com/idealservice/waste-pickup/internal/infrastructure/schedule"
	"github.com/idealservice/waste-pickup/internal/pkg/config"
	"github.com/idealservice/waste-pickup/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the refresh scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func initLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return logger.Init(logger.Options{
		Level:   level,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	var (
		repo ports.EntryRepository = memory.NewEntryRepository()
		mdb  *mongo.Database
	)
	if cfg.StoreBackend == config.StoreMongo {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = mongodb.Disconnect(client) }()

		entries := mongodb.NewEntryRepository(db)
		if err := entries.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		repo, mdb = entries, db
		log.Info().Str("database", cfg.Mongo.Database).Msg("calendar entries stored in mongodb")
	}

	var (
		throttle ports.RefreshThrottle = memory.NewRefreshThrottle(cfg.IdealService.ManualRefreshCooldown)
		rdb      *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		throttle = redisdb.NewRefreshThrottle(rdb, cfg.IdealService.ManualRefreshCooldown)
	}

	// --- IdealService ---
	session := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	defer session.CloseIdleConnections()

	clientLog := logger.Component("idealservice")
	newClient := func(key domain.CalendarKey) ports.CalendarClient {
		return idealservice.NewClient(key,
			idealservice.WithSession(session),
			idealservice.WithBaseURL(cfg.IdealService.BaseURL),
			idealservice.WithTimeout(cfg.IdealService.Timeout),
			idealservice.WithLogger(clientLog),
		)
	}

	// --- Scheduling ---
	dispatcher := queue.NewDispatcher(cfg.IdealService.Workers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	scheduler := schedule.New(ctx, dispatcher, logger.Component("scheduler"))

	svc := service.NewCalendarService(repo, newClient, scheduler, throttle, service.Config{
		RefreshInterval:    cfg.IdealService.RefreshInterval,
		SetupRetryInterval: cfg.IdealService.SetupRetryInterval,
		Fetch:              ports.FetchOptions{Days: cfg.IdealService.Days, Offset: cfg.IdealService.Offset},
	}, logger.Component("calendars"))

	if err := svc.Start(ctx); err != nil {
		return err
	}
	if cfg.CalendarsFile != "" {
		keys, err := config.LoadCalendars(cfg.CalendarsFile)
		if err != nil {
			return err
		}
		svc.Import(ctx, keys)
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Service:   svc,
		Log:       logger.Component("http"),
		JWTSecret: cfg.JWTSecret,
		Mongo:     mdb,
		Redis:     rdb,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown")
	}
	svc.Shutdown()
	scheduler.Wait()

	return nil
}

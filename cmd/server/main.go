package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/astroline/admin-gateway/internal/api"
	"github.com/astroline/admin-gateway/internal/api/cookie"
	"github.com/astroline/admin-gateway/internal/core/service"
	"github.com/astroline/admin-gateway/internal/infrastructure/config"
	mongodb "github.com/astroline/admin-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/astroline/admin-gateway/internal/infrastructure/db/redis"
	"github.com/astroline/admin-gateway/internal/infrastructure/queue"
	"github.com/astroline/admin-gateway/internal/upstream"
	"github.com/astroline/admin-gateway/pkg/logger"
)

func main() {
	// A missing .env is fine; the environment may be populated directly.
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}

	logg := logger.Init(cfg.LogLevel, !cfg.IsProduction())
	logg.Info().Str("env", cfg.Env).Msg("starting admin gateway")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("could not connect to redis")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("could not connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	client, err := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("invalid upstream configuration")
	}

	// --- Wiring ---
	store := redisdb.NewSessionStore(rdb, cfg.SessionTTL)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Window)

	auditRepo := mongodb.NewAuditRepository(db)
	dispatcher := queue.NewDispatcher(0, auditRepo, logg)
	dispatcher.Start(ctx)

	sessions := service.NewSessionService(store, client, throttle, dispatcher, logg)
	codec := cookie.NewCodec(cfg.CookieSecret, cfg.SessionTTL, cfg.IsProduction())

	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Store:    store,
		Client:   client,
		Codec:    codec,
		Audit:    dispatcher,
		Auditor:  auditRepo,
		Redis:    rdb,
		Mongo:    db,
		Upstream: client,
		Log:      logg,
	})

	go func() {
		logg.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("graceful shutdown failed")
	}
}

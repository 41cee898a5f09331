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
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/config"
	"github.com/iliyamo/siddu-catalog/internal/database"
	"github.com/iliyamo/siddu-catalog/internal/events"
	"github.com/iliyamo/siddu-catalog/internal/handler"
	"github.com/iliyamo/siddu-catalog/internal/logger"
	"github.com/iliyamo/siddu-catalog/internal/middleware"
	"github.com/iliyamo/siddu-catalog/internal/repository"
	"github.com/iliyamo/siddu-catalog/internal/router"
	"github.com/iliyamo/siddu-catalog/internal/service"
	"github.com/iliyamo/siddu-catalog/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catCfg, err := config.LoadCatalogConfig(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog config")
	}

	checks := map[string]handler.Check{}

	var (
		movies repository.MovieStore
		users  repository.UserStore
		tokens repository.TokenStore
	)
	switch cfg.Storage {
	case config.StorageMySQL:
		dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if cfg.DBMigrate {
			if err := database.Migrate(dsn); err != nil {
				log.Fatal().Err(err).Msg("migrate")
			}
			log.Info().Msg("migrations applied")
		}
		db, err := database.Open(ctx, dsn, database.Pool{MaxOpen: cfg.DBMaxOpen, MaxLifetime: cfg.DBMaxLifetime})
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
		checks["mysql"] = db.PingContext
		movies = repository.NewMovieRepo(db)
		users = repository.NewUserRepo(db)
		tokens = repository.NewTokenRepo(db)
	default:
		mem := repository.NewMemoryMovieStore(repository.SeedMovies()...)
		mem.Latency = catCfg.StoreLatency
		acc := repository.NewMemoryAccounts()
		movies, users, tokens = mem, acc, acc
		log.Warn().Msg("using in-memory storage; data is lost on restart")
	}

	if err := handler.EnsureAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}

	rdb := config.NewRedisClient()
	var sessions session.Store
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		sessions = session.NewRedisStore(rdb, catCfg.SessionPrefix, catCfg.WorkspaceTTL, catCfg.LockTTL, catCfg.DefaultPageSize)
	} else {
		log.Warn().Msg("redis unavailable; workspaces are kept in memory, cache and rate limit disabled")
		sessions = session.NewMemoryStore(catCfg.WorkspaceTTL, catCfg.DefaultPageSize)
	}

	var pub service.Publisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub = service.NewRabbitPublisher(cfg.RabbitURL)
		go func() {
			if err := events.StartAuditConsumer(ctx, cfg.RabbitURL, cfg.AuditLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	e := newServer(rdb)
	router.RegisterRoutes(e, checks)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewPublicHandler(movies, catCfg.MaxPageSize),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterAdmin(e, handler.NewCatalogHandler(movies, sessions, pub, catalog.Options{
		MaxPageSize:      catCfg.MaxPageSize,
		BatchConcurrency: catCfg.BatchConcurrency,
	}), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("storage", cfg.Storage).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("stopped")
}

func newServer(rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		middleware.CorrelationID(),
		middleware.AccessLog(),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)
	return e
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"smart_places/internal/adapters/catalog"
	server "smart_places/internal/adapters/http_server"
	"smart_places/internal/adapters/observability"
	redisad "smart_places/internal/adapters/redis"
	"smart_places/internal/app"
	"smart_places/internal/domain"
	"smart_places/internal/ranking"
	"smart_places/internal/shared"
	"smart_places/internal/storage/memory"
	mysqlrepo "smart_places/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	engine := ranking.New(cfg.Ranking)

	var repo domain.VenueRepository
	switch cfg.Storage {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	default:
		repo = memory.New()
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving without cache")
		} else {
			cache = rc
		}
		cancel()
	}

	// An in-memory store starts empty, so load the catalog into it first.
	if cfg.Storage == "memory" {
		src, err := catalog.Open(cfg.CatalogSource, cfg.CatalogFile, cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("catalog source")
		}
		stats, err := app.NewIngestionService(src, repo, cache, engine).IngestAll(ctx, cfg.Workers, cfg.ReviewCount)
		if err != nil {
			log.Fatal().Err(err).Msg("catalog load failed")
		}
		log.Info().Int("ok", stats.OK).Int("missed", stats.Missed).Int("invalid", stats.Invalid).
			Int("failed", stats.Failed).Msg("catalog loaded")
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL, engine)

	srv := server.New(server.Options{Origins: cfg.Origins(), RateLimitPerMinute: cfg.RateLimitPerMinute})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage).Bool("cache", cache != nil).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"smart_places/internal/adapters/catalog"
	"smart_places/internal/adapters/observability"
	redisad "smart_places/internal/adapters/redis"
	"smart_places/internal/app"
	"smart_places/internal/domain"
	"smart_places/internal/ranking"
	"smart_places/internal/shared"
	mysqlrepo "smart_places/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.Storage != "mysql" {
		log.Fatal().Str("storage", cfg.Storage).Msg("ingestor needs persistent storage; set STORAGE=mysql")
	}

	log.Info().
		Str("source", cfg.CatalogSource).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Msg("ingestor starting")

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
	log.Info().Msg("db ping ok")

	src, err := catalog.Open(cfg.CatalogSource, cfg.CatalogFile, cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog source")
	}

	// API instances cache ranked pages; clear them once new data lands.
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	ing := app.NewIngestionService(src, mysqlrepo.New(db), cache, ranking.New(cfg.Ranking))
	stats, err := ing.IngestAll(ctx, cfg.Workers, cfg.ReviewCount)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion aborted")
	}
	log.Info().
		Int("ok", stats.OK).
		Int("missed", stats.Missed).
		Int("invalid", stats.Invalid).
		Int("failed", stats.Failed).
		Msg("ingestion completed")
}

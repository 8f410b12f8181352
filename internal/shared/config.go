package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"smart_places/internal/ranking"
)

const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	AppEnv      string `koanf:"app_env"`
	LogLevel    string `koanf:"log_level"`
	HTTPAddr    string `koanf:"http_addr" validate:"required"`
	MetricsAddr string `koanf:"metrics_addr"`

	Storage  string `koanf:"storage" validate:"oneof=memory mysql"`
	MySQLDSN string `koanf:"mysql_dsn" validate:"required_if=Storage mysql"`

	RedisAddr string `koanf:"redis_addr"` // empty disables caching
	RedisPass string `koanf:"redis_password"`
	RedisDB   int    `koanf:"redis_db"`

	CatalogSource string `koanf:"catalog_source" validate:"oneof=seed feed"`
	CatalogFile   string `koanf:"catalog_file"` // overrides the embedded seed
	FeedBase      string `koanf:"feed_base_url" validate:"required_if=CatalogSource feed"`
	FeedKey       string `koanf:"feed_api_key"`
	FeedRPS       int    `koanf:"feed_rps" validate:"gte=0"`

	Workers     int `koanf:"ingest_workers" validate:"gte=1"`
	ReviewCount int `koanf:"ingest_review_count" validate:"gte=0"`

	CacheTTLSeconds int           `koanf:"cache_ttl_seconds" validate:"gte=0"`
	CacheTTL        time.Duration `koanf:"-"`

	CORSOrigins        string `koanf:"cors_origins"` // comma separated
	RateLimitPerMinute int    `koanf:"rate_limit_per_minute" validate:"gte=0"`

	Ranking ranking.Policy `koanf:"ranking"`
}

func defaults() Config {
	return Config{
		AppEnv:             "prod",
		LogLevel:           "info",
		HTTPAddr:           ":8080",
		MetricsAddr:        "",
		Storage:            "memory",
		MySQLDSN:           "root:root@tcp(localhost:3306)/places?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:          "",
		CatalogSource:      "seed",
		FeedRPS:            5,
		Workers:            8,
		ReviewCount:        50,
		CacheTTLSeconds:    300,
		CORSOrigins:        "*",
		RateLimitPerMinute: 300,
		Ranking:            ranking.DefaultPolicy(),
	}
}

// Load layers struct defaults, an optional YAML file and the environment
// (HTTP_ADDR, MYSQL_DSN, RANKING_RATING_WEIGHT, ...), later layers winning.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.CacheTTL = time.Duration(c.CacheTTLSeconds) * time.Second

	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.CatalogSource == "feed" && c.FeedKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c, nil
}

// Origins splits CORSOrigins, dropping blanks.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func configPath() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps REDIS_ADDR to redis_addr and RANKING_RATING_WEIGHT to ranking.rating_weight.
func envKey(key string) string {
	key = strings.ToLower(key)
	if rest, ok := strings.CutPrefix(key, "ranking_"); ok {
		return "ranking." + rest
	}
	return key
}

package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string

	CacheBackend string // "redis" or "memory"
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration

	OutputDir string

	AIAPIKey      string
	AIBaseURL     string
	AITextModel   string
	AIImageModel  string
	ImageProvider string // "auto", "inference", "pollinations"

	ChromeBin string
	Workers   int
}

func Load() Config {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/brochures?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		CacheBackend: env("CACHE_BACKEND", "redis"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisDB:      atoi("REDIS_DB", 0),
		RedisPass:    env("REDIS_PASSWORD", ""),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		OutputDir: env("OUTPUT_DIR", "output"),

		AIAPIKey:      env("AI_API_KEY", ""),
		AIBaseURL:     env("AI_BASE_URL", ""),
		AITextModel:   env("AI_TEXT_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
		AIImageModel:  env("AI_IMAGE_MODEL", "stabilityai/stable-diffusion-xl-base-1.0"),
		ImageProvider: env("IMAGE_PROVIDER", "auto"),

		ChromeBin: env("CHROME_BIN", ""),
		Workers:   atoi("GEN_WORKERS", 4),
	}
	if c.AIAPIKey == "" {
		log.Warn().Msg("AI_API_KEY is empty; copy and patches fall back to templates")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

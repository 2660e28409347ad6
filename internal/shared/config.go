package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMySQL = "mysql"
)

// Config is the runtime environment of the connector process. The connector's
// own configuration (app id, languages, start date) comes from LoadSourceConfig.
type Config struct {
	AppEnv       string
	MetricsAddr  string
	PlayBase     string
	PlayRPS      int
	MaxRetries   int
	Backoff      time.Duration
	HTTPTimeout  time.Duration
	StateBackend string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	MySQLDSN     string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		PlayBase:     env("PLAY_BASE_URL", "https://play.google.com"),
		PlayRPS:      atoi("PLAY_RPS", 5),
		MaxRetries:   atoi("PLAY_MAX_RETRIES", 3),
		Backoff:      time.Duration(atoi("PLAY_BACKOFF_MS", 200)) * time.Millisecond,
		HTTPTimeout:  time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		StateBackend: env("STATE_BACKEND", BackendFile),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/playreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
	}
	switch c.StateBackend {
	case BackendFile, BackendRedis, BackendMySQL:
	default:
		log.Warn().Str("backend", c.StateBackend).Msg("unknown STATE_BACKEND, using file")
		c.StateBackend = BackendFile
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

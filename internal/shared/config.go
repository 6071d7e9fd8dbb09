package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	DataDir        string
	DefaultLang    string
	SupportedLangs []string
	DataVersion    int

	SnapshotBackend string // redis|mysql
	SnapshotKey     string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	MySQLDSN        string

	ConnectivityURL     string
	ConnectivityRPS     int
	ConnectivityTimeout time.Duration
	ForceOffline        bool

	SyncTimeout time.Duration
	WarmWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		DataDir:        env("DATA_DIR", "./data"),
		DefaultLang:    strings.ToUpper(env("DEFAULT_LANG", "EN")),
		SupportedLangs: list(env("SUPPORTED_LANGS", "EN,SL,DE,NL")),
		DataVersion:    atoi("DATA_VERSION", 7),

		SnapshotBackend: strings.ToLower(env("SNAPSHOT_BACKEND", "redis")),
		SnapshotKey:     env("SNAPSHOT_KEY", "visit-polzela:pois"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/polzela?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		ConnectivityURL:     env("CONNECTIVITY_URL", ""),
		ConnectivityRPS:     atoi("CONNECTIVITY_RPS", 5),
		ConnectivityTimeout: time.Duration(atoi("CONNECTIVITY_TIMEOUT_MS", 3000)) * time.Millisecond,
		ForceOffline:        boolean(env("FORCE_OFFLINE", "false")),

		SyncTimeout: time.Duration(atoi("SYNC_TIMEOUT_SECONDS", 10)) * time.Second,
		WarmWorkers: atoi("WARM_WORKERS", 4),
	}
	if c.SnapshotBackend != "redis" && c.SnapshotBackend != "mysql" {
		log.Warn().Str("backend", c.SnapshotBackend).Msg("unknown SNAPSHOT_BACKEND, using redis")
		c.SnapshotBackend = "redis"
	}
	if c.ConnectivityURL == "" && !c.ForceOffline {
		log.Warn().Msg("CONNECTIVITY_URL is empty; assuming always online")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func boolean(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

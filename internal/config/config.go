package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":3000"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	UpstreamURL     string        // dataset source endpoint (required)
	UpstreamTimeout time.Duration // timeout for one upstream fetch (default: 30s)
	RefreshMinute   int           // wall-clock minute of each hour to refresh (default: 59)
	SnapshotFile    string        // path of the on-disk dataset snapshot

	ProbeTimeout time.Duration // whole-request bound for /check probes (default: 10s)

	UsersFile string // path to the credentials yaml for /login

	// Rate limiting for /check (it triggers outbound traffic).
	CheckBurst        int
	CheckRefillPerMin int

	// TLS material. If both files exist the server runs HTTPS,
	// otherwise it falls back to plaintext.
	TLSCertFile string
	TLSKeyFile  string

	// Redis snapshot backend (optional). Empty addr => file snapshot.
	RedisAddr         string
	RedisUser         string
	RedisPassword     string
	RedisDB           int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration
	RedisPingTimeout  time.Duration
	RedisPoolSize     int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("EDGE_LISTEN_PORT", ":3000"),
		ShutdownTimeout: mustDuration("EDGE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("EDGE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("EDGE_PRETTY_LOG", true),

		// Dataset refresh
		UpstreamURL:     requireEnv("EDGE_UPSTREAM_URL"),
		UpstreamTimeout: mustDuration("EDGE_UPSTREAM_TIMEOUT", 30*time.Second),
		RefreshMinute:   getenvInt("EDGE_REFRESH_MINUTE", 59),
		SnapshotFile:    getenv("EDGE_SNAPSHOT_FILE", "data-cache.json"),

		// Probing
		ProbeTimeout: mustDuration("EDGE_PROBE_TIMEOUT", 10*time.Second),

		// Auth
		UsersFile: getenv("EDGE_USERS_FILE", "users.yaml"),

		// /check rate limiting
		CheckBurst:        getenvInt("EDGE_CHECK_BURST", 10),
		CheckRefillPerMin: getenvInt("EDGE_CHECK_REFILL_PER_MIN", 30),

		// TLS
		TLSCertFile: getenv("EDGE_TLS_CERT_FILE", "/home/nodeapp/cert/fullchain.pem"),
		TLSKeyFile:  getenv("EDGE_TLS_KEY_FILE", "/home/nodeapp/cert/private.key"),

		// Redis snapshot backend (optional)
		RedisAddr:         getenv("EDGE_REDIS_ADDR", ""),
		RedisUser:         getenv("EDGE_REDIS_USERNAME", "default"),
		RedisPassword:     getenv("EDGE_REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("EDGE_REDIS_DB", 0),
		RedisDialTimeout:  mustDuration("EDGE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:  mustDuration("EDGE_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout: mustDuration("EDGE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPingTimeout:  mustDuration("EDGE_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:     getenvInt("EDGE_REDIS_POOL_SIZE", 10),
	}

	if cfg.RefreshMinute < 0 || cfg.RefreshMinute > 59 {
		panic(fmt.Sprintf("❌ FATAL: EDGE_REFRESH_MINUTE must be 0-59, got %d", cfg.RefreshMinute))
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

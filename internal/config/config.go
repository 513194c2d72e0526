package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SourcesFile string // path to the scraper source catalog (YAML)
	DatabaseDSN string // sqlite DSN, ex: "data/natowatch.db" or ":memory:"

	// Scraper
	ScrapeTimeout    time.Duration // per HTTP fetch (discovery and detail pages)
	ScrapeDelay      time.Duration // pause between detail fetches, politeness
	ScrapeParallel   int           // max concurrent item processing per run
	LeaseTTL         time.Duration // scrape run lease duration
	ListCacheTTL     time.Duration // opportunity list response cache TTL
	SchedulerEnabled bool          // false => API only, no periodic scraping

	// Rate limiting for public write endpoints
	RateLimitBurst  int
	RateLimitPerMin int
	TrustProxy      bool

	// Redis
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NW_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("NW_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("NW_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NW_PRETTY_LOG", false),

		// Storage
		SourcesFile: getenv("NW_SOURCES_FILE", "sources.yaml"),
		DatabaseDSN: getenv("NW_DATABASE_DSN", "data/natowatch.db"),

		// Scraper
		ScrapeTimeout:    mustDuration("NW_SCRAPE_TIMEOUT", 30*time.Second),
		ScrapeDelay:      mustDuration("NW_SCRAPE_DELAY", 2*time.Second),
		ScrapeParallel:   getenvInt("NW_SCRAPE_PARALLEL", 4),
		LeaseTTL:         mustDuration("NW_SCRAPE_LEASE_TTL", 30*time.Minute),
		ListCacheTTL:     mustDuration("NW_LIST_CACHE_TTL", 5*time.Minute),
		SchedulerEnabled: mustBool("NW_SCHEDULER_ENABLED", true),

		// Rate limiting
		RateLimitBurst:  getenvInt("NW_RATE_LIMIT_BURST", 5),
		RateLimitPerMin: getenvInt("NW_RATE_LIMIT_PER_MIN", 10),
		TrustProxy:      mustBool("NW_TRUST_PROXY", false),

		// Redis settings
		RedisAddr:           requireEnv("NW_REDIS_ADDR"),
		RedisUser:           getenv("NW_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("NW_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("NW_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
	}

	if cfg.ScrapeParallel < 1 {
		cfg.ScrapeParallel = 1
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

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store kinds accepted by FRIENDSD_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Server captures process level configuration.
type Server struct {
	Addr      string `env:"FRIENDSD_ADDR" envDefault:":8080"`
	LogLevel  string `env:"FRIENDSD_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FRIENDSD_LOG_FORMAT" envDefault:"json"`

	Store        string        `env:"FRIENDSD_STORE" envDefault:"sqlite"`
	SQLitePath   string        `env:"FRIENDSD_SQLITE_PATH" envDefault:"friends.db"`
	DatabaseURL  string        `env:"FRIENDSD_DATABASE_URL"`
	StoreTimeout time.Duration `env:"FRIENDSD_STORE_TIMEOUT" envDefault:"3s"`

	InvitationTTL time.Duration `env:"FRIENDSD_INVITATION_TTL" envDefault:"120s"`
	SweepInterval time.Duration `env:"FRIENDSD_SWEEP_INTERVAL" envDefault:"15s"`
	NoticeBuffer  int           `env:"FRIENDSD_NOTICE_BUFFER" envDefault:"64"`

	Resolver Resolver
	Redis    RedisConfig
	Kafka    Kafka
	Tracing  Tracing

	// HostTokenKey enables HS256 bearer auth for the host API when set.
	HostTokenKey string `env:"FRIENDSD_HOST_TOKEN_KEY"`
}

// Resolver configures the remote profile lookup.
type Resolver struct {
	URL      string        `env:"FRIENDSD_RESOLVER_URL" envDefault:"https://api.mojang.com"`
	Timeout  time.Duration `env:"FRIENDSD_RESOLVER_TIMEOUT" envDefault:"5s"`
	CacheTTL time.Duration `env:"FRIENDSD_RESOLVER_CACHE_TTL" envDefault:"10m"`
}

// RedisConfig configures the optional second cache tier. An empty URL
// disables Redis.
type RedisConfig struct {
	URL          string        `env:"FRIENDSD_REDIS_URL"`
	PoolSize     int           `env:"FRIENDSD_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"FRIENDSD_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"FRIENDSD_REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout  time.Duration `env:"FRIENDSD_REDIS_READ_TIMEOUT" envDefault:"1s"`
	WriteTimeout time.Duration `env:"FRIENDSD_REDIS_WRITE_TIMEOUT" envDefault:"1s"`
}

// Kafka configures the audit sink. No brokers means audit events are only
// logged.
type Kafka struct {
	Brokers []string `env:"FRIENDSD_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"FRIENDSD_KAFKA_TOPIC" envDefault:"friendsd.audit"`
}

// Tracing configures OTLP span export. An empty endpoint disables it.
type Tracing struct {
	Endpoint    string `env:"FRIENDSD_OTEL_ENDPOINT"`
	ServiceName string `env:"FRIENDSD_OTEL_SERVICE_NAME" envDefault:"friendsd"`
}

// FromEnv parses and validates the process configuration.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Server) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: FRIENDSD_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return fmt.Errorf("config: FRIENDSD_SQLITE_PATH is required for the sqlite store")
	}

	durations := map[string]time.Duration{
		"FRIENDSD_STORE_TIMEOUT":      c.StoreTimeout,
		"FRIENDSD_INVITATION_TTL":     c.InvitationTTL,
		"FRIENDSD_SWEEP_INTERVAL":     c.SweepInterval,
		"FRIENDSD_RESOLVER_TIMEOUT":   c.Resolver.Timeout,
		"FRIENDSD_RESOLVER_CACHE_TTL": c.Resolver.CacheTTL,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	if c.NoticeBuffer <= 0 {
		return fmt.Errorf("config: FRIENDSD_NOTICE_BUFFER must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Bot      BotConfig
	Gateway  GatewayConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects where the snapshot lives.
type StoreConfig struct {
	Backend       string
	File          string
	MigrationsDir string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SnapshotKey string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// BotConfig holds conversation-level settings.
type BotConfig struct {
	OperatorIDs            []int64
	DefaultStopWorkMessage string
	Timezone               string
	EventShards            int
	EventQueueDepth        int
	EventTimeoutSeconds    int
	AuditCapacity          int
}

// GatewayConfig describes the messaging gateway credentials and endpoint.
type GatewayConfig struct {
	Secret          string
	OutboundURL     string
	TokenTTLMinutes int
	TimeoutSeconds  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	operators, err := parseOperatorIDs(os.Getenv("BOT_OPERATOR_IDS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),
			File:          getEnv("STORE_FILE", "data/db.json"),
			MigrationsDir: getEnv("STORE_MIGRATIONS_DIR", "migrations"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			SnapshotKey: getEnv("REDIS_SNAPSHOT_KEY", "helpdesk:snapshot"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Bot: BotConfig{
			OperatorIDs:            operators,
			DefaultStopWorkMessage: getEnv("STOP_WORK_MESSAGE", "Бот временно не принимает команды. Попробуйте позже."),
			Timezone:               getEnv("BOT_TIMEZONE", "Europe/Moscow"),
			EventShards:            getEnvAsInt("BOT_EVENT_SHARDS", 4),
			EventQueueDepth:        getEnvAsInt("BOT_EVENT_QUEUE_DEPTH", 64),
			EventTimeoutSeconds:    getEnvAsInt("BOT_EVENT_TIMEOUT_SECONDS", 15),
			AuditCapacity:          getEnvAsInt("BOT_AUDIT_CAPACITY", 200),
		},
		Gateway: GatewayConfig{
			Secret:          os.Getenv("GATEWAY_SECRET"),
			OutboundURL:     os.Getenv("GATEWAY_OUTBOUND_URL"),
			TokenTTLMinutes: getEnvAsInt("GATEWAY_TOKEN_TTL_MINUTES", 5),
			TimeoutSeconds:  getEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 10),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Gateway.Secret == "" {
		return fmt.Errorf("GATEWAY_SECRET is required")
	}
	switch c.Store.Backend {
	case BackendFile, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (b BotConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EventTimeout bounds the handling of one inbound event.
func (b BotConfig) EventTimeout() time.Duration {
	if b.EventTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.EventTimeoutSeconds) * time.Second
}

// Timeout returns the outbound delivery timeout.
func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// parseOperatorIDs reads a comma-separated id list; blanks are skipped.
func parseOperatorIDs(value string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BOT_OPERATOR_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

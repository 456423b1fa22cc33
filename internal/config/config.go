package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Profile store backends
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Host        string
	Port        string
	UseTLS      bool
	TLSCert     string
	TLSKey      string
	FrontendURL string

	LogLevel  string
	LogPretty bool

	ProfileBackend  string
	MongoDBURL      string
	MongoDBDatabase string
	SQLitePath      string
	PostgresDSN     string
	RedisURL        string

	SecretKey       string
	ProfileTokenTTL time.Duration

	Game GameConfig
}

// GameConfig holds the simulation tunables
type GameConfig struct {
	BroadcastInterval  time.Duration
	BotThinkInterval   time.Duration
	BotCount           int
	MaxShotRange       float64
	DefaultShotDamage  float64
	HeadshotMultiplier float64
	BotDamage          float64
	BotLOSRetry        time.Duration
}

// DefaultGameConfig returns the tunables the stock map is balanced for
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BroadcastInterval:  DefaultBroadcastInterval,
		BotThinkInterval:   DefaultBotThinkInterval,
		BotCount:           DefaultBotCount,
		MaxShotRange:       DefaultMaxRange,
		DefaultShotDamage:  DefaultShotDamage,
		HeadshotMultiplier: DefaultHeadshot,
		BotDamage:          DefaultBotDamage,
		BotLOSRetry:        DefaultBotLOSRetry,
	}
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	game := DefaultGameConfig()

	v.SetDefault("host", "localhost")
	v.SetDefault("port", "3000")
	v.SetDefault("use_tls", false)
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("profile_backend", BackendMemory)
	v.SetDefault("mongodb_url", "")
	v.SetDefault("mongodb_database", "blazefield")
	v.SetDefault("sqlite_path", "profiles.db")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("profile_token_ttl", "720h")

	v.SetDefault("broadcast_interval", game.BroadcastInterval.String())
	v.SetDefault("bot_think_interval", game.BotThinkInterval.String())
	v.SetDefault("bot_count", game.BotCount)
	v.SetDefault("max_shot_range", game.MaxShotRange)
	v.SetDefault("default_shot_damage", game.DefaultShotDamage)
	v.SetDefault("headshot_multiplier", game.HeadshotMultiplier)
	v.SetDefault("bot_damage", game.BotDamage)
	v.SetDefault("bot_los_retry", game.BotLOSRetry.String())
}

// LoadConfig loads configuration from .env, an optional config file and the environment
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	defaults := DefaultGameConfig()

	return &Config{
		Host:            v.GetString("host"),
		Port:            v.GetString("port"),
		UseTLS:          v.GetBool("use_tls"),
		TLSCert:         v.GetString("tls_cert"),
		TLSKey:          v.GetString("tls_key"),
		FrontendURL:     v.GetString("frontend_url"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
		ProfileBackend:  strings.ToLower(v.GetString("profile_backend")),
		MongoDBURL:      v.GetString("mongodb_url"),
		MongoDBDatabase: v.GetString("mongodb_database"),
		SQLitePath:      v.GetString("sqlite_path"),
		PostgresDSN:     v.GetString("postgres_dsn"),
		RedisURL:        v.GetString("redis_url"),
		SecretKey:       v.GetString("secret_key"),
		ProfileTokenTTL: positiveDuration(v.GetDuration("profile_token_ttl"), 720*time.Hour),
		Game: GameConfig{
			BroadcastInterval:  positiveDuration(v.GetDuration("broadcast_interval"), defaults.BroadcastInterval),
			BotThinkInterval:   positiveDuration(v.GetDuration("bot_think_interval"), defaults.BotThinkInterval),
			BotCount:           nonNegativeInt(v.GetInt("bot_count"), defaults.BotCount),
			MaxShotRange:       positiveFloat(v.GetFloat64("max_shot_range"), defaults.MaxShotRange),
			DefaultShotDamage:  positiveFloat(v.GetFloat64("default_shot_damage"), defaults.DefaultShotDamage),
			HeadshotMultiplier: positiveFloat(v.GetFloat64("headshot_multiplier"), defaults.HeadshotMultiplier),
			BotDamage:          positiveFloat(v.GetFloat64("bot_damage"), defaults.BotDamage),
			BotLOSRetry:        positiveDuration(v.GetDuration("bot_los_retry"), defaults.BotLOSRetry),
		},
	}
}

// Validate checks that the selected profile backend has what it needs
func (c *Config) Validate() error {
	switch c.ProfileBackend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoDBURL == "" {
			return errors.New("MONGODB_URL is required for the mongo profile backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite profile backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres profile backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis profile backend")
		}
	default:
		return fmt.Errorf("unknown PROFILE_BACKEND %q", c.ProfileBackend)
	}

	if c.UseTLS && (c.TLSCert == "" || c.TLSKey == "") {
		return errors.New("TLS enabled but TLS_CERT or TLS_KEY not provided")
	}
	return nil
}

func positiveDuration(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

func positiveFloat(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}

func nonNegativeInt(value, fallback int) int {
	if value < 0 {
		return fallback
	}
	return value
}

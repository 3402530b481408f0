package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
	StorageRedis  = "redis"
	StorageNone   = "none"
)

const (
	CompletePolicyAny      = "any"
	CompletePolicyAssigned = "assigned"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Backend string
	Seed    bool
}

type AuthConfig struct {
	AccessSecret       string
	AccessTTL          time.Duration
	SharedPassword     string
	SharedPasswordHash string
}

type CollectionsConfig struct {
	CompletePolicy string
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Collections CollectionsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("STORAGE_SEED", true)

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("HTTP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			Seed:    v.GetBool("STORAGE_SEED"),
		},
		Auth: AuthConfig{
			AccessSecret:       v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:          v.GetDuration("JWT_ACCESS_TTL"),
			SharedPassword:     v.GetString("AUTH_SHARED_PASSWORD"),
			SharedPasswordHash: v.GetString("AUTH_SHARED_PASSWORD_HASH"),
		},
		Collections: CollectionsConfig{
			CompletePolicy: strings.ToLower(strings.TrimSpace(v.GetString("COLLECTIONS_COMPLETE_POLICY"))),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageMemory
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 12 * time.Hour
	}
	if cfg.Auth.SharedPassword == "" && cfg.Auth.SharedPasswordHash == "" {
		cfg.Auth.SharedPassword = "password123"
	}
	if cfg.Collections.CompletePolicy == "" {
		cfg.Collections.CompletePolicy = CompletePolicyAny
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Storage.Backend {
	case StorageMemory, StorageNone:
	case StorageSQL:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required for sql storage")
		}
	case StorageRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
	switch cfg.Collections.CompletePolicy {
	case CompletePolicyAny, CompletePolicyAssigned:
	default:
		return fmt.Errorf("unknown COLLECTIONS_COMPLETE_POLICY %q", cfg.Collections.CompletePolicy)
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

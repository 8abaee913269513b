package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "JEWELRY"

	EnvAppEnv         = "JEWELRY_APP_ENV"
	EnvPort           = "JEWELRY_APP_PORT"
	EnvLogFormat      = "JEWELRY_LOG_FORMAT"
	EnvRemoteBaseURL  = "JEWELRY_REMOTE_BASE_URL"
	EnvRemoteTimeout  = "JEWELRY_REMOTE_TIMEOUT"
	EnvCacheDriver    = "JEWELRY_CACHE_DRIVER"
	EnvCacheSQLite    = "JEWELRY_CACHE_SQLITE_PATH"
	EnvRedisURL       = "JEWELRY_REDIS_URL"
	EnvRedisAddr      = "JEWELRY_REDIS_ADDR"
	EnvMediaMaxMB     = "JEWELRY_MEDIA_MAX_UPLOAD_MB"
	EnvMediaQuality   = "JEWELRY_MEDIA_JPEG_QUALITY"
	EnvNotifyInterval = "JEWELRY_NOTIFICATIONS_POLL_INTERVAL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CacheDriverMemory = "memory"
	CacheDriverSQLite = "sqlite"
	CacheDriverRedis  = "redis"
)

type Config struct {
	App           AppConfig
	Remote        RemoteConfig
	Cache         CacheConfig
	Redis         RedisConfig
	Media         MediaConfig
	Notifications NotificationsConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case CacheDriverMemory, CacheDriverSQLite:
	case CacheDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required when %s=redis", EnvRedisURL, EnvRedisAddr, EnvCacheDriver)
		}
	default:
		return fmt.Errorf("%s must be one of memory, sqlite, redis (got %q)", EnvCacheDriver, c.Cache.Driver)
	}
	if c.Cache.Driver == CacheDriverSQLite && strings.TrimSpace(c.Cache.SQLitePath) == "" {
		return fmt.Errorf("%s is required when %s=sqlite", EnvCacheSQLite, EnvCacheDriver)
	}
	if c.Media.JPEGQuality < 1 || c.Media.JPEGQuality > 100 {
		return fmt.Errorf("%s must be between 1 and 100", EnvMediaQuality)
	}
	if c.Media.MaxUploadMB <= 0 {
		return fmt.Errorf("%s must be positive", EnvMediaMaxMB)
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("%s must be json or console (got %q)", EnvLogFormat, c.App.LogFormat)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"JEWELRY_APP_ENV" default:"dev"`
	Port         string `envconfig:"JEWELRY_APP_PORT" default:"8787"`
	LogLevel     string `envconfig:"JEWELRY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"JEWELRY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"JEWELRY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RemoteConfig points at the shop backend. A zero Timeout keeps the HTTP client's default (none).
type RemoteConfig struct {
	BaseURL string        `envconfig:"JEWELRY_REMOTE_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"JEWELRY_REMOTE_TIMEOUT" default:"0s"`
}

type CacheConfig struct {
	Driver     string `envconfig:"JEWELRY_CACHE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"JEWELRY_CACHE_SQLITE_PATH" default:"jewelry-admin.db"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JEWELRY_REDIS_URL"`
	Address      string        `envconfig:"JEWELRY_REDIS_ADDR"`
	Password     string        `envconfig:"JEWELRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"JEWELRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JEWELRY_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"JEWELRY_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"JEWELRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JEWELRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JEWELRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"JEWELRY_MEDIA_MAX_UPLOAD_MB" default:"5"`
	JPEGQuality int `envconfig:"JEWELRY_MEDIA_JPEG_QUALITY" default:"92"`
}

// MaxUploadBytes converts the configured megabyte limit to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) * 1024 * 1024
}

type NotificationsConfig struct {
	PollInterval time.Duration `envconfig:"JEWELRY_NOTIFICATIONS_POLL_INTERVAL" default:"30s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"JEWELRY_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

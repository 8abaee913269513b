package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("expected default App.Env dev, got %q", cfg.App.Env)
	}
	if cfg.Remote.BaseURL != "http://shop.local" {
		t.Fatalf("unexpected remote base url %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.Timeout != 0 {
		t.Fatalf("expected no remote timeout by default, got %v", cfg.Remote.Timeout)
	}
	if cfg.Cache.Driver != CacheDriverSQLite {
		t.Fatalf("expected sqlite cache by default, got %q", cfg.Cache.Driver)
	}
	if got := cfg.Notifications.PollInterval; got != 30*time.Second {
		t.Fatalf("expected 30s poll interval, got %v", got)
	}
	if got := cfg.Media.MaxUploadBytes(); got != 5*1024*1024 {
		t.Fatalf("expected 5MB upload limit, got %d", got)
	}
	if cfg.App.LogFormat != "json" {
		t.Fatalf("expected json log format by default, got %q", cfg.App.LogFormat)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected default cors origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvRemoteBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvRemoteBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RedisDriverNeedsAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCacheDriver, CacheDriverRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis driver without address to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
}

func TestLoad_RejectsUnknownDriverAndQuality(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCacheDriver, "indexeddb")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cache driver to fail")
	}

	setMinimalEnv(t)
	t.Setenv(EnvMediaQuality, "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected jpeg quality 0 to fail")
	}

	setMinimalEnv(t)
	t.Setenv(EnvLogFormat, "xml")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown log format to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvRemoteBaseURL, "http://shop.local")
	t.Setenv(EnvCacheDriver, CacheDriverSQLite)
	t.Setenv(EnvMediaQuality, "92")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

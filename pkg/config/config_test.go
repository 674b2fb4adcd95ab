package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Cart.FreeShippingThreshold != 2000 {
		t.Fatalf("expected free shipping threshold 2000, got %d", cfg.Cart.FreeShippingThreshold)
	}
	if cfg.Cart.BaseShippingFee != 120 {
		t.Fatalf("expected base shipping fee 120, got %d", cfg.Cart.BaseShippingFee)
	}
	if cfg.Persistence.NormalizedDriver() != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Persistence.Driver)
	}
	if got := cfg.Persistence.WriteTimeout; got != 3*time.Second {
		t.Fatalf("expected write timeout 3s, got %v", got)
	}
	if cfg.Session.IdleTTL != 30*time.Minute {
		t.Fatalf("expected idle ttl 30m, got %v", cfg.Session.IdleTTL)
	}
	if len(cfg.App.CORSOrigins) != 1 || cfg.App.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvFreeShippingThreshold, "5000")
	t.Setenv(EnvBaseShippingFee, "80")
	t.Setenv(EnvPersistenceDriver, "Redis")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv("STOREFRONT_CORS_ORIGINS", "https://shop.example.com,https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Cart.FreeShippingThreshold != 5000 || cfg.Cart.BaseShippingFee != 80 {
		t.Fatalf("unexpected cart config %+v", cfg.Cart)
	}
	if cfg.Persistence.NormalizedDriver() != DriverRedis {
		t.Fatalf("expected redis driver, got %q", cfg.Persistence.Driver)
	}
	if len(cfg.App.CORSOrigins) != 2 {
		t.Fatalf("expected two cors origins, got %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_DriverRequirements(t *testing.T) {
	cases := map[string]map[string]string{
		"redis without address":  {EnvPersistenceDriver: DriverRedis},
		"sqlite without dsn":     {EnvPersistenceDriver: DriverSQLite},
		"postgres without dsn":   {EnvPersistenceDriver: DriverPostgres},
		"unknown driver":         {EnvPersistenceDriver: "etcd"},
		"negative shipping fee":  {EnvBaseShippingFee: "-1"},
		"negative free shipping": {EnvFreeShippingThreshold: "-10"},
		"negative idle ttl":      {EnvSessionIdleTTL: "-1m"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected Load to fail")
			}
		})
	}
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
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	Cart        CartConfig
	Persistence PersistenceConfig
	Session     SessionConfig
	DB          DBConfig
	Redis       RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig holds the pricing constants and coupon table source.
type CartConfig struct {
	FreeShippingThreshold int64  `envconfig:"STOREFRONT_CART_FREE_SHIPPING_THRESHOLD" default:"2000"`
	BaseShippingFee       int64  `envconfig:"STOREFRONT_CART_BASE_SHIPPING_FEE" default:"120"`
	CouponsFile           string `envconfig:"STOREFRONT_CART_COUPONS_FILE"`
}

type PersistenceConfig struct {
	Driver       string        `envconfig:"STOREFRONT_PERSISTENCE_DRIVER" default:"memory"`
	KeyPrefix    string        `envconfig:"STOREFRONT_PERSISTENCE_KEY_PREFIX" default:"cart-storage"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_PERSISTENCE_WRITE_TIMEOUT" default:"3s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_PERSISTENCE_READ_TIMEOUT" default:"2s"`
}

// NormalizedDriver returns the lower-cased persistence driver name.
func (p PersistenceConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(p.Driver))
}

// SessionConfig bounds how long an unused cart stays open in memory.
type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_INTERVAL" default:"1m"`
}

type DBConfig struct {
	DSN         string `envconfig:"STOREFRONT_DB_DSN"`
	AutoMigrate bool   `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
	// TTL bounds how long an idle cart survives; zero keeps it forever.
	TTL time.Duration `envconfig:"STOREFRONT_REDIS_CART_TTL" default:"720h"`
}

func (c *Config) validate() error {
	if c.Cart.FreeShippingThreshold < 0 {
		return fmt.Errorf("%s must be non-negative", EnvFreeShippingThreshold)
	}
	if c.Cart.BaseShippingFee < 0 {
		return fmt.Errorf("%s must be non-negative", EnvBaseShippingFee)
	}

	if c.Session.IdleTTL < 0 {
		return fmt.Errorf("%s must be non-negative", EnvSessionIdleTTL)
	}

	switch c.Persistence.NormalizedDriver() {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
		}
	case DriverSQLite, DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the %s driver", EnvDBDSN, c.Persistence.Driver)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvPersistenceDriver, c.Persistence.Driver)
	}
	return nil
}

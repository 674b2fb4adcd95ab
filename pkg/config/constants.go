package config

// EnvPrefix is empty because every field carries its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	EnvAppEnv                = "STOREFRONT_APP_ENV"
	EnvPort                  = "STOREFRONT_APP_PORT"
	EnvLogLevel              = "STOREFRONT_LOG_LEVEL"
	EnvFreeShippingThreshold = "STOREFRONT_CART_FREE_SHIPPING_THRESHOLD"
	EnvBaseShippingFee       = "STOREFRONT_CART_BASE_SHIPPING_FEE"
	EnvCouponsFile           = "STOREFRONT_CART_COUPONS_FILE"
	EnvPersistenceDriver     = "STOREFRONT_PERSISTENCE_DRIVER"
	EnvSessionIdleTTL        = "STOREFRONT_SESSION_IDLE_TTL"
	EnvDBDSN                 = "STOREFRONT_DB_DSN"
	EnvRedisURL              = "STOREFRONT_REDIS_URL"
	EnvRedisAddr             = "STOREFRONT_REDIS_ADDR"
)

package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// TIENDITA_* names so the prefix stays informational.
const EnvPrefix = "tiendita"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "TIENDITA_APP_ENV"
	EnvPort     = "TIENDITA_APP_PORT"
	EnvDBDSN    = "TIENDITA_DB_DSN"
	EnvDBHost   = "TIENDITA_DB_HOST"
	EnvDBUser   = "TIENDITA_DB_USER"
	EnvDBName   = "TIENDITA_DB_NAME"
	EnvRedisURL = "TIENDITA_REDIS_URL"
)

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIENDITA_APP_ENV" required:"true"`
	Port         string `envconfig:"TIENDITA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIENDITA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDITA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TIENDITA_DB_DSN"`

	Host     string `envconfig:"TIENDITA_DB_HOST"`
	Port     int    `envconfig:"TIENDITA_DB_PORT" default:"5432"`
	User     string `envconfig:"TIENDITA_DB_USER"`
	Password string `envconfig:"TIENDITA_DB_PASSWORD"`
	Name     string `envconfig:"TIENDITA_DB_NAME"`
	SSLMode  string `envconfig:"TIENDITA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIENDITA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDITA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDITA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDITA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDITA_REDIS_URL"`
	Address      string        `envconfig:"TIENDITA_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDITA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDITA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDITA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDITA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDITA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDITA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIENDITA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIENDITA_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"TIENDITA_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, envName := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
		if parts[envName] == "" {
			missing = append(missing, envName)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

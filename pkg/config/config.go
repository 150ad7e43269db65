package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "VINTRACK_APP_ENV"
	EnvPort           = "VINTRACK_APP_PORT"
	EnvDBDriver       = "VINTRACK_DB_DRIVER"
	EnvDBDSN          = "VINTRACK_DB_DSN"
	EnvCORSOrigins    = "VINTRACK_CORS_ALLOWED_ORIGINS"
	EnvWineAPIBaseURL = "VINTRACK_WINE_API_BASE_URL"
	EnvWineAPIKey     = "VINTRACK_WINE_API_KEY"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	CORS         CORSConfig
	WineAPI      WineAPIConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VINTRACK_APP_ENV" default:"dev"`
	Port         string `envconfig:"VINTRACK_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"VINTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VINTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the backing store. The sqlite defaults keep the service
// runnable with a local embedded database and no external dependencies.
type DBConfig struct {
	Driver string `envconfig:"VINTRACK_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"VINTRACK_DB_DSN" default:"file:vintrack.db?_pragma=foreign_keys(1)"`

	MaxOpenConns    int           `envconfig:"VINTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VINTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VINTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VINTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func (db DBConfig) validate() error {
	switch db.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DriverSQLite, DriverPostgres, db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"VINTRACK_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}

// WineAPIConfig points at the external drinking-window suggestion provider.
// Both values default empty; the suggestion endpoint reports the provider as
// unconfigured until they are set.
type WineAPIConfig struct {
	BaseURL string        `envconfig:"VINTRACK_WINE_API_BASE_URL"`
	APIKey  string        `envconfig:"VINTRACK_WINE_API_KEY"`
	Timeout time.Duration `envconfig:"VINTRACK_WINE_API_TIMEOUT" default:"10s"`
}

func (w WineAPIConfig) Configured() bool {
	return strings.TrimSpace(w.BaseURL) != "" && strings.TrimSpace(w.APIKey) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VINTRACK_AUTO_MIGRATE" default:"true"`
}

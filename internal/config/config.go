package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Bursar"`
		Env  string `envconfig:"APP_ENV" default:"development"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout            time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
		CORSOrigins        []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}

	Storage struct {
		Driver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"bursar"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Mongo struct {
		URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database string `envconfig:"MONGO_DB" default:"bursar"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Worker struct {
		Concurrency int `envconfig:"WORKER_CONCURRENCY" default:"10"`
		MaxRetry    int `envconfig:"EVENT_MAX_RETRY" default:"5"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		Username string `envconfig:"SMTP_USERNAME"`
		Password string `envconfig:"SMTP_PASSWORD"`
		From     string `envconfig:"SMTP_FROM" default:"bursar@localhost"`
	}

	Currency string `envconfig:"CURRENCY" default:"INR"`

	Desk struct {
		CollectorID string `envconfig:"DESK_COLLECTOR_ID" default:"desk"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// QueueEnabled reports whether payment events go through Redis rather than
// being handled inline.
func (c *Config) QueueEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMongo:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}

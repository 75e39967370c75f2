package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Env            string     `yaml:"env" env:"ENV" env-default:"local" env-description:"Environment" env-choices:"local,dev,prod"`
	ApiPort        int        `yaml:"api_port" env:"API_PORT" env-default:"8080"`
	ApiHost        string     `yaml:"api_host" env:"API_HOST" env-default:"localhost"`
	HTTPServer     HTTPServer `yaml:"http_server"`
	StorageBackend string     `yaml:"storage_backend" env:"STORAGE_BACKEND" env-default:"postgres"`
	MigrateOnStart bool       `yaml:"migrate_on_start" env:"MIGRATE_ON_START" env-default:"false"`
	MonthlyLimit   float64    `yaml:"monthly_limit" env:"MONTHLY_LIMIT" env-default:"10000"`
	JWT            JWT        `yaml:"jwt"`
	Postgres       `yaml:"postgres"`
}

type HTTPServer struct {
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type JWT struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
	// TTL of zero issues tokens without an exp claim.
	TTL time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"0s"`
}

type Postgres struct {
	Host    string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"POSTGRES_PORT" env-default:"5433"`
	User    string `yaml:"user" env:"POSTGRES_USER" env-default:"test"`
	Pass    string `yaml:"pass" env:"POSTGRES_PASS" env-default:"12345"`
	Db      string `yaml:"db" env:"POSTGRES_DB" env-default:"test_db"`
	SSLMode string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
}

// DSN builds a postgres:// connection URL.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Pass),
		Host:     p.Host + ":" + p.Port,
		Path:     p.Db,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendPostgres, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}
	if c.MonthlyLimit <= 0 {
		errs = append(errs, fmt.Errorf("monthly limit must be positive, got %v", c.MonthlyLimit))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.JWT.TTL < 0 {
		errs = append(errs, fmt.Errorf("jwt ttl must not be negative, got %s", c.JWT.TTL))
	}
	if c.ApiPort < 1 || c.ApiPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid api port %d", c.ApiPort))
	}

	return errors.Join(errs...)
}

// Load reads config from the YAML file at path, or from the environment
// alone when path is empty. A .env file in the working directory is loaded
// first if it exists.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load(fetchConfigPath())
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	return cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

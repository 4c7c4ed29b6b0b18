// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
//
// env-required:"true" means the app refuses to start if that value is
// missing — better to crash at boot than to silently use a wrong default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage Storage `yaml:"storage"`

	// HTTPServer is only read by cmd/students-api.
	HTTPServer HTTPServer `yaml:"http_server"`
}

// Storage selects the database backend.
type Storage struct {
	// Driver is one of "sqlite3", "postgres", "mysql".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite3"`

	// DSN is the driver-specific data source name: a file path for
	// sqlite3, a URL or key=value string for postgres, and
	// user:pass@tcp(host:port)/db for mysql.
	DSN string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`

	// MaxIdleConns caps idle pooled connections. 0 closes every
	// connection as soon as an operation hands it back.
	MaxIdleConns int `yaml:"max_idle_conns" env:"STORAGE_MAX_IDLE_CONNS" env-default:"0"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr         string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Drivers the storage factory understands.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// ErrUnknownDriver is returned by Load for an unsupported storage.driver.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Load reads the YAML file at path, applies environment overrides, and
// checks the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment,
	// applies env-default values, and validates env-required constraints.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	switch cfg.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("storage.driver %q: %w", cfg.Storage.Driver, ErrUnknownDriver)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to panic/fatal on failure. Callers do not need to
// check a returned error — if this function returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	// Useful in Docker / Kubernetes where env vars are the standard way
	// to pass config to a container.
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	// Useful when running locally:
	//   go run ./cmd/students --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}

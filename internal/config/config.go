// Package config loads the service configuration from struct defaults, an
// optional YAML file and environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Static    StaticConfig    `koanf:"static"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Driver   string `koanf:"driver" validate:"oneof=file bolt postgres memory"`
	Path     string `koanf:"path"`
	DSN      string `koanf:"dsn" validate:"required_if=Driver postgres"`
	Document string `koanf:"document" validate:"required"`
}

type StaticConfig struct {
	Dir string `koanf:"dir"`
}

type LoggingConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"min=0"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"min=0"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

type RateLimitConfig struct {
	// WritePerMinute caps mutating API calls per client IP; 0 disables it.
	WritePerMinute int `koanf:"write_per_minute" validate:"min=0"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              3000,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Store: StoreConfig{
			Driver:   "file",
			Path:     "db.json",
			Document: "games",
		},
		Static: StaticConfig{
			Dir: "public",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		CORS: CORSConfig{
			Origins: []string{},
		},
		RateLimit: RateLimitConfig{
			WritePerMinute: 0,
		},
	}
}

// Load builds the configuration: defaults, then the first config file found,
// then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envKeys = map[string]string{
	"http_host":           "server.host",
	"port":                "server.port",
	"read_header_timeout": "server.read_header_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"store_driver":        "store.driver",
	"store_path":          "store.path",
	"store_document":      "store.document",
	"database_url":        "store.dsn",
	"static_dir":          "static.dir",
	"log_level":           "logging.level",
	"log_file":            "logging.file",
	"log_max_size_mb":     "logging.max_size_mb",
	"log_max_backups":     "logging.max_backups",
	"log_max_age_days":    "logging.max_age_days",
	"metrics_enabled":     "metrics.enabled",
	"metrics_token":       "metrics.token",
	"cors_origins":        "cors.origins",
	"write_limit_per_min": "ratelimit.write_per_minute",
}

// envKey maps known environment variables onto config paths; anything else
// returns "" and is ignored by the provider.
func envKey(key string) string {
	return envKeys[strings.ToLower(key)]
}

var sliceFields = []string{"cors.origins"}

// splitSliceFields turns comma-separated env values into string slices.
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceFields {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and the cross-field store rules.
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	switch c.Store.Driver {
	case "file", "bolt":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for driver %q", c.Store.Driver)
		}
	}
	return nil
}

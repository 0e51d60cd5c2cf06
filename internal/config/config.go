package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Data directory for file-backed stores (user workbooks, users.json)
	DataDir string `yaml:"data_dir"`

	// User directory backend: json, bolt or memory
	UsersBackend string `yaml:"users_backend"`
	UsersFile    string `yaml:"users_file"`
	UsersBoltDB  string `yaml:"users_bolt_db"`

	// Ledger backend: xlsx, sqlite, postgres, sheets or memory
	LedgerBackend string `yaml:"ledger_backend"`
	SQLiteDBPath  string `yaml:"sqlite_db_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`

	// Google Sheets backend
	GoogleRegistryFile string `yaml:"google_registry_file"`

	// AMQP mirror events (optional; empty URL disables publishing)
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Mirror worker
	MirrorBackend     string        `yaml:"mirror_backend"`
	MirrorConcurrency int           `yaml:"mirror_concurrency"`

	// Sessions (env only; yaml.v3 has no duration decoding)
	SessionTTL time.Duration `yaml:"-"`

	// fileErr carries a config-file failure from Load to Validate.
	fileErr error
}

func Load() *Config {
	cfg := &Config{
		Port:    getEnv("PORT", "8081"),
		DataDir: getEnv("DATA_DIR", "./data"),

		UsersBackend: getEnv("USERS_BACKEND", "json"),
		UsersFile:    getEnv("USERS_FILE", ""),
		UsersBoltDB:  getEnv("USERS_BOLT_DB", ""),

		LedgerBackend: getEnv("LEDGER_BACKEND", "xlsx"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/khata.db"),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),

		GoogleRegistryFile: getEnv("GOOGLE_REGISTRY_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "khata"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_entries"),

		MirrorBackend:     getEnv("MIRROR_BACKEND", "sqlite"),
		MirrorConcurrency: getEnvInt("MIRROR_CONCURRENCY", 4),

		SessionTTL: getEnvDuration("SESSION_TTL", 12*time.Hour),
	}

	// Optional YAML config file overlays env defaults.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			// Surface during Validate; keep Load infallible like env lookups.
			cfg.fileErr = err
		}
	}

	if cfg.UsersFile == "" {
		cfg.UsersFile = filepath.Join(cfg.DataDir, "users.json")
	}
	if cfg.UsersBoltDB == "" {
		cfg.UsersBoltDB = filepath.Join(cfg.DataDir, "users.db")
	}
	if cfg.GoogleRegistryFile == "" {
		cfg.GoogleRegistryFile = filepath.Join(cfg.DataDir, "sheets_registry.json")
	}

	return cfg
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.fileErr != nil {
		errs = append(errs, c.fileErr.Error())
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validUsers := []string{"json", "bolt", "memory"}
	if !contains(validUsers, c.UsersBackend) {
		errs = append(errs, fmt.Sprintf("invalid users backend '%s': must be one of %v", c.UsersBackend, validUsers))
	}

	validLedger := []string{"xlsx", "sqlite", "postgres", "sheets", "memory"}
	if !contains(validLedger, c.LedgerBackend) {
		errs = append(errs, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validLedger))
	}

	if c.LedgerBackend == "xlsx" || c.UsersBackend == "json" || c.UsersBackend == "bolt" {
		if c.DataDir == "" {
			errs = append(errs, "data directory cannot be empty for file-backed stores")
		} else if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
			if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create data directory '%s': %v", c.DataDir, err))
			}
		}
	}

	if c.LedgerBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}
	if c.LedgerBackend == "postgres" && c.PostgresDSN == "" {
		errs = append(errs, "Postgres DSN cannot be empty when using postgres backend")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MirrorConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("invalid mirror concurrency %d: must be at least 1", c.MirrorConcurrency))
	} else if c.MirrorConcurrency > 64 {
		errs = append(errs, fmt.Sprintf("invalid mirror concurrency %d: must be at most 64", c.MirrorConcurrency))
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the server config path.
const EnvPath = "UNITBALANCE_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/unitbalance.yaml"

// Server holds all configuration for the balance server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	// Documents
	Document string `yaml:"document"`  // active balance JSON
	SaveDir  string `yaml:"save_dir"`  // saved copies
	AuditLog string `yaml:"audit_log"` // append-only edit log
	Catalog  string `yaml:"catalog"`   // host catalog YAML, empty for the embedded one

	TickInterval time.Duration `yaml:"tick_interval"`

	Sync     SyncConfig     `yaml:"sync"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Database DatabaseConfig `yaml:"database"`
}

// SyncConfig holds observer sync timings.
type SyncConfig struct {
	InitialDelay    time.Duration `yaml:"initial_delay"`
	ObserverSpacing time.Duration `yaml:"observer_spacing"`
	GameStartDelay  time.Duration `yaml:"game_start_delay"`
	MaxMessageBytes int           `yaml:"max_message_bytes"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:     "info",
		Document:     "data/balance.json",
		SaveDir:      "data/saved",
		AuditLog:     "data/balance_audit.log",
		TickInterval: 50 * time.Millisecond,
		Sync: SyncConfig{
			InitialDelay:    500 * time.Millisecond,
			ObserverSpacing: 500 * time.Millisecond,
			GameStartDelay:  2 * time.Second,
			MaxMessageBytes: 2400,
		},
		Metrics: MetricsConfig{
			Address: "127.0.0.1:9464",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "unitbalance",
			Password: "unitbalance",
			DBName:   "unitbalance",
			SSLMode:  "disable",
		},
	}
}

// Path returns the config path from EnvPath, or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

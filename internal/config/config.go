package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2382
	defaultEnv        = "development"
	defaultDBDriver   = "sqlite"
	defaultDBPath     = "echomeet.db"
	defaultRedisURL   = "redis://localhost:6379/0"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	Database       DatabaseRuntimeConfig `yaml:"database"`
	RedisURL       string                `yaml:"redis_url"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	AccessKey      string                `yaml:"access_key"` // login credential for the local dashboard
	Paths          RuntimePathsConfig    `yaml:"paths"`
}

// DatabaseRuntimeConfig selects and configures the storage engine.
type DatabaseRuntimeConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "mysql"
	Path   string `yaml:"path"`   // sqlite file path
	DSN    string `yaml:"dsn"`    // mysql DSN
}

// RuntimePathsConfig overrides runtime directories.
type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type rawAppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"`
	NodeEnv        string                `yaml:"node_env"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	DBPath         string                `yaml:"db_path"`
	DSN            string                `yaml:"dsn"`
	RedisURL       string                `yaml:"redis_url"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	AccessKey      string                `yaml:"access_key"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	BackupDir      string                `yaml:"backup_dir"`
	LogDir         string                `yaml:"log_dir"`
}

// Load reads and validates the YAML config file. A missing file yields defaults.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigPath {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "mysql" {
		return nil, fmt.Errorf("invalid database.driver %q in %q, expected sqlite or mysql", cfg.Database.Driver, path)
	}
	if cfg.Database.Driver == "mysql" && strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, fmt.Errorf("database.dsn is required when database.driver is mysql")
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		RedisURL: defaultRedisURL,
		Database: DatabaseRuntimeConfig{
			Driver: defaultDBDriver,
			Path:   defaultDBPath,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Database.Driver); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Database.Path); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(raw.DBPath); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(raw.Database.DSN); v != "" {
		cfg.Database.DSN = v
		if strings.TrimSpace(raw.Database.Driver) == "" {
			cfg.Database.Driver = "mysql"
		}
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.Database.DSN = v
		cfg.Database.Driver = "mysql"
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.AccessKey); v != "" {
		cfg.AccessKey = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Backups); v != "" {
		cfg.Paths.Backups = v
	}
	if v := strings.TrimSpace(raw.BackupDir); v != "" {
		cfg.Paths.Backups = v
	}

	cfg.Env = normalizeEnv(cfg.Env)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		out = append(out, origin)
	}
	return out
}

func normalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	default:
		return "development"
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// LogsDir returns the resolved log directory.
func (c *AppConfig) LogsDir() string {
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// BackupsDir returns the resolved directory for export archives.
func (c *AppConfig) BackupsDir() string {
	return ResolveRuntimePath(c.Paths.Backups, "backups")
}

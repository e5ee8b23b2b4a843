package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Backend       string `toml:"backend"`
	DocumentPath  string `toml:"document_path"`
	DocumentKey   string `toml:"document_key"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	PostgresDSN   string `toml:"postgres_dsn"`
	ListenAddr    string `toml:"listen_addr"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
}

func DefaultConfig() *Config {
	dir, _ := WaypointDir()
	return &Config{
		Backend:      BackendFile,
		DocumentPath: filepath.Join(dir, "data", "projects.json"),
		DocumentKey:  "waypoint-projects",
		SQLitePath:   filepath.Join(dir, "db", "waypoint.sqlite"),
		RedisAddr:    "localhost:6379",
		ListenAddr:   ":3000",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// WaypointDir is the base directory for config, data and logs. WAYPOINT_HOME
// overrides the default of ~/.waypoint.
func WaypointDir() (string, error) {
	if dir := os.Getenv("WAYPOINT_HOME"); dir != "" {
		return expandPath(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".waypoint"), nil
}

func ConfigPath() (string, error) {
	dir, err := WaypointDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func ErrorLogPath() (string, error) {
	dir, err := WaypointDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "errors.log"), nil
}

func EnsureDirectories() error {
	dir, err := WaypointDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Load reads the config at the default location, creating it with defaults
// on first run.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the config at configPath. A missing file is written with
// defaults. Values from .env and WAYPOINT_* variables win over the file.
func LoadFrom(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return nil, err
		}
		if err := SaveTo(cfg, configPath); err != nil {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", configPath, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.DocumentPath = expandPath(cfg.DocumentPath)
	cfg.SQLitePath = expandPath(cfg.SQLitePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, configPath)
}

func SaveTo(cfg *Config, configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.DocumentPath == "" {
			return fmt.Errorf("document_path is required for the file backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres_dsn is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend != BackendFile && c.DocumentKey == "" {
		return fmt.Errorf("document_key is required for the %s backend", c.Backend)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"WAYPOINT_BACKEND":        &c.Backend,
		"WAYPOINT_DOCUMENT_PATH":  &c.DocumentPath,
		"WAYPOINT_DOCUMENT_KEY":   &c.DocumentKey,
		"WAYPOINT_SQLITE_PATH":    &c.SQLitePath,
		"WAYPOINT_REDIS_ADDR":     &c.RedisAddr,
		"WAYPOINT_REDIS_PASSWORD": &c.RedisPassword,
		"WAYPOINT_POSTGRES_DSN":   &c.PostgresDSN,
		"WAYPOINT_LISTEN_ADDR":    &c.ListenAddr,
		"WAYPOINT_LOG_LEVEL":      &c.LogLevel,
		"WAYPOINT_LOG_FORMAT":     &c.LogFormat,
	}
	for key, dst := range strVars {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("WAYPOINT_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WAYPOINT_REDIS_DB: %w", err)
		}
		c.RedisDB = n
	}
	return nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

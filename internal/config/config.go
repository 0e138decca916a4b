// Package config loads settings for the server and the client CLI.
//
// Sources, later ones winning:
//   - built-in defaults
//   - the YAML file given on the command line (created with defaults on first run)
//   - a .env file in the working directory
//   - EVENTBOARD_* environment variables (plus PORT and DATABASE_URL)
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eventboard/eventboard/internal/database"
	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// StoreConfig selects where the server keeps the event collection.
type StoreConfig struct {
	// Driver is "file" (default) or "postgres".
	Driver string `yaml:"driver"`
	// DataFile is the JSON document used by the file driver.
	DataFile string `yaml:"data_file"`
	// Document names the row holding the collection in the postgres driver.
	Document string          `yaml:"document"`
	Postgres database.Config `yaml:"postgres"`
}

// BackupConfig schedules timestamped copies of the collection.
type BackupConfig struct {
	// Cron is a cron expression such as "0 3 * * *"; empty disables backups.
	Cron string `yaml:"cron"`
	Dir  string `yaml:"dir"`
}

// ClientConfig drives the eventctl CLI.
type ClientConfig struct {
	RemoteURL      string `yaml:"remote_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CacheDir       string `yaml:"cache_dir"`
	// Categories is the single list consulted by every cross-category lookup.
	Categories []string `yaml:"categories"`
	// SeedSamples puts the bundled sample events into an empty cache.
	SeedSamples bool `yaml:"seed_samples"`
}

// Config is the top-level configuration.
type Config struct {
	Listen   string       `yaml:"listen"`
	LogLevel string       `yaml:"log_level"`
	Timezone string       `yaml:"timezone"`
	Store    StoreConfig  `yaml:"store"`
	Backup   BackupConfig `yaml:"backup"`
	Client   ClientConfig `yaml:"client"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Timezone: "Europe/Belgrade",
		Store: StoreConfig{
			Driver:   DriverFile,
			DataFile: filepath.Join("data", "events.json"),
			Document: "events",
			Postgres: database.DefaultConfig(),
		},
		Backup: BackupConfig{
			Dir: filepath.Join("data", "backup"),
		},
		Client: ClientConfig{
			RemoteURL:      "http://localhost:8080",
			TimeoutSeconds: 15,
			SeedSamples:    true,
		},
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values so partially-filled files still work.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Belgrade"
	}
	switch c.Store.Driver {
	case DriverFile, DriverPostgres:
	default:
		c.Store.Driver = DriverFile
	}
	if c.Store.DataFile == "" {
		c.Store.DataFile = filepath.Join("data", "events.json")
	}
	if c.Store.Document == "" {
		c.Store.Document = "events"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(filepath.Dir(c.Store.DataFile), "backup")
	}
	if c.Client.RemoteURL == "" {
		c.Client.RemoteURL = "http://localhost:8080"
	}
	c.Client.RemoteURL = strings.TrimRight(c.Client.RemoteURL, "/")
	if c.Client.TimeoutSeconds <= 0 {
		c.Client.TimeoutSeconds = 15
	}
	if c.Client.CacheDir == "" {
		c.Client.CacheDir = defaultCacheDir()
	}

	cats := make([]string, 0, len(c.Client.Categories))
	seen := make(map[model.Category]bool)
	for _, raw := range c.Client.Categories {
		cat, ok := model.ParseCategory(raw)
		if !ok {
			logging.Warn("ignoring unknown category in config", "category", raw)
			continue
		}
		if !seen[cat] {
			seen[cat] = true
			cats = append(cats, string(cat))
		}
	}
	if len(cats) == 0 {
		for _, cat := range model.Categories {
			cats = append(cats, string(cat))
		}
	}
	c.Client.Categories = cats
}

// Categories returns the configured cross-category lookup list.
func (c *Config) Categories() []model.Category {
	out := make([]model.Category, 0, len(c.Client.Categories))
	for _, s := range c.Client.Categories {
		out = append(out, model.Category(s))
	}
	return out
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "eventboard")
	}
	return filepath.Join(".", ".eventboard-cache")
}

// Load builds the effective configuration. An empty path skips the YAML
// file; a path that does not exist yet is created with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := godotenv.Load(); err != nil {
		logging.Debug(".env file not found, using process environment")
	}
	applyEnv(cfg)
	cfg.Normalize()

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Listen = ":" + v
	}
	setString(&cfg.Listen, "EVENTBOARD_LISTEN")
	setString(&cfg.LogLevel, "EVENTBOARD_LOG_LEVEL")
	setString(&cfg.Timezone, "EVENTBOARD_TIMEZONE")
	setString(&cfg.Store.Driver, "EVENTBOARD_STORE_DRIVER")
	setString(&cfg.Store.DataFile, "EVENTBOARD_DATA_FILE")
	setString(&cfg.Store.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Store.Postgres.Host, "DB_HOST")
	setString(&cfg.Store.Postgres.Port, "DB_PORT")
	setString(&cfg.Store.Postgres.User, "DB_USER")
	setString(&cfg.Store.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Store.Postgres.DBName, "DB_NAME")
	setString(&cfg.Backup.Cron, "EVENTBOARD_BACKUP_CRON")
	setString(&cfg.Backup.Dir, "EVENTBOARD_BACKUP_DIR")
	setString(&cfg.Client.RemoteURL, "EVENTBOARD_REMOTE_URL")
	setString(&cfg.Client.CacheDir, "EVENTBOARD_CACHE_DIR")

	if v := os.Getenv("EVENTBOARD_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("EVENTBOARD_CATEGORIES"); v != "" {
		cfg.Client.Categories = strings.Split(v, ",")
	}
	if v := os.Getenv("EVENTBOARD_SEED_SAMPLES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Client.SeedSamples = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes cfg as YAML via a temp file and rename, with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Package config loads menuboard settings from ~/.config/menuboard/config.json,
// a .env file and MENUBOARD_* environment variables, in increasing priority.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marcus/menuboard/internal/cloud"
)

// Defaults.
const (
	DefaultBucket    = "menus"
	DefaultObject    = "menu.enc"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	defaultDataDir   = ".menuboard"
	configFile       = "config.json"
)

// S3Config holds S3-compatible storage settings.
type S3Config struct {
	Endpoint  string `json:"endpoint,omitempty"`
	Region    string `json:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

// SupabaseConfig holds Supabase Storage settings.
type SupabaseConfig struct {
	URL string `json:"url,omitempty"`
	Key string `json:"key,omitempty"`
}

// CloudConfig holds remote backup settings. An empty Backend disables it.
type CloudConfig struct {
	Backend  string         `json:"backend,omitempty"`
	Bucket   string         `json:"bucket,omitempty"`
	Object   string         `json:"object,omitempty"`
	Secret   string         `json:"secret,omitempty"`
	Timeout  string         `json:"timeout,omitempty"` // duration string, default "30s"
	Dir      string         `json:"dir,omitempty"`
	S3       S3Config       `json:"s3"`
	Supabase SupabaseConfig `json:"supabase"`
}

// Config is the menuboard configuration.
type Config struct {
	DataDir   string      `json:"data_dir,omitempty"`
	Title     string      `json:"title,omitempty"`
	LogLevel  string      `json:"log_level,omitempty"`
	LogFormat string      `json:"log_format,omitempty"`
	Cloud     CloudConfig `json:"cloud"`

	// Keys rebinds TUI keys: "context:key" or "key" mapped to a command name.
	Keys map[string]string `json:"keys,omitempty"`
}

// Dir returns ~/.config/menuboard, or MENUBOARD_CONFIG_DIR when set.
func Dir() (string, error) {
	if v := os.Getenv("MENUBOARD_CONFIG_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "menuboard"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadDotenv reads .env from the working directory unless running in
// production. Existing environment variables win.
func LoadDotenv() {
	if os.Getenv("MENUBOARD_ENV") == "production" {
		return
	}
	_ = godotenv.Load()
}

// Load reads the config file, applies environment overrides and fills
// defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a config file. A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	// Secrets live here.
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// ApplyEnv overrides fields from MENUBOARD_* variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(&c.DataDir, "MENUBOARD_DIR")
	set(&c.Title, "MENUBOARD_TITLE")
	set(&c.LogLevel, "MENUBOARD_LOG_LEVEL")
	set(&c.LogFormat, "MENUBOARD_LOG_FORMAT")
	set(&c.Cloud.Backend, "MENUBOARD_CLOUD_BACKEND")
	set(&c.Cloud.Bucket, "MENUBOARD_CLOUD_BUCKET")
	set(&c.Cloud.Object, "MENUBOARD_CLOUD_OBJECT")
	set(&c.Cloud.Secret, "MENUBOARD_CLOUD_KEY")
	set(&c.Cloud.Timeout, "MENUBOARD_CLOUD_TIMEOUT")
	set(&c.Cloud.Dir, "MENUBOARD_CLOUD_DIR")
	set(&c.Cloud.S3.Endpoint, "MENUBOARD_S3_ENDPOINT")
	set(&c.Cloud.S3.Region, "MENUBOARD_S3_REGION")
	set(&c.Cloud.S3.AccessKey, "MENUBOARD_S3_ACCESS_KEY")
	set(&c.Cloud.S3.SecretKey, "MENUBOARD_S3_SECRET_KEY")
	set(&c.Cloud.Supabase.URL, "MENUBOARD_SUPABASE_URL")
	set(&c.Cloud.Supabase.Key, "MENUBOARD_SUPABASE_KEY")
}

// ApplyDefaults fills unset fields and rejects unknown values.
func (c *Config) ApplyDefaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, defaultDataDir)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Cloud.Bucket == "" {
		c.Cloud.Bucket = DefaultBucket
	}
	if c.Cloud.Object == "" {
		c.Cloud.Object = DefaultObject
	}

	switch c.Cloud.Backend {
	case "", cloud.BackendS3, cloud.BackendSupabase, cloud.BackendDir:
	default:
		return fmt.Errorf("unknown cloud backend %q (use %s, %s or %s)",
			c.Cloud.Backend, cloud.BackendS3, cloud.BackendSupabase, cloud.BackendDir)
	}
	if c.Cloud.Timeout != "" {
		if d, err := time.ParseDuration(c.Cloud.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("invalid cloud timeout %q", c.Cloud.Timeout)
		}
	}
	return nil
}

// CloudTimeout returns the per-call remote deadline.
func (c *Config) CloudTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Cloud.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// CloudOptions maps the config onto the blob store factory.
func (c *Config) CloudOptions() cloud.Options {
	dir := c.Cloud.Dir
	if dir == "" && c.Cloud.Backend == cloud.BackendDir {
		dir = filepath.Join(c.DataDir, "cloud")
	}
	return cloud.Options{
		Backend: c.Cloud.Backend,
		Bucket:  c.Cloud.Bucket,
		Dir:     dir,
		S3: cloud.S3Options{
			Endpoint:  c.Cloud.S3.Endpoint,
			Region:    c.Cloud.S3.Region,
			AccessKey: c.Cloud.S3.AccessKey,
			SecretKey: c.Cloud.S3.SecretKey,
			Bucket:    c.Cloud.Bucket,
		},
		SupabaseURL: c.Cloud.Supabase.URL,
		SupabaseKey: c.Cloud.Supabase.Key,
	}
}

// NewLogger builds a slog logger for the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// settable maps dotted config names to their fields.
func (c *Config) settable() map[string]*string {
	return map[string]*string{
		"data_dir":            &c.DataDir,
		"title":               &c.Title,
		"log_level":           &c.LogLevel,
		"log_format":          &c.LogFormat,
		"cloud.backend":       &c.Cloud.Backend,
		"cloud.bucket":        &c.Cloud.Bucket,
		"cloud.object":        &c.Cloud.Object,
		"cloud.secret":        &c.Cloud.Secret,
		"cloud.timeout":       &c.Cloud.Timeout,
		"cloud.dir":           &c.Cloud.Dir,
		"cloud.s3.endpoint":   &c.Cloud.S3.Endpoint,
		"cloud.s3.region":     &c.Cloud.S3.Region,
		"cloud.s3.access_key": &c.Cloud.S3.AccessKey,
		"cloud.s3.secret_key": &c.Cloud.S3.SecretKey,
		"cloud.supabase.url":  &c.Cloud.Supabase.URL,
		"cloud.supabase.key":  &c.Cloud.Supabase.Key,
	}
}

// SettableKeys lists the names accepted by Set, sorted.
func SettableKeys() []string {
	var c Config
	names := make([]string, 0, len(c.settable()))
	for name := range c.settable() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set assigns one field by name. Names of the form "keys.<binding>" edit
// Keys; an empty value removes the binding.
func (c *Config) Set(name, value string) error {
	if binding, ok := strings.CutPrefix(name, "keys."); ok && binding != "" {
		if value == "" {
			delete(c.Keys, binding)
			return nil
		}
		if c.Keys == nil {
			c.Keys = make(map[string]string)
		}
		c.Keys[binding] = value
		return nil
	}
	field, ok := c.settable()[name]
	if !ok {
		return fmt.Errorf("unknown config key %q", name)
	}
	*field = value
	return nil
}

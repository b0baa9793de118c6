package platform

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the config file.
const (
	EnvDataDir = "ARGUMENTAIRE_DATA_DIR"
	EnvAddr    = "ARGUMENTAIRE_ADDR"
)

// ConfigFileNames are tried in order by FindConfig.
var ConfigFileNames = []string{"argumentaire.yaml", "argumentaire.yml", "argumentaire.toml"}

// Config is the on-disk configuration shared by every command.
// Durations are strings such as "5s".
type Config struct {
	DataDir          string  `yaml:"data_dir" toml:"data_dir"`
	Addr             string  `yaml:"addr" toml:"addr"`
	StaticDir        string  `yaml:"static_dir" toml:"static_dir"`
	StoreFile        string  `yaml:"store_file" toml:"store_file"`
	LegacyFile       string  `yaml:"legacy_file" toml:"legacy_file"`
	ReadOnly         bool    `yaml:"read_only" toml:"read_only"`
	CrossProcessLock bool    `yaml:"cross_process_lock" toml:"cross_process_lock"`
	LockTimeout      string  `yaml:"lock_timeout" toml:"lock_timeout"`
	RateLimit        float64 `yaml:"rate_limit" toml:"rate_limit"`
	RateBurst        int     `yaml:"rate_burst" toml:"rate_burst"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:     ".",
		Addr:        ":8000",
		StaticDir:   ".",
		StoreFile:   DefaultStoreFile,
		LegacyFile:  DefaultLegacyFile,
		LockTimeout: "5s",
		RateLimit:   5,
		RateBurst:   10,
	}
}

// FindConfig returns the first config file present in dir, or "".
func FindConfig(dir string) string {
	for _, name := range ConfigFileNames {
		if hasFile(dir, name) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

// LoadConfig reads path on top of DefaultConfig. The decoder is chosen by
// extension. An empty path or a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", path)
	}

	// Relative paths in the file are relative to the file itself.
	base := filepath.Dir(path)
	cfg.DataDir = relativeTo(base, cfg.DataDir)
	cfg.StaticDir = relativeTo(base, cfg.StaticDir)

	if _, err := cfg.Timeout(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		c.Addr = v
	}
}

// Timeout parses LockTimeout. A bare number is read as seconds.
func (c Config) Timeout() (time.Duration, error) {
	s := strings.TrimSpace(c.LockTimeout)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid lock_timeout %q: %w", c.LockTimeout, err)
	}
	return d, nil
}

// Options translates the file settings into platform options.
func (c Config) Options() []Option {
	opts := []Option{
		WithReadOnly(c.ReadOnly),
		WithCrossProcessLock(c.CrossProcessLock),
	}
	if c.StoreFile != "" {
		opts = append(opts, WithStoreFile(c.StoreFile))
	}
	opts = append(opts, WithLegacyFile(c.LegacyFile))
	if d, err := c.Timeout(); err == nil && d > 0 {
		opts = append(opts, WithLockTimeout(d))
	}
	return opts
}

func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Package config loads isoannot settings from a YAML file, ISOANNOT_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aria-lang/isoannot-go/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. ISOANNOT_WINDOW_SIZE.
const EnvPrefix = "ISOANNOT"

// Keys.
const (
	KeyWindowSize        = "window_size"
	KeyMinPolyAFraction  = "min_polya_fraction"
	KeyUpstreamRegionLen = "upstream_region_len"
	KeyWorkers           = "workers"
	KeyLogLevel          = "log_level"
	KeyRedisAddr         = "redis_addr"
	KeyListen            = "listen"
)

// Config holds the effective settings.
type Config struct {
	WindowSize        int     `mapstructure:"window_size" yaml:"window_size"`
	MinPolyAFraction  float64 `mapstructure:"min_polya_fraction" yaml:"min_polya_fraction"`
	UpstreamRegionLen int     `mapstructure:"upstream_region_len" yaml:"upstream_region_len"`
	Workers           int     `mapstructure:"workers" yaml:"workers"`
	LogLevel          string  `mapstructure:"log_level" yaml:"log_level"`
	// RedisAddr selects a shared canonical-site cache; empty keeps it in
	// memory.
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	Listen    string `mapstructure:"listen" yaml:"listen"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		WindowSize:        20,
		MinPolyAFraction:  0.8,
		UpstreamRegionLen: 20,
		Workers:           runtime.GOMAXPROCS(0),
		LogLevel:          "info",
		Listen:            ":8080",
	}
}

// SetDefaults registers every key with its default on v. Keys must be
// known to viper for environment lookups to apply on Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyWindowSize, d.WindowSize)
	v.SetDefault(KeyMinPolyAFraction, d.MinPolyAFraction)
	v.SetDefault(KeyUpstreamRegionLen, d.UpstreamRegionLen)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyRedisAddr, d.RedisAddr)
	v.SetDefault(KeyListen, d.Listen)
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if not empty) into v and returns the validated
// configuration. Flags bound to v before the call take precedence.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the annotators cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.WindowSize <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyWindowSize, c.WindowSize))
	}
	if c.MinPolyAFraction <= 0 || c.MinPolyAFraction > 1 {
		errs = append(errs, fmt.Errorf("%s must be in (0, 1], got %g", KeyMinPolyAFraction, c.MinPolyAFraction))
	}
	if c.UpstreamRegionLen <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyUpstreamRegionLen, c.UpstreamRegionLen))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyWorkers, c.Workers))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// YAML renders the configuration.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}

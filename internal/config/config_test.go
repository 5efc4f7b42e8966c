package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 20, c.WindowSize)
	assert.InDelta(t, 0.8, c.MinPolyAFraction, 1e-9)
	assert.Equal(t, 20, c.UpstreamRegionLen)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "", c.RedisAddr)
	assert.Positive(t, c.Workers)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isoannot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_size: 12\nmin_polya_fraction: 0.75\nupstream_region_len: 30\nlog_level: debug\n"), 0o644))

	t.Setenv("ISOANNOT_UPSTREAM_REGION_LEN", "40")

	v := New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int(KeyWindowSize, 20, "")
	require.NoError(t, flags.Parse([]string{"--window_size=8"}))
	require.NoError(t, v.BindPFlag(KeyWindowSize, flags.Lookup(KeyWindowSize)))

	c, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, 8, c.WindowSize, "flag beats file")
	assert.InDelta(t, 0.75, c.MinPolyAFraction, 1e-9, "file beats default")
	assert.Equal(t, 40, c.UpstreamRegionLen, "env beats file")
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero window", func(c *Config) { c.WindowSize = 0 }, "window_size"},
		{"zero fraction", func(c *Config) { c.MinPolyAFraction = 0 }, "min_polya_fraction"},
		{"fraction above one", func(c *Config) { c.MinPolyAFraction = 1.5 }, "min_polya_fraction"},
		{"fraction of one", func(c *Config) { c.MinPolyAFraction = 1 }, ""},
		{"negative upstream", func(c *Config) { c.UpstreamRegionLen = -1 }, "upstream_region_len"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestYAML(t *testing.T) {
	c := Default()
	c.RedisAddr = "localhost:6379"

	out, err := c.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, c, back)
	assert.Contains(t, string(out), "window_size: 20")
}

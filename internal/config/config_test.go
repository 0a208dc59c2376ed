package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 40*time.Millisecond, c.Timing.Loop)
	assert.Equal(t, float32(0.1), c.Matrix.Brightness)
	assert.Zero(t, c.Timing.DebounceTimeout)
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := write(t, `
gpio:
  backend: sim
matrix:
  brightness: 0.5
timing:
  loop: 20ms
  debounce_timeout: 2s
usb:
  driver: stdin
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "sim", c.GPIO.Backend)
	assert.Equal(t, 5, c.GPIO.ButtonA)
	assert.Equal(t, float32(0.5), c.Matrix.Brightness)
	assert.Equal(t, 20*time.Millisecond, c.Timing.Loop)
	assert.Equal(t, 2*time.Second, c.Timing.DebounceTimeout)
	assert.Equal(t, 50*time.Millisecond, c.Timing.Debounce)
	assert.Equal(t, "stdin", c.USB.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero brightness", func(c *Config) { c.Matrix.Brightness = 0 }},
		{"brightness above one", func(c *Config) { c.Matrix.Brightness = 1.5 }},
		{"shared pin", func(c *Config) { c.GPIO.LEDBlue = c.GPIO.ButtonA }},
		{"negative pin", func(c *Config) { c.GPIO.ButtonB = -1 }},
		{"negative delay", func(c *Config) { c.Timing.Loop = -time.Millisecond }},
		{"pixels", func(c *Config) { c.Matrix.Pixels = 64 }},
		{"backend", func(c *Config) { c.GPIO.Backend = "sysfs" }},
		{"usb driver", func(c *Config) { c.USB.Driver = "tcp" }},
		{"display driver", func(c *Config) { c.Display.Driver = "i2c0" }},
		{"matrix driver", func(c *Config) { c.Matrix.Driver = "ws2812" }},
		{"zero release poll", func(c *Config) { c.Timing.ReleasePoll = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.GPIO.Backend = "gpiocdev"
	c.Display.Driver = "log"
	require.NoError(t, Save(p, c))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

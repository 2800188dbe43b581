package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bitwig-monome.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "send: 127.0.0.1:8100\nrotation: 180\n"))
	require.NoError(t, err)

	expected := Default()
	expected.Send = "127.0.0.1:8100"
	expected.Rotation = 180
	assert.Equal(t, expected, cfg)
}

func TestLoadAllKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
listen: 0.0.0.0:9100
send: 10.0.0.2:8000
rotation: 90
backend: serial
serialosc: 127.0.0.1:12100
prefix: /grid
serial_port: /dev/ttyUSB0
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Listen:     "0.0.0.0:9100",
		Send:       "10.0.0.2:8000",
		Rotation:   90,
		Backend:    BackendSerial,
		SerialOSC:  "127.0.0.1:12100",
		Prefix:     "/grid",
		SerialPort: "/dev/ttyUSB0",
		LogLevel:   "debug",
	}, cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "rotation: [1, 2]\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"rotation":        func(c *Config) { c.Rotation = 45 },
		"backend":         func(c *Config) { c.Backend = "midi" },
		"serial rotation": func(c *Config) { c.Backend = BackendSerial; c.Rotation = 90 },
		"listen":          func(c *Config) { c.Listen = "nowhere" },
		"send":            func(c *Config) { c.Send = "127.0.0.1:notaport" },
		"serialosc":       func(c *Config) { c.SerialOSC = "::::" },
		"log level":       func(c *Config) { c.LogLevel = "loud" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

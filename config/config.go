// Package config holds the bridge settings and loads them from YAML.
package config

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tychedelia/bitwig-monome/serialosc"
	"gopkg.in/yaml.v3"
)

// Device backends.
const (
	BackendSerialOSC = "serialosc"
	BackendSerial    = "serial"
)

// Config is the bridge configuration. Every key is optional.
type Config struct {
	// Listen is the UDP address the DAW sends clip state to.
	Listen string `yaml:"listen"`

	// Send is the UDP address of the DAW's OSC controller.
	Send string `yaml:"send"`

	// Rotation of the grid in degrees.
	Rotation int `yaml:"rotation"`

	Backend    string `yaml:"backend"`
	SerialOSC  string `yaml:"serialosc"`
	Prefix     string `yaml:"prefix"`
	SerialPort string `yaml:"serial_port"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Listen:    "127.0.0.1:9000",
		Send:      "127.0.0.1:8000",
		Rotation:  0,
		Backend:   BackendSerialOSC,
		SerialOSC: serialosc.DefaultAddr,
		Prefix:    "/bitwig-monome",
		LogLevel:  "info",
	}
}

// Load reads path over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Rotation {
	case 0, 90, 180, 270:
	default:
		return errors.Errorf("rotation must be 0, 90, 180 or 270, got %d", c.Rotation)
	}
	switch c.Backend {
	case BackendSerialOSC:
		if _, err := net.ResolveUDPAddr("udp", c.SerialOSC); err != nil {
			return errors.Wrap(err, "serialosc address")
		}
	case BackendSerial:
		if c.Rotation != 0 && c.Rotation != 180 {
			return errors.Errorf("the serial backend supports rotation 0 or 180, got %d", c.Rotation)
		}
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := net.ResolveUDPAddr("udp", c.Listen); err != nil {
		return errors.Wrap(err, "listen address")
	}
	if _, err := net.ResolveUDPAddr("udp", c.Send); err != nil {
		return errors.Wrap(err, "send address")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	return nil
}

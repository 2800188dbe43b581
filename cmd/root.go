// Copyright © 2026 The bitwig-monome Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tychedelia/bitwig-monome/config"
)

var (
	cfgFile string

	// flagConfig holds flag values. Only flags set on the command line
	// override the config file.
	flagConfig = config.Default()

	log = logrus.New()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "bitwig-monome",
	Short: "Mirror Bitwig's clip launcher on a monome grid",
	Long: `Mirror Bitwig's clip launcher on a monome grid.

Clip states received from Bitwig's OSC controller are shown on the grid,
and pressing a key launches or stops its clip. An arc shows the first
four parameters of the selected device instead.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.Default()
	flags := RootCmd.PersistentFlags()

	flags.StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	flags.StringVarP(&flagConfig.Listen, "listen", "l", defaults.Listen, "address to receive OSC from Bitwig on")
	flags.StringVarP(&flagConfig.Send, "send", "s", defaults.Send, "address of Bitwig's OSC controller")
	flags.IntVarP(&flagConfig.Rotation, "rotation", "r", defaults.Rotation, "grid rotation in degrees (0, 90, 180, 270)")
	flags.StringVarP(&flagConfig.Backend, "backend", "b", defaults.Backend, "device backend (serialosc or serial)")
	flags.StringVar(&flagConfig.SerialOSC, "serialosc", defaults.SerialOSC, "address of the serialosc daemon")
	flags.StringVar(&flagConfig.Prefix, "prefix", defaults.Prefix, "OSC prefix requested from serialosc")
	flags.StringVar(&flagConfig.SerialPort, "port", defaults.SerialPort, "serial port of the device (serial backend)")
	flags.StringVar(&flagConfig.LogLevel, "log-level", defaults.LogLevel, "log level")
}

// loadConfig merges defaults, the config file and explicitly set flags,
// in increasing order of precedence, and applies the log level.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return cfg, err
		}
	}
	overrides := map[string]func(){
		"listen":    func() { cfg.Listen = flagConfig.Listen },
		"send":      func() { cfg.Send = flagConfig.Send },
		"rotation":  func() { cfg.Rotation = flagConfig.Rotation },
		"backend":   func() { cfg.Backend = flagConfig.Backend },
		"serialosc": func() { cfg.SerialOSC = flagConfig.SerialOSC },
		"prefix":    func() { cfg.Prefix = flagConfig.Prefix },
		"port":      func() { cfg.SerialPort = flagConfig.SerialPort },
		"log-level": func() { cfg.LogLevel = flagConfig.LogLevel },
	}
	flags.Visit(func(f *pflag.Flag) {
		if override, ok := overrides[f.Name]; ok {
			override()
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	return cfg, nil
}

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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tychedelia/bitwig-monome/bridge"
	"github.com/tychedelia/bitwig-monome/config"
	"github.com/tychedelia/bitwig-monome/mext"
	"github.com/tychedelia/bitwig-monome/serialosc"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Run the bridge between Bitwig and a monome device.

The bridge waits for a device to be connected, asks Bitwig for its full
state and then mirrors it until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		b, err := bridge.New(bridge.Config{
			Listen: cfg.Listen,
			Send:   cfg.Send,
			Open:   opener(cfg),
		}, log)
		if err != nil {
			return errors.Wrap(err, "creating bridge")
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return errors.Wrap(b.Run(ctx), "running bridge")
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// opener returns the device opener of the configured backend.
func opener(cfg config.Config) bridge.Opener {
	if cfg.Backend == config.BackendSerial {
		return mext.Options{
			Port:     cfg.SerialPort,
			Rotation: cfg.Rotation,
		}.Open
	}
	return serialosc.Options{
		Addr:     cfg.SerialOSC,
		Prefix:   cfg.Prefix,
		Rotation: cfg.Rotation,
	}.Open
}

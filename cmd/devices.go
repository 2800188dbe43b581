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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tychedelia/bitwig-monome/config"
	"github.com/tychedelia/bitwig-monome/mext"
	"github.com/tychedelia/bitwig-monome/serialosc"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected monome devices",
	Long: `List the devices serialosc knows about, or the serial ports that
look like monome devices with --backend serial.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if cfg.Backend == config.BackendSerial {
			ports, err := mext.Ports()
			if err != nil {
				return err
			}
			for _, port := range ports {
				fmt.Fprintln(out, port)
			}
			return nil
		}
		devices, err := serialosc.List(context.Background(), cfg.SerialOSC, serialosc.ListTimeout)
		if err != nil {
			return err
		}
		for _, d := range devices {
			fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", d.ID, d.Type, d.Port, d.DeviceType())
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(devicesCmd)
}

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
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tychedelia/bitwig-monome/bitwig"
	"github.com/tychedelia/bitwig-monome/clip"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send refresh | launch TRACK SCENE | stop TRACK SCENE",
	Short: "Send one command to Bitwig",
	Long: `Send one command to Bitwig's OSC controller.

Tracks are numbered 1-16 and scenes 1-8, as on the grid.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		cm, err := parseControl(args)
		if err != nil {
			return err
		}
		conn, err := bitwig.Dial(context.Background(), cfg.Send)
		if err != nil {
			return err
		}
		defer conn.Close()

		return bitwig.NewSender(conn, nil, log).Send(cm)
	},
}

func init() {
	RootCmd.AddCommand(sendCmd)
}

// parseControl reads a command from the arguments of send.
func parseControl(args []string) (bitwig.ControlMessage, error) {
	if len(args) == 0 {
		return bitwig.ControlMessage{}, errors.New("missing command")
	}
	switch kind := args[0]; kind {
	case "refresh":
		if expected, got := 1, len(args); expected != got {
			return bitwig.ControlMessage{}, errors.Errorf("refresh takes no arguments, got %d", got-1)
		}
		return bitwig.Refresh(), nil
	case "launch", "stop":
		if expected, got := 3, len(args); expected != got {
			return bitwig.ControlMessage{}, errors.Errorf("%s expects a track and a scene", kind)
		}
		track, err := strconv.Atoi(args[1])
		if err != nil {
			return bitwig.ControlMessage{}, errors.Wrap(err, "parsing track")
		}
		scene, err := strconv.Atoi(args[2])
		if err != nil {
			return bitwig.ControlMessage{}, errors.Wrap(err, "parsing scene")
		}
		if _, err := clip.Index(track, scene); err != nil {
			return bitwig.ControlMessage{}, err
		}
		if kind == "launch" {
			return bitwig.Launch(track, scene), nil
		}
		return bitwig.Stop(track, scene), nil
	default:
		return bitwig.ControlMessage{}, errors.Errorf("unknown command %q", kind)
	}
}

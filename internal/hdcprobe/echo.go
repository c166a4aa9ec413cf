// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcprobe

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiksotik/hdc/pkg/hdc/engine"
)

var echoCmd = &cobra.Command{
	Use:   "echo [text]",
	Short: "Sends an Echo request and prints what comes back",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEcho,
}

func init() {
	rootCmd.AddCommand(echoCmd)
}

func runEcho(cmd *cobra.Command, args []string) error {
	text := "hdc-probe"
	if len(args) > 0 {
		text = args[0]
	}

	t, info, err := openTransport()
	if err != nil {
		return err
	}

	c, err := newClient(t)
	if err != nil {
		return err
	}
	defer c.close()

	logger.Info().Str("connection", info).Msg("connected")

	reply, err := c.request(append([]byte{engine.MsgTypeEcho}, []byte(text)...), replyTimeout)
	if err != nil {
		return err
	}
	if len(reply) < 1 || reply[0] != engine.MsgTypeEcho {
		return fmt.Errorf("hdc-probe: unexpected echo reply %x", reply)
	}
	fmt.Printf("echo: %q\n", string(reply[1:]))
	return nil
}

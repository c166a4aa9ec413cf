// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcprobe

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiksotik/hdc/pkg/hdc/engine"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Queries device self-description metadata",
}

var metaVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the device's HDC protocol version string",
	RunE:  withMetaClient(runMetaVersion),
}

var metaMaxReqCmd = &cobra.Command{
	Use:   "max-req",
	Short: "Prints the device's maximum single-request message size",
	RunE:  withMetaClient(runMetaMaxReq),
}

var metaIdlCmd = &cobra.Command{
	Use:   "idl",
	Short: "Prints the device's IDL-JSON self-description document",
	RunE:  withMetaClient(runMetaIdl),
}

func init() {
	metaCmd.AddCommand(metaVersionCmd, metaMaxReqCmd, metaIdlCmd)
	rootCmd.AddCommand(metaCmd)
}

// withMetaClient opens a transport and client, runs fn, and tears both down
// afterwards, so each meta subcommand only needs to state its own request.
func withMetaClient(fn func(c *client) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
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
		return fn(c)
	}
}

func runMetaVersion(c *client) error {
	reply, err := c.requestMeta(engine.MetaIDHdcVersion, replyTimeout)
	if err != nil {
		return err
	}
	fmt.Println(string(reply))
	return nil
}

func runMetaMaxReq(c *client) error {
	reply, err := c.requestMeta(engine.MetaIDMaxReq, replyTimeout)
	if err != nil {
		return err
	}
	if len(reply) < 4 {
		return fmt.Errorf("hdc-probe: malformed max-req reply %x", reply)
	}
	fmt.Println(binary.LittleEndian.Uint32(reply))
	return nil
}

func runMetaIdl(c *client) error {
	reply, err := c.requestMeta(engine.MetaIDIdlJson, replyTimeout)
	if err != nil {
		return err
	}
	fmt.Println(string(reply))
	return nil
}

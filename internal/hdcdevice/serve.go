// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcdevice

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kiksotik/hdc/pkg/hdc/demo"
	"github.com/kiksotik/hdc/pkg/hdc/engine"
	"github.com/kiksotik/hdc/pkg/hdc/transport"
)

var serveDemoLoopback bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the demo device until interrupted",
	Long: `serve boots the bundled demo device and drains/dispatches requests
from the selected transport until interrupted with Ctrl+C.

With --demo, no external transport is opened: the device talks to an
in-process prober over a pipe, toggling the Led feature's SetOn command on
a timer, so the whole request/reply/event cycle can be watched with no
hardware attached.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDemoLoopback, "demo", false, "run a self-contained in-process demo instead of opening a transport")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	dev := demo.NewDevice(engine.VersionString, maxReq, deviceID)

	var t transport.Transport
	var connInfo string

	if serveDemoLoopback {
		devSide, proberSide := transport.NewPipeTransportPair()
		t, connInfo = devSide, "in-process demo loopback"
		go runLoopbackProber(proberSide)
	} else {
		var err error
		t, connInfo, err = openTransport()
		if err != nil {
			return err
		}
	}
	defer t.Close()

	eng, err := engine.New(engine.Config{
		Device:    dev,
		Transport: t,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("hdc-device: %w", err)
	}

	logger.Info().Str("connection", connInfo).Int("max_req", maxReq).Msg("serving HDC device")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = eng.Work(ctx)
	if err == context.Canceled {
		logger.Info().Msg("shutting down")
		return nil
	}
	return err
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hdcdevice implements the hdc-device CLI: a cobra command tree that
// boots the bundled demo device and serves the protocol over a selectable
// transport.
package hdcdevice

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Device flags
	deviceID uint32
	maxReq   int

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hdc-device",
	Short: "Serves a demo Host-Device Communication device",
	Long: `hdc-device boots the bundled demo device (a Core feature and an Led
feature) and serves the Host-Device Communication protocol over a serial
port, a WebSocket bridge, or an in-process loopback.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Loopback:  serve --demo (talks to an in-process probe, no external link)

For WebSocket authentication, the password is read from the HDC_PASSWORD
environment variable; there is no interactive prompt, so --username without
HDC_PASSWORD is an error.`,
	Version: "1.0.0-alpha.12",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
	rootCmd.PersistentFlags().Uint32Var(&deviceID, "device-id", 0x00000001, "uc_devid value reported by the Core feature")
	rootCmd.PersistentFlags().IntVar(&maxReq, "max-req", 128, "HDC_MAX_REQ_MESSAGE_SIZE")
}

// Execute configures logging once and runs the command tree.
func Execute() error {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("app", "hdc-device").Logger()
	return rootCmd.Execute()
}

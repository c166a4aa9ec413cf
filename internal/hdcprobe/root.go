// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hdcprobe implements the hdc-probe CLI: a small hand-written
// host-side client used to exercise and observe a running HDC device from
// a terminal, not a generated proxy.
package hdcprobe

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	portName string
	baudRate int

	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	replyTimeout time.Duration

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hdc-probe",
	Short: "Exercises a running HDC device from a terminal",
	Long: `hdc-probe is a hand-written host-side client for the Host-Device
Communication protocol: it sends Meta/Echo/Command requests and prints
whatever comes back, for exercising and observing a device without a
generated proxy.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the HDC_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version: "1.0.0-alpha.12",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
	rootCmd.PersistentFlags().DurationVar(&replyTimeout, "timeout", 2*time.Second, "how long to wait for a reply")
}

// Execute configures logging once and runs the command tree.
func Execute() error {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("app", "hdc-probe").Logger()
	return rootCmd.Execute()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcdevice

import (
	"fmt"
	"os"

	"github.com/kiksotik/hdc/pkg/hdc/transport"
)

// openTransport opens the transport selected by the persistent connection
// flags: --url for WebSocket, --port for serial. WebSocket Basic-auth
// credentials come only from HDC_PASSWORD — unlike hdc-probe, hdc-device
// has no interactive terminal to prompt on.
func openTransport() (transport.Transport, string, error) {
	if wsURL != "" {
		password := os.Getenv("HDC_PASSWORD")
		if wsUsername != "" && password == "" {
			return nil, "", fmt.Errorf("hdc-device: --username given but HDC_PASSWORD is not set")
		}
		t, err := transport.DialWebSocket(wsURL, transport.DialWebSocketOptions{
			Username:      wsUsername,
			Password:      password,
			SkipTLSVerify: wsNoSSLVerify,
		})
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		t, err := transport.OpenSerial(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("hdc-device: either --port or --url must be specified (or use --demo)")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialTransport wraps a UART/USB-CDC serial port as a Transport.
type SerialTransport struct {
	port serial.Port
}

// OpenSerial opens portName at baudRate with the 8-N-1 framing HDC assumes
// over serial links.
func OpenSerial(portName string, baudRate int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("hdc/transport: open serial port %s: %w", portName, err)
	}
	return &SerialTransport{port: port}, nil
}

func (s *SerialTransport) Write(data []byte) (int, error) { return s.port.Write(data) }

func (s *SerialTransport) Listen(onData func([]byte)) error {
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := s.port.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onData(chunk)
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

func (s *SerialTransport) Close() error { return s.port.Close() }

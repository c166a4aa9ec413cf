// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport wraps a WebSocket connection as a Transport, carrying
// HDC messages as binary frames. Non-binary frames received on the link
// are discarded rather than passed to the listener.
type WebSocketTransport struct {
	conn *websocket.Conn
}

// DialWebSocketOptions configures DialWebSocket.
type DialWebSocketOptions struct {
	Username      string
	Password      string
	SkipTLSVerify bool
	Timeout       time.Duration
}

// DialWebSocket connects to wsURL (ws:// or wss://), optionally sending HTTP
// Basic auth credentials.
func DialWebSocket(wsURL string, opts DialWebSocketOptions) (*WebSocketTransport, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("hdc/transport: invalid websocket url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("hdc/transport: unsupported websocket scheme %q", u.Scheme)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: opts.SkipTLSVerify}
	}

	headers := http.Header{}
	if opts.Username != "" && opts.Password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		headers.Set("Authorization", "Basic "+cred)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("hdc/transport: websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("hdc/transport: websocket dial failed: %w", err)
	}
	return &WebSocketTransport{conn: conn}, nil
}

func (w *WebSocketTransport) Write(data []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (w *WebSocketTransport) Listen(onData func([]byte)) error {
	go func() {
		for {
			messageType, data, err := w.conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			onData(data)
		}
	}()
	return nil
}

func (w *WebSocketTransport) Close() error { return w.conn.Close() }

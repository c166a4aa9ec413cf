// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcprobe

import (
	"fmt"
	"time"

	"github.com/kiksotik/hdc/pkg/hdc/engine"
	"github.com/kiksotik/hdc/pkg/hdc/transport"
	"github.com/kiksotik/hdc/pkg/hdc/wire"
)

// client is a minimal synchronous request/reply driver over one Transport:
// exactly the single-request-in-flight discipline the wire protocol itself
// requires, so there is no need for request/response correlation IDs.
type client struct {
	t        transport.Transport
	composer *transport.Composer
	rx       chan []byte
	buf      []byte
}

func newClient(t transport.Transport) (*client, error) {
	c := &client{t: t, composer: transport.NewComposer(t, 512), rx: make(chan []byte, 16)}
	if err := t.Listen(func(chunk []byte) { c.rx <- append([]byte(nil), chunk...) }); err != nil {
		return nil, err
	}
	return c, nil
}

// request sends payload as a single message and waits up to timeout for one
// complete reply message, decoding across as many RX chunks as it takes.
func (c *client) request(payload []byte, timeout time.Duration) ([]byte, error) {
	wire.EncodeSingle(c.composer, payload)
	if err := c.composer.Flush(); err != nil {
		return nil, fmt.Errorf("hdc-probe: flushing request: %w", err)
	}

	deadline := time.After(timeout)
	for {
		// Replies are host-bound and may span many packets (the IDL-JSON
		// document in particular), so reassembly, not single-packet
		// decoding, is what can actually terminate this loop.
		message, _ := wire.DecodeReplyMessage(c.buf, 0)
		if message != nil {
			c.buf = nil
			return message, nil
		}
		select {
		case chunk := <-c.rx:
			c.buf = append(c.buf, chunk...)
		case <-deadline:
			return nil, fmt.Errorf("hdc-probe: timed out waiting for a reply")
		}
	}
}

func (c *client) close() error { return c.t.Close() }

// requestMeta sends a [Meta][metaID] request and returns the reply payload
// with the [Meta][metaID] prefix stripped.
func (c *client) requestMeta(metaID byte, timeout time.Duration) ([]byte, error) {
	reply, err := c.request([]byte{engine.MsgTypeMeta, metaID}, timeout)
	if err != nil {
		return nil, err
	}
	if len(reply) < 2 || reply[0] != engine.MsgTypeMeta || reply[1] != metaID {
		return nil, fmt.Errorf("hdc-probe: unexpected meta reply %x", reply)
	}
	return reply[2:], nil
}

// requestCommand sends a [Command][featureID][commandID][args...] request
// and returns the reply's exception code and result payload.
func (c *client) requestCommand(featureID, commandID byte, args []byte, timeout time.Duration) (byte, []byte, error) {
	req := append([]byte{engine.MsgTypeCommand, featureID, commandID}, args...)
	reply, err := c.request(req, timeout)
	if err != nil {
		return 0, nil, err
	}
	if len(reply) < 4 || reply[0] != engine.MsgTypeCommand || reply[1] != featureID || reply[2] != commandID {
		return 0, nil, fmt.Errorf("hdc-probe: unexpected command reply %x", reply)
	}
	return reply[3], reply[4:], nil
}

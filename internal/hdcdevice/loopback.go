// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcdevice

import (
	"time"

	"github.com/kiksotik/hdc/pkg/hdc/demo"
	"github.com/kiksotik/hdc/pkg/hdc/engine"
	"github.com/kiksotik/hdc/pkg/hdc/transport"
	"github.com/kiksotik/hdc/pkg/hdc/wire"
)

// runLoopbackProber drives the --demo transport end: every few seconds it
// toggles the LED feature's SetOn command and logs whatever comes back,
// so `serve --demo` has something to watch without any hardware attached.
func runLoopbackProber(t transport.Transport) {
	rxCh := make(chan []byte, 16)
	t.Listen(func(chunk []byte) { rxCh <- append([]byte(nil), chunk...) })

	composer := transport.NewComposer(t, 512)
	var rxBuf []byte
	on := false
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case chunk := <-rxCh:
			rxBuf = append(rxBuf, chunk...)
			for {
				message, ferrs := wire.DecodeReplyMessage(rxBuf, 0)
				for _, fe := range ferrs {
					logger.Warn().Str("kind", fe.Kind.String()).Int("offset", fe.Offset).Msg("loopback prober: frame error")
				}
				if message == nil {
					break
				}
				logger.Info().Hex("message", message).Msg("loopback prober: received")
				rxBuf = nil
			}

		case <-ticker.C:
			on = !on
			arg := byte(0x00)
			if on {
				arg = 0x01
			}
			req := []byte{engine.MsgTypeCommand, demo.LEDFeatureID, 0x01, arg}
			logger.Info().Hex("request", req).Bool("on", on).Msg("loopback prober: SetOn")
			wire.EncodeSingle(composer, req)
			composer.Flush()
		}
	}
}

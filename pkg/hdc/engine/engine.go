// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package engine implements the device-side HDC protocol engine: message
// routing, mandatory command/property/event injection, and the
// cooperative work loop that drains received bytes and dispatches them.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kiksotik/hdc/pkg/hdc/model"
	"github.com/kiksotik/hdc/pkg/hdc/transport"
	"github.com/kiksotik/hdc/pkg/hdc/wire"
)

// VersionString is returned by Meta/HdcVersion and embedded in IDL-JSON.
const VersionString = "HDC 1.0.0-alpha.12"

// Python-compatible log levels, the only values LogEventThreshold and
// EmitLog's level argument are coerced to/accept.
const (
	LevelDebug    byte = 10
	LevelInfo     byte = 20
	LevelWarning  byte = 30
	LevelError    byte = 40
	LevelCritical byte = 50
)

// Message type IDs, dispatched on the first byte of every message.
const (
	MsgTypeMeta    byte = 0xF0
	MsgTypeEcho    byte = 0xF1
	MsgTypeCommand byte = 0xF2
	MsgTypeEvent   byte = 0xF3
)

// defaultTXBufferSize comfortably holds one maximum-size packet plus
// headroom; two buffers this size are allocated by the composer.
const defaultTXBufferSize = 512

// CustomRouter handles application-defined message classes (msgType <
// 0xF0). reply composes and transmits a raw message payload. Returning
// false lets the engine fall back to logging an unknown-message-type
// error.
type CustomRouter func(msgType byte, payload []byte, reply func(payload []byte)) bool

// Config configures a new Engine.
type Config struct {
	Device       *model.Device
	Transport    transport.Transport
	TXBufferSize int // 0 selects defaultTXBufferSize
	CustomRouter CustomRouter
	Logger       zerolog.Logger
}

// Engine is the device-side HDC protocol engine bound to one Device
// descriptor tree and one Transport.
type Engine struct {
	dev          *model.Device
	composer     *transport.Composer
	customRouter CustomRouter
	log          zerolog.Logger

	rxCh  chan []byte
	rxBuf []byte // owned solely by Work's goroutine; never touched by Listen's callback
}

// New validates dev, injects the mandatory per-feature descriptors, and
// wires the engine to t. It does not start the work loop; call Work to do
// that.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Device.Validate(); err != nil {
		return nil, fmt.Errorf("hdc/engine: invalid device: %w", err)
	}

	txBufSize := cfg.TXBufferSize
	if txBufSize == 0 {
		txBufSize = defaultTXBufferSize
	}
	if txBufSize < wire.MaxPacketPayload+wire.PacketOverhead {
		return nil, fmt.Errorf("hdc/engine: TXBufferSize must be at least %d", wire.MaxPacketPayload+wire.PacketOverhead)
	}

	injectMandatoryDescriptors(cfg.Device)

	e := &Engine{
		dev:          cfg.Device,
		composer:     transport.NewComposer(cfg.Transport, txBufSize),
		customRouter: cfg.CustomRouter,
		log:          cfg.Logger,
		rxCh:         make(chan []byte, 64),
	}

	if err := cfg.Transport.Listen(func(chunk []byte) {
		cp := make([]byte, len(chunk))
		copy(cp, chunk)
		e.rxCh <- cp
	}); err != nil {
		return nil, fmt.Errorf("hdc/engine: starting transport listener: %w", err)
	}

	return e, nil
}

// Work runs the dispatch loop: it blocks draining received bytes and
// dispatching complete messages until ctx is cancelled. This stands in for
// the embedded engine's work(), called from the application's super-loop
// whenever dma_rx_complete is set — here, the rx channel receive plays
// that role.
func (e *Engine) Work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk := <-e.rxCh:
			e.rxBuf = append(e.rxBuf, chunk...)
			e.processRX()
		}
	}
}

// processRX decodes the single request packet in rxBuf, if one is complete,
// and dispatches it, then restarts reception — the engine only ever has one
// in-flight request at a time, so any bytes after that packet are counted
// as frame errors and dropped.
func (e *Engine) processRX() {
	message, ferrs := wire.DecodeMessage(e.rxBuf, e.dev.MaxReqMessageSize)
	if message != nil {
		e.dispatch(message)
		e.logFrameErrors(ferrs)
		e.rxBuf = nil
		e.composer.Flush()
		return
	}
	if len(ferrs) > 0 {
		e.logFrameErrors(ferrs)
		e.rxBuf = nil
		e.composer.Flush()
	}
	// Otherwise the buffer holds an incomplete packet; wait for more bytes.
}

func (e *Engine) logFrameErrors(ferrs []wire.FrameError) {
	if len(ferrs) == 0 {
		return
	}
	e.EmitLog(nil, LevelWarning, fmt.Sprintf("%d reading-frame error(s) while decoding a request", len(ferrs)))
}

// dispatch routes one complete message to its handler based on its first
// byte.
func (e *Engine) dispatch(msg []byte) {
	if len(msg) == 0 {
		return // empty messages are legal and ignored
	}
	msgType := msg[0]
	switch {
	case msgType == MsgTypeMeta:
		e.handleMeta(msg)
	case msgType == MsgTypeEcho:
		e.reply(msg)
	case msgType == MsgTypeCommand:
		e.handleCommand(msg)
	case msgType == MsgTypeEvent:
		e.EmitLog(nil, LevelError, "event messages are not accepted from the host")
	case msgType < MsgTypeMeta && e.customRouter != nil:
		if !e.customRouter(msgType, msg[1:], e.reply) {
			e.EmitLog(nil, LevelError, fmt.Sprintf("unhandled custom message type 0x%02X", msgType))
		}
	default:
		e.EmitLog(nil, LevelError, fmt.Sprintf("unknown message type 0x%02X", msgType))
	}
}

// reply composes and transmits a raw message payload through the TX
// composer.
func (e *Engine) reply(payload []byte) {
	wire.EncodeSingle(e.composer, payload)
}

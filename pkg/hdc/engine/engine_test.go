// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kiksotik/hdc/pkg/hdc/demo"
	"github.com/kiksotik/hdc/pkg/hdc/model"
	"github.com/kiksotik/hdc/pkg/hdc/wire"
)

// fakeTransport lets tests inject inbound bytes synchronously and inspect
// everything written back, without a real serial port or socket.
type fakeTransport struct {
	mu     sync.Mutex
	out    []byte
	onData func([]byte)
}

func (t *fakeTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	t.out = append(t.out, p...)
	t.mu.Unlock()
	return len(p), nil
}

func (t *fakeTransport) Listen(onData func([]byte)) error {
	t.onData = onData
	return nil
}

func (t *fakeTransport) Close() error { return nil }

func (t *fakeTransport) inject(b []byte) { t.onData(b) }

func (t *fakeTransport) snapshot() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.out...)
}

// newTestEngine builds an engine over demo.NewDevice and starts its work
// loop, returning the transport to poke at and a cancel func to stop it.
func newTestEngine(t *testing.T, maxReq int) (*fakeTransport, context.CancelFunc) {
	t.Helper()
	ft := &fakeTransport{}
	dev := demo.NewDevice(VersionString, maxReq, 0xAABBCCDD)
	e, err := New(Config{Device: dev, Transport: ft, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go e.Work(ctx)
	return ft, cancel
}

func sendRequest(t *testing.T, ft *fakeTransport, payload []byte) {
	t.Helper()
	var buf bytes.Buffer
	sink := &bufSink{buf: &buf}
	wire.EncodeSingle(sink, payload)
	ft.inject(buf.Bytes())
}

// bufSink is a minimal wire.Sink writing contiguously into a bytes.Buffer,
// used to build test request packets.
type bufSink struct{ buf *bytes.Buffer }

func (s *bufSink) Reserve(n int) []byte {
	start := s.buf.Len()
	s.buf.Write(make([]byte, n))
	return s.buf.Bytes()[start : start+n]
}

func waitFor(t *testing.T, ft *fakeTransport, want []byte) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if bytes.Contains(ft.snapshot(), want) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %x in output %x", want, ft.snapshot())
}

func TestScenarioEcho(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	req := []byte{MsgTypeEcho, 'p', 'i', 'n', 'g'}
	sendRequest(t, ft, req)
	waitFor(t, ft, req)
}

func TestScenarioMetaMaxReq(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	sendRequest(t, ft, []byte{MsgTypeMeta, MetaIDMaxReq})
	waitFor(t, ft, []byte{0xF0, 0xF1, 0x80, 0x00, 0x00, 0x00})
}

func TestScenarioUnknownFeature(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	sendRequest(t, ft, []byte{MsgTypeCommand, 0x07, 0xF0, 0x10})
	waitFor(t, ft, []byte{MsgTypeCommand, 0x07, 0xF0, byte(model.ExcUnknownFeature)})
}

func TestScenarioReadOnlyProperty(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	// SetPropertyValue(uc_devid=0x10, 0x78563412) on Core (read-only).
	sendRequest(t, ft, []byte{MsgTypeCommand, 0x00, 0xF1, 0x10, 0x12, 0x34, 0x56, 0x78})
	waitFor(t, ft, []byte{MsgTypeCommand, 0x00, 0xF1, byte(model.ExcReadOnlyProperty)})
}

func TestScenarioLogEventThresholdClamping(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	// SetPropertyValue(LogEventThreshold=0xF0, 42) on Core.
	sendRequest(t, ft, []byte{MsgTypeCommand, 0x00, 0xF1, model.PropIDLogEventThreshold, 42})
	waitFor(t, ft, []byte{MsgTypeCommand, 0x00, 0xF1, byte(model.ExcNone), 40})
}

func TestScenarioFeatureStateTransition(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	// Turn the LED on: state 0x00 -> 0x01 should emit a transition event.
	sendRequest(t, ft, []byte{MsgTypeCommand, 0x01, 0x01, 0x01})
	waitFor(t, ft, []byte{MsgTypeCommand, 0x01, 0x01, byte(model.ExcNone)})
	waitFor(t, ft, []byte{MsgTypeEvent, 0x01, model.EventIDFeatureStateTransition, 0x00, 0x01})
}

func TestScenarioResetEmitsFeatureStateTransition(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	// Core.Reset: 0x00 0x01, no arguments.
	sendRequest(t, ft, []byte{MsgTypeCommand, model.CoreFeatureID, 0x01})
	waitFor(t, ft, []byte{MsgTypeCommand, model.CoreFeatureID, 0x01, byte(model.ExcNone)})
	waitFor(t, ft, []byte{MsgTypeEvent, model.CoreFeatureID, model.EventIDFeatureStateTransition, demo.CoreStateRunning, demo.CoreStateOff})
}

func TestGetPropertyValueAfterSetReturnsCoercedValue(t *testing.T) {
	ft, cancel := newTestEngine(t, 128)
	defer cancel()

	sendRequest(t, ft, []byte{MsgTypeCommand, 0x00, 0xF1, model.PropIDLogEventThreshold, 42})
	waitFor(t, ft, []byte{MsgTypeCommand, 0x00, 0xF1, byte(model.ExcNone), 40})

	sendRequest(t, ft, []byte{MsgTypeCommand, 0x00, 0xF0, model.PropIDLogEventThreshold})
	waitFor(t, ft, []byte{MsgTypeCommand, 0x00, 0xF0, byte(model.ExcNone), 40})
}

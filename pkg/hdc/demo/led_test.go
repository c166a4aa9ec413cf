// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package demo

import (
	"testing"

	"github.com/kiksotik/hdc/pkg/hdc/model"
)

func TestLEDSetOnRejectsInvalidBoolByte(t *testing.T) {
	f := newLEDFeature()
	cmd := f.Command(0x01)

	var got model.CommandResult
	ctx := &model.CommandContext{
		Feature: f,
		Request: []byte{0xF2, f.ID, cmd.ID, 0x02},
		Emit:    &recordingEmitter{},
		Reply:   func(r model.CommandResult) { got = r },
	}
	cmd.Handler(ctx)

	if got.Exception != model.ExcInvalidArgs {
		t.Errorf("exception = %v, want ExcInvalidArgs", got.Exception)
	}
}

func TestLEDSetOnTurnsStateOnThenOff(t *testing.T) {
	f := newLEDFeature()
	cmd := f.Command(0x01)

	var states []byte
	emit := &recordingEmitter{onSetState: func(_ *model.Feature, s byte) { states = append(states, s) }}

	on := &model.CommandContext{Feature: f, Request: []byte{0xF2, f.ID, cmd.ID, 0x01}, Emit: emit, Reply: func(model.CommandResult) {}}
	cmd.Handler(on)

	off := &model.CommandContext{Feature: f, Request: []byte{0xF2, f.ID, cmd.ID, 0x00}, Emit: emit, Reply: func(model.CommandResult) {}}
	cmd.Handler(off)

	if len(states) != 2 || states[0] != LEDStateOn || states[1] != LEDStateOff {
		t.Errorf("states = %v, want [on, off]", states)
	}
}

func TestLEDBlinkRatePropertyIsReadWrite(t *testing.T) {
	f := newLEDFeature()
	prop := f.Property(0x10)
	if prop == nil {
		t.Fatal("blink_rate_hz property missing")
	}
	if prop.ReadOnly {
		t.Error("blink_rate_hz must be read-write")
	}
	if prop.DType != model.DTypeUint8 {
		t.Errorf("blink_rate_hz dtype = %v, want DTypeUint8", prop.DType)
	}
}

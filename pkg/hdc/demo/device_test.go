// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package demo

import (
	"testing"

	"github.com/kiksotik/hdc/pkg/hdc/model"
)

func TestNewDeviceValidates(t *testing.T) {
	dev := NewDevice("HDC 1.0.0-alpha.12", 128, 0xAABBCCDD)
	if err := dev.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestNewDeviceHasCoreAndLEDFeatures(t *testing.T) {
	dev := NewDevice("HDC 1.0.0-alpha.12", 128, 0xAABBCCDD)

	core := dev.CoreFeature()
	if core == nil {
		t.Fatal("no Core feature registered")
	}
	if core.FeatureState != CoreStateRunning {
		t.Errorf("Core.FeatureState = %#x, want CoreStateRunning", core.FeatureState)
	}

	led := dev.Feature(0x01)
	if led == nil {
		t.Fatal("no Led feature registered")
	}
	if led.FeatureState != LEDStateOff {
		t.Errorf("Led.FeatureState = %#x, want LEDStateOff", led.FeatureState)
	}
}

func TestCoreDeviceIDPropertyReadsBackDeviceID(t *testing.T) {
	dev := NewDevice("HDC 1.0.0-alpha.12", 128, 0xAABBCCDD)
	core := dev.CoreFeature()

	prop := core.Property(0x10)
	if prop == nil {
		t.Fatal("uc_devid property missing")
	}
	if !prop.ReadOnly {
		t.Error("uc_devid must be read-only")
	}
	want := []byte{0xDD, 0xCC, 0xBB, 0xAA} // little-endian
	for i, b := range want {
		if prop.Storage[i] != b {
			t.Errorf("uc_devid storage[%d] = %#x, want %#x", i, prop.Storage[i], b)
		}
	}
}

func TestResetCommandTransitionsCoreToOff(t *testing.T) {
	dev := NewDevice("HDC 1.0.0-alpha.12", 128, 0xAABBCCDD)
	core := dev.CoreFeature()
	if core.FeatureState != CoreStateRunning {
		t.Fatalf("Core.FeatureState = %#x, want CoreStateRunning before Reset", core.FeatureState)
	}

	cmd := core.Command(0x01)
	if cmd == nil {
		t.Fatal("Reset command missing")
	}

	var gotResult model.CommandResult
	var gotState byte
	stateSet := false
	emit := &recordingEmitter{onSetState: func(f *model.Feature, state byte) { gotState = state; stateSet = true }}
	ctx := &model.CommandContext{Feature: core, Emit: emit, Reply: func(r model.CommandResult) { gotResult = r }}
	cmd.Handler(ctx)

	if gotResult.Exception != model.ExcNone {
		t.Errorf("Reset exception = %v, want ExcNone", gotResult.Exception)
	}
	if !stateSet {
		t.Fatal("Reset did not call SetFeatureState")
	}
	if gotState != CoreStateOff {
		t.Errorf("Reset did not transition feature state to off, got %#x", gotState)
	}
}

// recordingEmitter is a minimal model.EventEmitter double for exercising
// command handlers without a full engine.
type recordingEmitter struct {
	onSetState func(f *model.Feature, state byte)
}

func (e *recordingEmitter) EmitEvent(f *model.Feature, eventID byte, payload []byte) {}
func (e *recordingEmitter) EmitLog(f *model.Feature, level byte, text string)        {}
func (e *recordingEmitter) SetFeatureState(f *model.Feature, state byte) {
	if e.onSetState != nil {
		e.onSetState(f, state)
	}
}
func (e *recordingEmitter) Flush() {}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package demo wires together a minimal HDC device — a Core feature and an
// LED feature — used by the bundled cmd/hdc-device application and by the
// engine's own tests to exercise a complete request/reply/event cycle.
package demo

import (
	"encoding/binary"

	"github.com/kiksotik/hdc/pkg/hdc/model"
)

// Core feature states, mirroring Core_State_Off/Core_State_Ready from the
// original firmware demo: the device comes up already running, and Reset
// drops it back to Off before the (simulated) restart.
const (
	CoreStateOff     byte = 0x00
	CoreStateRunning byte = 0x02
)

// NewDevice builds a Device with a Core feature (device id property, reset
// command) and an LED feature (blink rate property, on/off command),
// ready to be passed to engine.New.
func NewDevice(versionString string, maxReqMessageSize int, deviceID uint32) *model.Device {
	dev := model.NewDevice(versionString, maxReqMessageSize)
	dev.AddFeature(newCoreFeature(deviceID))
	dev.AddFeature(newLEDFeature())
	return dev
}

func newCoreFeature(deviceID uint32) *model.Feature {
	f := model.NewFeature(model.CoreFeatureID, "Core", "Core", "1.0", "Mandatory device-wide feature")
	f.FeatureState = CoreStateRunning

	f.AddState(model.State{ID: CoreStateOff, Name: "off"})
	f.AddState(model.State{ID: CoreStateRunning, Name: "running"})

	devIDStorage := make([]byte, 4)
	binary.LittleEndian.PutUint32(devIDStorage, deviceID)
	f.AddProperty(&model.Property{
		ID:       0x10,
		Name:     "uc_devid",
		DType:    model.DTypeUint32,
		ReadOnly: true,
		Doc:      "Factory-programmed unique device identifier",
		Storage:  devIDStorage,
	})

	f.AddCommand(&model.Command{
		ID:     0x01,
		Name:   "Reset",
		Doc:    "Reinitializes the whole device",
		Raises: nil,
		Handler: func(ctx *model.CommandContext) {
			// Reply before the state transition: the host must not time out
			// awaiting the reply while the (simulated) reset is under way.
			ctx.Ok(nil)
			ctx.Emit.SetFeatureState(ctx.Feature, CoreStateOff)
			ctx.Emit.Flush()
		},
	})

	return f
}

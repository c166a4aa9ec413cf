// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package model

import "fmt"

// Device is the root of the descriptor model: a version, a negotiated
// maximum single-packet request size, and an ordered set of Features.
// Exactly one Device exists per engine instance, built once at startup
// and never destroyed.
type Device struct {
	VersionString     string
	MaxReqMessageSize int
	Features          []*Feature
}

// NewDevice creates a Device with no features registered yet. The caller
// must add a Core feature (ID 0) before calling engine.New.
func NewDevice(versionString string, maxReqMessageSize int) *Device {
	return &Device{
		VersionString:     versionString,
		MaxReqMessageSize: maxReqMessageSize,
	}
}

// AddFeature registers a feature. Order is preserved for IDL-JSON output.
func (d *Device) AddFeature(f *Feature) { d.Features = append(d.Features, f) }

// Feature looks up a feature by ID.
func (d *Device) Feature(id byte) *Feature {
	for _, f := range d.Features {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// CoreFeature returns the mandatory Core feature (ID 0).
func (d *Device) CoreFeature() *Feature { return d.Feature(CoreFeatureID) }

// Validate checks the device-wide invariants: a Core feature must exist,
// feature IDs must be unique, and every feature's own descriptors must be
// well-formed.
func (d *Device) Validate() error {
	if d.CoreFeature() == nil {
		return fmt.Errorf("device: no Core feature (id 0x00) registered")
	}
	seen := map[byte]bool{}
	for _, f := range d.Features {
		if seen[f.ID] {
			return fmt.Errorf("device: duplicate feature id 0x%02X", f.ID)
		}
		seen[f.ID] = true
		if err := f.Validate(); err != nil {
			return err
		}
	}
	if d.MaxReqMessageSize < 5 || d.MaxReqMessageSize > 254 {
		return fmt.Errorf("device: MaxReqMessageSize must be in 5..254, got %d", d.MaxReqMessageSize)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

// Package equipment is the protocol core for smart exercise bikes and
// trainers. Each supported machine class implements the Equipment
// contract over a link.Transport; the factory resolves a type tag and
// discovery parameters into a concrete, not-yet-connected instance.
//
// An Equipment instance is driven by a single logical task: one
// state-machine call in flight at a time. Instances are fully
// independent and share no mutable state, so any number of them can be
// driven concurrently by separate tasks.
package equipment

import (
	"context"
	"fmt"
)

// State is the connection lifecycle state of one Equipment instance.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Telemetry is one decoded reading from the machine. Cadence, Power,
// and Speed are reported by every variant; the remaining fields are
// filled only where the machine class provides them.
type Telemetry struct {
	Cadence uint16  // revolutions per minute
	Power   uint16  // watts
	Speed   float64 // km/h, two-decimal precision

	Distance   uint32 // meters
	Resistance int16  // unitless level
	Calories   uint16 // kJ
	HeartRate  uint8  // bpm
	Elapsed    uint16 // seconds
}

// String renders the always-present fields.
func (t Telemetry) String() string {
	return fmt.Sprintf("%d rpm, %d W, %.2f km/h", t.Cadence, t.Power, t.Speed)
}

// Equipment is the capability contract every machine class implements.
//
// Connect is valid only while disconnected; it reports false (with a
// nil error) when the machine declined or was unreachable, a common
// condition the caller decides whether to retry. Read is valid only
// while connected and returns (nil, nil) when no notification is
// pending. SetLevel commands the target resistance level. Disconnect
// is valid from any state and idempotent.
type Equipment interface {
	Connect(ctx context.Context) (bool, error)
	Read(ctx context.Context) (*Telemetry, error)
	SetLevel(level int) error
	Disconnect() error

	// State returns the current lifecycle state.
	State() State
	// Name identifies the instance for display and logging.
	Name() string
}

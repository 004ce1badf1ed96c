// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

// Package iconsole implements the wire protocol spoken by iConsole-class
// stationary bikes (console firmware 0028 and compatible).
//
// The protocol is a pair of fixed-layout frames exchanged over a GATT
// link: a two-byte resistance setpoint command written to the console's
// command characteristic, and a seven-byte telemetry frame delivered as
// notifications. This package is pure encode/decode; it performs no I/O.
package iconsole

// Frame opcodes
const (
	OpTelemetry = 0x01 // console -> client, telemetry notification
	OpSetLevel  = 0x02 // client -> console, resistance setpoint
)

// Frame sizes in bytes
const (
	TelemetryFrameSize = 7 // opcode + cadence u16 + power u16 + speed u16
	SetLevelFrameSize  = 2 // opcode + level
)

// Resistance level bounds accepted by the console
const (
	MinLevel = 0
	MaxLevel = 32
)

// Speed is carried on the wire as an unsigned integer in units of
// 0.01 km/h.
const speedScale = 0.01

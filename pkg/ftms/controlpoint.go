// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package ftms

import (
	"errors"
	"fmt"
)

// Control Point command builders. Write the returned bytes to the
// Control Point characteristic; the machine answers with an indication
// parsed by ParseControlResponse.

// RequestControl builds the Request Control command. Must be accepted
// before the machine honors any target commands.
func RequestControl() []byte {
	return []byte{OpRequestControl}
}

// StartOrResume builds the Start or Resume command. Some trainers
// require it before target commands take effect.
func StartOrResume() []byte {
	return []byte{OpStartOrResume}
}

// Stop builds the Stop command with the Stop parameter.
func Stop() []byte {
	return []byte{OpStop, StopParamStop}
}

// SetTargetResistance builds the Set Target Resistance Level command.
// The level is a sint16 in 0.1 units (10 = level 1.0).
func SetTargetResistance(level int16) []byte {
	return []byte{OpSetTargetResistance, byte(level), byte(level >> 8)}
}

// SetTargetPower builds the Set Target Power command (ERG mode),
// power as sint16 watts.
func SetTargetPower(watts int16) []byte {
	return []byte{OpSetTargetPower, byte(watts), byte(watts >> 8)}
}

// SetTargetCadence builds the Set Targeted Cadence command,
// cadence as uint16 in 0.5 rpm units.
func SetTargetCadence(halfRpm uint16) []byte {
	return []byte{OpSetTargetCadence, byte(halfRpm), byte(halfRpm >> 8)}
}

// ErrControlRejected is returned when the machine answers a Control
// Point command with a non-success result code.
var ErrControlRejected = errors.New("control point command rejected")

// ControlResponse is a decoded Control Point indication.
type ControlResponse struct {
	RequestOpCode uint8
	Result        uint8
}

// Ok reports whether the machine accepted the request.
func (r ControlResponse) Ok() bool {
	return r.Result == ResultSuccess
}

// ParseControlResponse parses a Control Point indication:
// [0x80, request op code, result code].
func ParseControlResponse(data []byte) (*ControlResponse, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("%w: %d bytes (expected 3)", ErrMalformedFrame, len(data))
	}
	if data[0] != OpResponseCode {
		return nil, fmt.Errorf("%w: opcode 0x%02X (expected 0x%02X)", ErrMalformedFrame, data[0], OpResponseCode)
	}
	return &ControlResponse{RequestOpCode: data[1], Result: data[2]}, nil
}

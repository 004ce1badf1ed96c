// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package iconsole

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a byte sequence does not match the
// expected telemetry frame shape. Decoding never yields a partial sample.
var ErrMalformedFrame = errors.New("malformed frame")

// DecodeTelemetry parses a telemetry notification frame.
//
// Layout: [OpTelemetry, cadence u16, power u16, speed u16], all
// multi-byte fields big-endian, speed in units of 0.01 km/h.
func DecodeTelemetry(data []byte) (*Telemetry, error) {
	if len(data) != TelemetryFrameSize {
		return nil, fmt.Errorf("%w: length %d (expected %d)", ErrMalformedFrame, len(data), TelemetryFrameSize)
	}
	if data[0] != OpTelemetry {
		return nil, fmt.Errorf("%w: opcode 0x%02X (expected 0x%02X)", ErrMalformedFrame, data[0], OpTelemetry)
	}

	return &Telemetry{
		Cadence: binary.BigEndian.Uint16(data[1:3]),
		Power:   binary.BigEndian.Uint16(data[3:5]),
		Speed:   float64(binary.BigEndian.Uint16(data[5:7])) * speedScale,
	}, nil
}

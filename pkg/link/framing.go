// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package link

import "fmt"

// Serial framing bytes. Head units that expose a wired console port
// carry the same command/telemetry frames as the GATT link, delimited
// with start/end markers, byte stuffing, and a trailing CRC.
const (
	startByte = 0x7E
	endByte   = 0x7F
	escByte   = 0x7D
	escXor    = 0x20

	maxFrameSize = 64
)

// frameBytes wraps a payload for the wire: start + stuffed(payload+crc) + end.
func frameBytes(payload []byte) []byte {
	data := make([]byte, 0, len(payload)+2)
	data = append(data, payload...)

	crc := crc16(payload)
	data = append(data, byte(crc>>8), byte(crc&0xFF))

	stuffed := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if b == startByte || b == endByte || b == escByte {
			stuffed = append(stuffed, escByte, b^escXor)
		} else {
			stuffed = append(stuffed, b)
		}
	}

	frame := make([]byte, 0, len(stuffed)+2)
	frame = append(frame, startByte)
	frame = append(frame, stuffed...)
	frame = append(frame, endByte)
	return frame
}

// frameDecoder is an incremental decoder for the serial framing. Feed
// it bytes as they arrive; completed payloads come back CRC-checked.
type frameDecoder struct {
	inFrame    bool
	escapeNext bool
	buffer     []byte
}

func newFrameDecoder() *frameDecoder {
	return &frameDecoder{buffer: make([]byte, 0, maxFrameSize)}
}

func (d *frameDecoder) reset() {
	d.inFrame = false
	d.escapeNext = false
	d.buffer = d.buffer[:0]
}

// decodeByte processes one wire byte. It returns a completed payload,
// or nil while the frame is still incomplete. Framing violations return
// an error and resynchronize the decoder.
func (d *frameDecoder) decodeByte(b byte) ([]byte, error) {
	if b == startByte && !d.escapeNext {
		// A start byte always begins a fresh frame, even mid-frame.
		d.reset()
		d.inFrame = true
		return nil, nil
	}

	if !d.inFrame {
		// Garbage between frames; wait for the next start byte.
		return nil, nil
	}

	if b == endByte && !d.escapeNext {
		payload := d.buffer
		d.inFrame = false
		if len(payload) < 2 {
			d.reset()
			return nil, fmt.Errorf("frame too short: %d bytes", len(payload))
		}

		body := payload[:len(payload)-2]
		wireCRC := uint16(payload[len(payload)-2])<<8 | uint16(payload[len(payload)-1])
		if calculated := crc16(body); calculated != wireCRC {
			d.reset()
			return nil, fmt.Errorf("CRC mismatch: expected 0x%04X, got 0x%04X", calculated, wireCRC)
		}

		out := make([]byte, len(body))
		copy(out, body)
		d.reset()
		return out, nil
	}

	if b == escByte && !d.escapeNext {
		d.escapeNext = true
		return nil, nil
	}

	if d.escapeNext {
		b ^= escXor
		d.escapeNext = false
	}

	if len(d.buffer) >= maxFrameSize {
		d.reset()
		return nil, fmt.Errorf("frame exceeds max size %d", maxFrameSize)
	}
	d.buffer = append(d.buffer, b)
	return nil, nil
}

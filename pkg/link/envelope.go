// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package link

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Bridge envelope ops. Every WebSocket binary message between client
// and bridge is a CBOR array [op, payload_map] with integer map keys.
const (
	opSubscribe = 0x01 // client -> bridge: enable notifications on an endpoint
	opWrite     = 0x02 // client -> bridge: write a command frame
	opNotify    = 0x03 // bridge -> client: notification frame
	opGone      = 0x04 // bridge -> client: device link lost
	opError     = 0x7F // bridge -> client: request failed
)

// Envelope payload map keys.
const (
	keyService        = 0
	keyCharacteristic = 1
	keyData           = 2
	keyReason         = 3
)

type envelope struct {
	op     uint8
	ep     Endpoint
	data   []byte
	reason string
}

func encodeEnvelope(op uint8, ep Endpoint, data []byte) ([]byte, error) {
	payload := map[int]interface{}{
		keyService:        ep.Service.String(),
		keyCharacteristic: ep.Characteristic.String(),
	}
	if data != nil {
		payload[keyData] = data
	}
	out, err := cbor.Marshal([]interface{}{uint64(op), payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return out, nil
}

func decodeEnvelope(data []byte) (*envelope, error) {
	var msg []cbor.RawMessage
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if len(msg) != 2 {
		return nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	var op uint64
	if err := cbor.Unmarshal(msg[0], &op); err != nil {
		return nil, fmt.Errorf("failed to decode op: %w", err)
	}
	if op > 255 {
		return nil, fmt.Errorf("op out of range: %d", op)
	}

	var payload map[int]cbor.RawMessage
	if err := cbor.Unmarshal(msg[1], &payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload map: %w", err)
	}

	env := &envelope{op: uint8(op)}

	var svc, chr string
	if raw, ok := payload[keyService]; ok {
		if err := cbor.Unmarshal(raw, &svc); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
	}
	if raw, ok := payload[keyCharacteristic]; ok {
		if err := cbor.Unmarshal(raw, &chr); err != nil {
			return nil, fmt.Errorf("failed to decode characteristic: %w", err)
		}
	}
	if svc != "" || chr != "" {
		s, err := uuid.Parse(svc)
		if err != nil {
			return nil, fmt.Errorf("invalid service uuid %q: %w", svc, err)
		}
		c, err := uuid.Parse(chr)
		if err != nil {
			return nil, fmt.Errorf("invalid characteristic uuid %q: %w", chr, err)
		}
		env.ep = Endpoint{Service: s, Characteristic: c}
	}

	if raw, ok := payload[keyData]; ok {
		if err := cbor.Unmarshal(raw, &env.data); err != nil {
			return nil, fmt.Errorf("failed to decode data: %w", err)
		}
	}
	if raw, ok := payload[keyReason]; ok {
		if err := cbor.Unmarshal(raw, &env.reason); err != nil {
			return nil, fmt.Errorf("failed to decode reason: %w", err)
		}
	}

	return env, nil
}

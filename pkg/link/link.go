// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

// Package link provides the wireless transport layer the equipment core
// drives: endpoint-addressed command writes and notification streams
// over a LAN GATT bridge (WebSocket), a direct framed serial link, or an
// in-memory loopback for tests and simulated equipment.
package link

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Endpoint identifies one GATT characteristic: an addressable data
// channel for a command or notification stream.
type Endpoint struct {
	Service        uuid.UUID
	Characteristic uuid.UUID
}

// Identity describes what to look for during discovery. Immutable once
// resolved into a Candidate.
type Identity struct {
	// NameFilter matches against advertised instance/device names.
	// Empty matches everything.
	NameFilter string

	// MinRSSI discards candidates advertising a weaker signal, in dBm.
	// Zero disables the threshold.
	MinRSSI int

	// Timeout bounds the discovery scan. Zero means the transport's
	// default.
	Timeout time.Duration
}

// Candidate is a discovered, not-yet-opened device or bridge.
type Candidate struct {
	Name string
	Addr string // dial address: WebSocket URL or serial port path
	RSSI int    // dBm as advertised; 0 when the transport has no notion of it
}

// Transport locates devices and opens sessions to them.
type Transport interface {
	// Discover locates a device matching the identity, racing against
	// ctx. Fails with ErrNoDevice when nothing matches within the
	// identity's timeout.
	Discover(ctx context.Context, id Identity) (Candidate, error)

	// Open establishes a session to a previously discovered candidate.
	Open(ctx context.Context, c Candidate) (Handle, error)
}

// Handle is one live session. It is owned by exactly one equipment
// instance and is invalid after Close.
type Handle interface {
	// Write sends a command frame to the endpoint.
	// Fails with ErrClosed once the link is down.
	Write(ep Endpoint, data []byte) error

	// Notifications returns the notification stream for the endpoint.
	// The channel holds the single most recent undelivered frame; a
	// newer notification replaces an unread one. The channel is closed
	// when the link goes down.
	Notifications(ep Endpoint) (<-chan []byte, error)

	// Close releases the session. Idempotent.
	Close() error
}

// Transport-level errors.
var (
	ErrNoDevice = errors.New("no matching device found")
	ErrClosed   = errors.New("link closed")
)

// notify delivers data into a one-slot notification channel, replacing
// any undelivered frame so a slow reader always sees the newest sample.
func notify(ch chan []byte, data []byte) {
	for {
		select {
		case ch <- data:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

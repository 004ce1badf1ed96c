// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package link

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// SerialTransport drives equipment attached through a wired console
// port. The serial link is a single logical channel: endpoint identity
// is accepted but not routed, and all notifications arrive on one
// stream.
type SerialTransport struct {
	Port string // explicit port path; skips enumeration when set
	Baud int
}

// Discover resolves the serial port to use. With an explicit Port the
// identity is ignored; otherwise the system port list is filtered by
// the identity's name filter.
func (t *SerialTransport) Discover(ctx context.Context, id Identity) (Candidate, error) {
	if t.Port != "" {
		return Candidate{Name: t.Port, Addr: t.Port}, nil
	}

	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	for _, port := range ports {
		if id.NameFilter != "" && !strings.Contains(strings.ToLower(port), strings.ToLower(id.NameFilter)) {
			continue
		}
		return Candidate{Name: port, Addr: port}, nil
	}
	return Candidate{}, fmt.Errorf("%w: no serial port matches %q", ErrNoDevice, id.NameFilter)
}

// Open opens the port at 8N1 and starts the frame decoder pump.
func (t *SerialTransport) Open(ctx context.Context, c Candidate) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baud := t.Baud
	if baud == 0 {
		baud = 115200
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(c.Addr, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", c.Addr, err)
	}

	h := &serialHandle{
		port:    port,
		decoder: newFrameDecoder(),
		frames:  make(chan []byte, 1),
	}
	go h.readPump()
	return h, nil
}

type serialHandle struct {
	port    serial.Port
	decoder *frameDecoder
	frames  chan []byte

	mu     sync.Mutex
	closed bool
}

func (h *serialHandle) Write(_ Endpoint, data []byte) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if _, err := h.port.Write(frameBytes(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil
}

func (h *serialHandle) Notifications(_ Endpoint) (<-chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	return h.frames, nil
}

func (h *serialHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()
	return h.port.Close()
}

// readPump feeds port bytes through the frame decoder. Corrupt frames
// are dropped; a read error ends the stream, which readers observe as a
// closed channel.
func (h *serialHandle) readPump() {
	defer func() {
		h.mu.Lock()
		if !h.closed {
			h.closed = true
			h.port.Close()
		}
		h.mu.Unlock()
		close(h.frames)
	}()

	buf := make([]byte, 128)
	for {
		n, err := h.port.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			payload, decodeErr := h.decoder.decodeByte(buf[i])
			if decodeErr != nil {
				continue
			}
			if payload != nil {
				notify(h.frames, payload)
			}
		}
	}
}

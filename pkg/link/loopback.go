// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package link

import (
	"context"
	"sync"
	"time"
)

// Loopback is an in-memory Transport for tests and simulated equipment.
// Discovery and session behavior are scriptable: delays, failures, and
// link loss can all be injected, and every write is recorded.
type Loopback struct {
	// DiscoverErr fails Discover when set.
	DiscoverErr error
	// DiscoverDelay stalls Discover; cancellation still wins the race.
	DiscoverDelay time.Duration
	// OpenErr fails Open when set.
	OpenErr error
	// Declined makes Open report an unreachable device (ErrNoDevice).
	Declined bool

	mu     sync.Mutex
	handle *LoopbackHandle
}

// NewLoopback returns a loopback transport with a permanently matching
// device named "loopback".
func NewLoopback() *Loopback {
	return &Loopback{}
}

func (l *Loopback) Discover(ctx context.Context, id Identity) (Candidate, error) {
	if l.DiscoverDelay > 0 {
		timer := time.NewTimer(l.DiscoverDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Candidate{}, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	if l.DiscoverErr != nil {
		return Candidate{}, l.DiscoverErr
	}
	return Candidate{Name: "loopback", Addr: "loopback"}, nil
}

func (l *Loopback) Open(ctx context.Context, c Candidate) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}
	if l.Declined {
		return nil, ErrNoDevice
	}

	h := &LoopbackHandle{
		subs: make(map[Endpoint]chan []byte),
	}
	l.mu.Lock()
	l.handle = h
	l.mu.Unlock()
	return h, nil
}

// Handle returns the most recently opened session, or nil.
func (l *Loopback) Handle() *LoopbackHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle
}

// LoopbackWrite records one Write call.
type LoopbackWrite struct {
	Ep   Endpoint
	Data []byte
}

// LoopbackHandle is the session side of the loopback transport.
type LoopbackHandle struct {
	// WriteErr fails subsequent writes when set.
	WriteErr error

	mu     sync.Mutex
	subs   map[Endpoint]chan []byte
	writes []LoopbackWrite
	closed bool
}

func (h *LoopbackHandle) Write(ep Endpoint, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.WriteErr != nil {
		return h.WriteErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	h.writes = append(h.writes, LoopbackWrite{Ep: ep, Data: buf})
	return nil
}

func (h *LoopbackHandle) Notifications(ep Endpoint) (<-chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	ch, ok := h.subs[ep]
	if !ok {
		ch = make(chan []byte, 1)
		h.subs[ep] = ch
	}
	return ch, nil
}

func (h *LoopbackHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ep, ch := range h.subs {
		close(ch)
		delete(h.subs, ep)
	}
	return nil
}

// Notify injects a notification frame for an endpoint, replacing any
// undelivered frame the same way the real transports do.
func (h *LoopbackHandle) Notify(ep Endpoint, data []byte) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	ch, ok := h.subs[ep]
	if !ok {
		ch = make(chan []byte, 1)
		h.subs[ep] = ch
	}
	h.mu.Unlock()
	notify(ch, data)
}

// DropLink simulates wireless link loss: subscribers see their streams
// end and subsequent writes fail.
func (h *LoopbackHandle) DropLink() {
	h.Close()
}

// Writes returns all recorded writes in order.
func (h *LoopbackHandle) Writes() []LoopbackWrite {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LoopbackWrite, len(h.writes))
	copy(out, h.writes)
	return out
}

// Closed reports whether the session has been released.
func (h *LoopbackHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

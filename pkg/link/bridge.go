// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package link

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	bridgeHandshakeTimeout = 10 * time.Second
	bridgeDialTimeout      = 15 * time.Second
)

// BridgeTransport reaches equipment through a LAN GATT bridge speaking
// the CBOR envelope protocol over WebSocket. When URL is set, discovery
// is skipped and the bridge is dialed directly; otherwise bridges are
// located via mDNS.
type BridgeTransport struct {
	URL           string
	Username      string
	Password      string
	SkipSSLVerify bool
}

// Discover locates a bridge. With an explicit URL configured the
// identity is ignored and the URL is returned as the candidate.
func (t *BridgeTransport) Discover(ctx context.Context, id Identity) (Candidate, error) {
	if t.URL != "" {
		return Candidate{Name: "configured bridge", Addr: t.URL}, nil
	}
	return discoverBridge(ctx, id)
}

// Open dials the bridge and starts the notification demultiplexer.
func (t *BridgeTransport) Open(ctx context.Context, c Candidate) (Handle, error) {
	u, err := url.Parse(c.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: bridgeHandshakeTimeout,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: t.SkipSSLVerify,
		}
	}

	headers := http.Header{}
	if t.Username != "" && t.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(t.Username + ":" + t.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	dialCtx, cancel := context.WithTimeout(ctx, bridgeDialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, c.Addr, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("bridge connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("bridge connection failed: %w", err)
	}

	h := &bridgeHandle{
		conn: conn,
		subs: make(map[Endpoint]chan []byte),
	}
	go h.readPump()
	return h, nil
}

// bridgeHandle is one live bridge session. The read pump owns the
// WebSocket read side; writes are serialized by writeMu.
type bridgeHandle struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[Endpoint]chan []byte
	closed bool
}

func (h *bridgeHandle) Write(ep Endpoint, data []byte) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return ErrClosed
	}

	msg, err := encodeEnvelope(opWrite, ep, data)
	if err != nil {
		return err
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := h.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil
}

func (h *bridgeHandle) Notifications(ep Endpoint) (<-chan []byte, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	ch, ok := h.subs[ep]
	if !ok {
		ch = make(chan []byte, 1)
		h.subs[ep] = ch
	}
	h.mu.Unlock()
	if ok {
		return ch, nil
	}

	msg, err := encodeEnvelope(opSubscribe, ep, nil)
	if err != nil {
		return nil, err
	}
	h.writeMu.Lock()
	err = h.conn.WriteMessage(websocket.BinaryMessage, msg)
	h.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return ch, nil
}

func (h *bridgeHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()
	return h.conn.Close()
}

// readPump demultiplexes bridge messages into per-endpoint channels.
// Any read error or an opGone envelope tears the session down, which
// readers observe as closed channels.
func (h *bridgeHandle) readPump() {
	defer h.teardown()

	for {
		messageType, data, err := h.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		env, err := decodeEnvelope(data)
		if err != nil {
			// Corrupt envelope from the bridge; skip it, keep the session.
			continue
		}

		switch env.op {
		case opNotify:
			h.mu.Lock()
			ch, ok := h.subs[env.ep]
			h.mu.Unlock()
			if ok {
				notify(ch, env.data)
			}
		case opGone:
			return
		case opError:
			// Request-level bridge errors are advisory; the write that
			// triggered them has already returned.
			continue
		}
	}
}

func (h *bridgeHandle) teardown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		h.conn.Close()
	}
	for ep, ch := range h.subs {
		close(ch)
		delete(h.subs, ep)
	}
}

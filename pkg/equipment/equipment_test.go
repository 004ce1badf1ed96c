// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package equipment

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veloforge/rouleur/pkg/link"
)

// connectedIconsole resolves and connects an iConsole instance over a
// fresh loopback transport.
func connectedIconsole(t *testing.T) (Equipment, *link.Loopback) {
	t.Helper()
	lb := link.NewLoopback()
	eq, err := Resolve(context.Background(), "28", Options{Transport: lb})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ok, err := eq.Connect(context.Background())
	if err != nil || !ok {
		t.Fatalf("Connect: ok=%v err=%v", ok, err)
	}
	return eq, lb
}

// --- Lifecycle ---

func TestLifecycleStates(t *testing.T) {
	eq, _ := connectedIconsole(t)

	if got := eq.State(); got != StateConnected {
		t.Fatalf("state after connect: %v", got)
	}

	// Connecting twice is a contract violation, not a reconnect.
	if _, err := eq.Connect(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double connect: got %v, want ErrInvalidState", err)
	}
	if got := eq.State(); got != StateConnected {
		t.Fatalf("state after rejected connect: %v", got)
	}

	if err := eq.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if got := eq.State(); got != StateDisconnected {
		t.Fatalf("state after disconnect: %v", got)
	}

	// Disconnect is idempotent from any state.
	if err := eq.Disconnect(); err != nil {
		t.Fatalf("second Disconnect: %v", err)
	}
}

func TestOperationsWhileDisconnected(t *testing.T) {
	lb := link.NewLoopback()
	eq, err := Resolve(context.Background(), "28", Options{Transport: lb})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if _, err := eq.Read(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Read while disconnected: got %v, want ErrInvalidState", err)
	}
	if err := eq.SetLevel(5); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("SetLevel while disconnected: got %v, want ErrInvalidState", err)
	}
}

func TestConnectDeclined(t *testing.T) {
	lb := link.NewLoopback()
	lb.Declined = true
	eq, err := Resolve(context.Background(), "28", Options{Transport: lb})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	ok, err := eq.Connect(context.Background())
	if err != nil {
		t.Fatalf("declined connect returned error: %v", err)
	}
	if ok {
		t.Fatal("declined connect reported success")
	}
	if got := eq.State(); got != StateDisconnected {
		t.Fatalf("state after declined connect: %v", got)
	}
}

// --- Read ---

func TestReadNothingPending(t *testing.T) {
	eq, _ := connectedIconsole(t)
	defer eq.Disconnect()

	sample, err := eq.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sample != nil {
		t.Fatalf("expected no sample, got %+v", sample)
	}
}

func TestReadDecodesTelemetry(t *testing.T) {
	eq, lb := connectedIconsole(t)
	defer eq.Disconnect()

	lb.Handle().Notify(iconsoleTelemetryEP, []byte{0x01, 0x00, 0x5A, 0x00, 0xC8, 0x00, 0x64})

	sample, err := eq.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sample == nil {
		t.Fatal("expected a sample")
	}
	if sample.Cadence != 90 || sample.Power != 200 || sample.Speed != 1.00 {
		t.Fatalf("decoded %+v", sample)
	}
}

func TestReadDropsMalformedFrame(t *testing.T) {
	eq, lb := connectedIconsole(t)
	defer eq.Disconnect()

	lb.Handle().Notify(iconsoleTelemetryEP, []byte{0xFF, 0x01, 0x02})

	sample, err := eq.Read(context.Background())
	if err != nil {
		t.Fatalf("Read after corrupt frame: %v", err)
	}
	if sample != nil {
		t.Fatalf("corrupt frame produced a sample: %+v", sample)
	}
	// The session survives and a good frame still comes through.
	if got := eq.State(); got != StateConnected {
		t.Fatalf("state after corrupt frame: %v", got)
	}
	lb.Handle().Notify(iconsoleTelemetryEP, []byte{0x01, 0x00, 0x5A, 0x00, 0xC8, 0x00, 0x64})
	sample, err = eq.Read(context.Background())
	if err != nil || sample == nil {
		t.Fatalf("recovery read: sample=%v err=%v", sample, err)
	}
}

func TestReadCancelled(t *testing.T) {
	eq, _ := connectedIconsole(t)
	defer eq.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eq.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled Read: got %v", err)
	}
	// Cancellation does not tear the session down.
	if got := eq.State(); got != StateConnected {
		t.Fatalf("state after cancelled read: %v", got)
	}
}

// --- SetLevel ---

func TestSetLevelWritesCommand(t *testing.T) {
	eq, lb := connectedIconsole(t)
	defer eq.Disconnect()

	if err := eq.SetLevel(32); err != nil {
		t.Fatalf("SetLevel(32): %v", err)
	}

	writes := lb.Handle().Writes()
	if len(writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(writes))
	}
	if writes[0].Ep != iconsoleCommandEP {
		t.Fatalf("wrote to %v", writes[0].Ep)
	}
	if !bytes.Equal(writes[0].Data, []byte{0x02, 0x20}) {
		t.Fatalf("command bytes % X", writes[0].Data)
	}
}

func TestSetLevelOutOfRange(t *testing.T) {
	eq, lb := connectedIconsole(t)
	defer eq.Disconnect()

	for _, level := range []int{-1, 33, 100} {
		if err := eq.SetLevel(level); !errors.Is(err, ErrInvalidSetpoint) {
			t.Errorf("SetLevel(%d): got %v, want ErrInvalidSetpoint", level, err)
		}
	}
	// Rejection happens before any bytes move.
	if n := len(lb.Handle().Writes()); n != 0 {
		t.Fatalf("out-of-range setpoints produced %d writes", n)
	}
	if got := eq.State(); got != StateConnected {
		t.Fatalf("state after rejected setpoints: %v", got)
	}
}

func TestSetLevelCustomCap(t *testing.T) {
	lb := link.NewLoopback()
	eq, err := Resolve(context.Background(), "28", Options{Transport: lb, MaxLevel: 16})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok, err := eq.Connect(context.Background()); err != nil || !ok {
		t.Fatalf("Connect: ok=%v err=%v", ok, err)
	}
	defer eq.Disconnect()

	if err := eq.SetLevel(16); err != nil {
		t.Fatalf("SetLevel(16): %v", err)
	}
	if err := eq.SetLevel(17); !errors.Is(err, ErrInvalidSetpoint) {
		t.Fatalf("SetLevel(17): got %v, want ErrInvalidSetpoint", err)
	}
}

// --- Link loss ---

func TestLinkLossOnRead(t *testing.T) {
	eq, lb := connectedIconsole(t)

	lb.Handle().DropLink()

	if _, err := eq.Read(context.Background()); !errors.Is(err, ErrLinkLost) {
		t.Fatalf("Read after link loss: got %v, want ErrLinkLost", err)
	}
	if got := eq.State(); got != StateDisconnected {
		t.Fatalf("state after link loss: %v", got)
	}

	// The instance is reusable: a fresh connect works.
	ok, err := eq.Connect(context.Background())
	if err != nil || !ok {
		t.Fatalf("reconnect: ok=%v err=%v", ok, err)
	}
	eq.Disconnect()
}

func TestLinkLossOnWrite(t *testing.T) {
	eq, lb := connectedIconsole(t)

	lb.Handle().WriteErr = errors.New("radio gone")

	if err := eq.SetLevel(10); !errors.Is(err, ErrLinkLost) {
		t.Fatalf("SetLevel after link loss: got %v, want ErrLinkLost", err)
	}
	if got := eq.State(); got != StateDisconnected {
		t.Fatalf("state after write failure: %v", got)
	}
}

// --- Factory ---

func TestResolveUnknownTag(t *testing.T) {
	lb := link.NewLoopback()
	// A failing transport proves no discovery is attempted.
	lb.DiscoverErr = errors.New("must not be called")

	_, err := Resolve(context.Background(), "99", Options{Transport: lb})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("unknown tag: got %v, want ErrUnsupportedType", err)
	}
}

func TestResolveDiscoveryFailure(t *testing.T) {
	lb := link.NewLoopback()
	lb.DiscoverErr = errors.New("scan exhausted")

	_, err := Resolve(context.Background(), "28", Options{Transport: lb})
	if !errors.Is(err, ErrDiscoveryFailed) {
		t.Fatalf("failed discovery: got %v, want ErrDiscoveryFailed", err)
	}
}

func TestResolveCancelled(t *testing.T) {
	lb := link.NewLoopback()
	lb.DiscoverDelay = 5 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Resolve(ctx, "28", Options{Transport: lb})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("cancelled resolve: got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("cancellation did not interrupt discovery")
	}
	if lb.Handle() != nil {
		t.Fatal("cancelled resolve left a session open")
	}
}

func TestResolveNoTransport(t *testing.T) {
	_, err := Resolve(context.Background(), "28", Options{})
	if !errors.Is(err, ErrDiscoveryFailed) {
		t.Fatalf("missing transport: got %v, want ErrDiscoveryFailed", err)
	}
}

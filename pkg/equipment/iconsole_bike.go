// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package equipment

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/veloforge/rouleur/pkg/iconsole"
	"github.com/veloforge/rouleur/pkg/link"
)

// GATT endpoints exposed by iConsole-class consoles.
var (
	iconsoleService = uuid.MustParse("0000fff0-0000-1000-8000-00805f9b34fb")

	iconsoleTelemetryEP = link.Endpoint{
		Service:        iconsoleService,
		Characteristic: uuid.MustParse("0000fff1-0000-1000-8000-00805f9b34fb"),
	}
	iconsoleCommandEP = link.Endpoint{
		Service:        iconsoleService,
		Characteristic: uuid.MustParse("0000fff2-0000-1000-8000-00805f9b34fb"),
	}
)

// Iconsole0028Bike drives stationary bikes with the iConsole 0028
// console firmware. The console couples target cadence and target
// power into a single resistance level command; that is a protocol
// limitation of this machine class, not of the contract.
type Iconsole0028Bike struct {
	transport link.Transport
	candidate link.Candidate
	maxLevel  int
	logger    *log.Logger

	state  State
	handle link.Handle
	stream <-chan []byte
}

var _ Equipment = (*Iconsole0028Bike)(nil)

// newIconsole0028Bike discovers a matching console and binds an
// instance to it, not yet connected.
func newIconsole0028Bike(ctx context.Context, opts Options) (Equipment, error) {
	candidate, err := discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	maxLevel := opts.MaxLevel
	if maxLevel <= 0 || maxLevel > iconsole.MaxLevel {
		maxLevel = iconsole.MaxLevel
	}

	return &Iconsole0028Bike{
		transport: opts.Transport,
		candidate: candidate,
		maxLevel:  maxLevel,
		logger:    opts.logger(),
	}, nil
}

func (b *Iconsole0028Bike) Name() string {
	return fmt.Sprintf("iConsole 0028 (%s)", b.candidate.Name)
}

func (b *Iconsole0028Bike) State() State {
	return b.state
}

// Connect opens the session and subscribes to the telemetry stream.
// A declined or unreachable console reports false with a nil error.
func (b *Iconsole0028Bike) Connect(ctx context.Context) (bool, error) {
	if b.state != StateDisconnected {
		return false, fmt.Errorf("%w: connect while %s", ErrInvalidState, b.state)
	}
	b.state = StateConnecting

	handle, err := b.transport.Open(ctx, b.candidate)
	if err != nil {
		b.state = StateDisconnected
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		b.logger.Printf("iconsole: connect to %s declined: %v", b.candidate.Name, err)
		return false, nil
	}

	stream, err := handle.Notifications(iconsoleTelemetryEP)
	if err != nil {
		handle.Close()
		b.state = StateDisconnected
		b.logger.Printf("iconsole: telemetry subscription failed: %v", err)
		return false, nil
	}

	b.handle = handle
	b.stream = stream
	b.state = StateConnected
	b.logger.Printf("iconsole: connected to %s", b.candidate.Name)
	return true, nil
}

// Read polls the telemetry stream. No pending notification is a normal
// outcome and returns (nil, nil); malformed frames are dropped without
// tearing the connection down.
func (b *Iconsole0028Bike) Read(ctx context.Context) (*Telemetry, error) {
	if b.state != StateConnected {
		return nil, fmt.Errorf("%w: read while %s", ErrInvalidState, b.state)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case data, ok := <-b.stream:
		if !ok {
			b.teardown()
			return nil, fmt.Errorf("%w: telemetry stream ended", ErrLinkLost)
		}
		sample, err := iconsole.DecodeTelemetry(data)
		if err != nil {
			b.logger.Printf("iconsole: dropping frame: %v", err)
			return nil, nil
		}
		return &Telemetry{
			Cadence: sample.Cadence,
			Power:   sample.Power,
			Speed:   sample.Speed,
		}, nil
	default:
		return nil, nil
	}
}

// SetLevel commands the target resistance level.
func (b *Iconsole0028Bike) SetLevel(level int) error {
	if b.state != StateConnected {
		return fmt.Errorf("%w: set level while %s", ErrInvalidState, b.state)
	}
	if level < iconsole.MinLevel || level > b.maxLevel {
		return fmt.Errorf("%w: level %d (accepted %d-%d)", ErrInvalidSetpoint, level, iconsole.MinLevel, b.maxLevel)
	}

	frame, err := iconsole.EncodeSetLevel(level)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSetpoint, err)
	}

	if err := b.handle.Write(iconsoleCommandEP, frame); err != nil {
		b.teardown()
		return fmt.Errorf("%w: %v", ErrLinkLost, err)
	}
	b.logger.Printf("iconsole: level set to %d", level)
	return nil
}

// Disconnect releases the session. Valid from any state; disconnecting
// an already-disconnected instance is a no-op.
func (b *Iconsole0028Bike) Disconnect() error {
	if b.state == StateDisconnected {
		return nil
	}
	b.teardown()
	b.logger.Printf("iconsole: disconnected from %s", b.candidate.Name)
	return nil
}

func (b *Iconsole0028Bike) teardown() {
	if b.handle != nil {
		b.handle.Close()
		b.handle = nil
	}
	b.stream = nil
	b.state = StateDisconnected
}

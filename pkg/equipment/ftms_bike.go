// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package equipment

import (
	"context"
	"fmt"
	"log"

	"github.com/veloforge/rouleur/pkg/ftms"
	"github.com/veloforge/rouleur/pkg/link"
)

var (
	ftmsBikeDataEP = link.Endpoint{
		Service:        ftms.ServiceUUID,
		Characteristic: ftms.IndoorBikeDataUUID,
	}
	ftmsControlEP = link.Endpoint{
		Service:        ftms.ServiceUUID,
		Characteristic: ftms.ControlPointUUID,
	}
)

// SetLevel maps to Set Target Resistance, which carries 0.1 units.
const ftmsResistancePerLevel = 10

// ftmsDefaultMaxLevel bounds SetLevel when the caller does not cap it.
const ftmsDefaultMaxLevel = 32

// FTMSBike drives any trainer implementing the standard Fitness
// Machine Service. SetLevel maps to the FTMS Set Target Resistance
// command; richer targets (power, cadence) are available to callers
// that speak ftms directly.
type FTMSBike struct {
	transport link.Transport
	candidate link.Candidate
	maxLevel  int
	logger    *log.Logger

	state  State
	handle link.Handle
	stream <-chan []byte
}

var _ Equipment = (*FTMSBike)(nil)

func newFTMSBike(ctx context.Context, opts Options) (Equipment, error) {
	candidate, err := discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	maxLevel := opts.MaxLevel
	if maxLevel <= 0 {
		maxLevel = ftmsDefaultMaxLevel
	}

	return &FTMSBike{
		transport: opts.Transport,
		candidate: candidate,
		maxLevel:  maxLevel,
		logger:    opts.logger(),
	}, nil
}

func (b *FTMSBike) Name() string {
	return fmt.Sprintf("FTMS trainer (%s)", b.candidate.Name)
}

func (b *FTMSBike) State() State {
	return b.state
}

// Connect opens the session, subscribes to Indoor Bike Data, and runs
// the Request Control / Start handshake the machine expects before it
// honors target commands.
func (b *FTMSBike) Connect(ctx context.Context) (bool, error) {
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
		b.logger.Printf("ftms: connect to %s declined: %v", b.candidate.Name, err)
		return false, nil
	}

	stream, err := handle.Notifications(ftmsBikeDataEP)
	if err != nil {
		handle.Close()
		b.state = StateDisconnected
		b.logger.Printf("ftms: bike data subscription failed: %v", err)
		return false, nil
	}

	if err := handle.Write(ftmsControlEP, ftms.RequestControl()); err != nil {
		handle.Close()
		b.state = StateDisconnected
		b.logger.Printf("ftms: request control failed: %v", err)
		return false, nil
	}
	// Some trainers need Start before accepting targets; others reject
	// it harmlessly.
	if err := handle.Write(ftmsControlEP, ftms.StartOrResume()); err != nil {
		handle.Close()
		b.state = StateDisconnected
		b.logger.Printf("ftms: start command failed: %v", err)
		return false, nil
	}

	b.handle = handle
	b.stream = stream
	b.state = StateConnected
	b.logger.Printf("ftms: connected to %s, control acquired", b.candidate.Name)
	return true, nil
}

// Read polls the Indoor Bike Data stream.
func (b *FTMSBike) Read(ctx context.Context) (*Telemetry, error) {
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
			return nil, fmt.Errorf("%w: bike data stream ended", ErrLinkLost)
		}
		d, err := ftms.DecodeIndoorBikeData(data)
		if err != nil {
			b.logger.Printf("ftms: dropping frame: %v", err)
			return nil, nil
		}
		return bikeDataToTelemetry(d), nil
	default:
		return nil, nil
	}
}

// bikeDataToTelemetry projects an FTMS sample onto the core telemetry
// shape. Absent fields stay zero; negative braking power is clamped.
func bikeDataToTelemetry(d *ftms.IndoorBikeData) *Telemetry {
	t := &Telemetry{
		Cadence:    uint16(d.CadenceRpm + 0.5),
		Speed:      d.SpeedKmh,
		Distance:   d.Distance,
		Resistance: d.Resistance,
		Calories:   d.TotalEnergy,
		HeartRate:  d.HeartRate,
		Elapsed:    d.Elapsed,
	}
	if d.PowerWatts > 0 {
		t.Power = uint16(d.PowerWatts)
	}
	return t
}

// SetLevel commands the target resistance level.
func (b *FTMSBike) SetLevel(level int) error {
	if b.state != StateConnected {
		return fmt.Errorf("%w: set level while %s", ErrInvalidState, b.state)
	}
	if level < 0 || level > b.maxLevel {
		return fmt.Errorf("%w: level %d (accepted 0-%d)", ErrInvalidSetpoint, level, b.maxLevel)
	}

	frame := ftms.SetTargetResistance(int16(level * ftmsResistancePerLevel))
	if err := b.handle.Write(ftmsControlEP, frame); err != nil {
		b.teardown()
		return fmt.Errorf("%w: %v", ErrLinkLost, err)
	}
	b.logger.Printf("ftms: target resistance set to %d", level)
	return nil
}

// Disconnect sends Stop on a live session, then releases it. Valid
// from any state and idempotent.
func (b *FTMSBike) Disconnect() error {
	if b.state == StateDisconnected {
		return nil
	}
	if b.state == StateConnected && b.handle != nil {
		// Best effort; the link may already be gone.
		if err := b.handle.Write(ftmsControlEP, ftms.Stop()); err != nil {
			b.logger.Printf("ftms: stop on disconnect failed: %v", err)
		}
	}
	b.teardown()
	b.logger.Printf("ftms: disconnected from %s", b.candidate.Name)
	return nil
}

func (b *FTMSBike) teardown() {
	if b.handle != nil {
		b.handle.Close()
		b.handle = nil
	}
	b.stream = nil
	b.state = StateDisconnected
}

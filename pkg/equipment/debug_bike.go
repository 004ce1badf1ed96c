// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package equipment

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

const debugDefaultMaxLevel = 32

// DebugBike is a transportless stand-in that fabricates telemetry. It
// follows the same lifecycle rules as the real variants so callers can
// be exercised without hardware.
type DebugBike struct {
	maxLevel int
	logger   *log.Logger

	state   State
	level   int
	started time.Time
}

var _ Equipment = (*DebugBike)(nil)

func newDebugBike(_ context.Context, opts Options) (Equipment, error) {
	maxLevel := opts.MaxLevel
	if maxLevel <= 0 {
		maxLevel = debugDefaultMaxLevel
	}
	return &DebugBike{
		maxLevel: maxLevel,
		logger:   opts.logger(),
	}, nil
}

func (b *DebugBike) Name() string {
	return "debug bike"
}

func (b *DebugBike) State() State {
	return b.state
}

func (b *DebugBike) Connect(ctx context.Context) (bool, error) {
	if b.state != StateDisconnected {
		return false, fmt.Errorf("%w: connect while %s", ErrInvalidState, b.state)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.started = time.Now()
	b.state = StateConnected
	b.logger.Printf("debug: connected")
	return true, nil
}

// Read always has a sample ready. The values wander with elapsed time
// and lean on the commanded level so rides look plausible in logs.
func (b *DebugBike) Read(ctx context.Context) (*Telemetry, error) {
	if b.state != StateConnected {
		return nil, fmt.Errorf("%w: read while %s", ErrInvalidState, b.state)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elapsed := time.Since(b.started).Seconds()
	wobble := math.Sin(elapsed / 7)

	cadence := 85 + 5*wobble
	power := float64(60+8*b.level) + 15*wobble
	speed := 25 + 3*wobble

	return &Telemetry{
		Cadence:    uint16(cadence),
		Power:      uint16(power),
		Speed:      speed,
		Distance:   uint32(elapsed * speed / 3.6),
		Resistance: int16(b.level),
		Calories:   uint16(elapsed * power / 1000),
		HeartRate:  uint8(120 + 10*wobble),
		Elapsed:    uint16(elapsed),
	}, nil
}

func (b *DebugBike) SetLevel(level int) error {
	if b.state != StateConnected {
		return fmt.Errorf("%w: set level while %s", ErrInvalidState, b.state)
	}
	if level < 0 || level > b.maxLevel {
		return fmt.Errorf("%w: level %d (accepted 0-%d)", ErrInvalidSetpoint, level, b.maxLevel)
	}
	b.level = level
	b.logger.Printf("debug: level set to %d", level)
	return nil
}

func (b *DebugBike) Disconnect() error {
	if b.state == StateDisconnected {
		return nil
	}
	b.state = StateDisconnected
	b.logger.Printf("debug: disconnected")
	return nil
}

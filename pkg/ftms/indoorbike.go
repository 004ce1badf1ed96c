// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package ftms

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a notification does not match the
// Indoor Bike Data layout its flags word declares.
var ErrMalformedFrame = errors.New("malformed frame")

// IndoorBikeData is one decoded Indoor Bike Data notification. Presence
// flags mirror the characteristic's flags word; absent fields are zero.
type IndoorBikeData struct {
	HasSpeed      bool
	HasCadence    bool
	HasDistance   bool
	HasResistance bool
	HasPower      bool
	HasEnergy     bool
	HasHeartRate  bool
	HasElapsed    bool

	SpeedKmh    float64 // km/h, 0.01 resolution
	CadenceRpm  float64 // rpm, 0.5 resolution
	Distance    uint32  // meters
	Resistance  int16   // unitless level
	PowerWatts  int16   // watts
	TotalEnergy uint16  // kJ
	HeartRate   uint8   // bpm
	Elapsed     uint16  // seconds
}

// DecodeIndoorBikeData parses an Indoor Bike Data notification.
// Fields appear in flag order; every declared field must be fully
// present or the whole frame is rejected.
func DecodeIndoorBikeData(data []byte) (*IndoorBikeData, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d bytes (flags word missing)", ErrMalformedFrame, len(data))
	}

	flags := binary.LittleEndian.Uint16(data[0:2])
	offset := 2

	d := &IndoorBikeData{
		HasSpeed:      flags&flagMoreData == 0,
		HasCadence:    flags&flagInstantaneousCadence != 0,
		HasDistance:   flags&flagTotalDistance != 0,
		HasResistance: flags&flagResistanceLevel != 0,
		HasPower:      flags&flagInstantaneousPower != 0,
		HasEnergy:     flags&flagExpendedEnergy != 0,
		HasHeartRate:  flags&flagHeartRate != 0,
		HasElapsed:    flags&flagElapsedTime != 0,
	}

	take := func(n int, field string) ([]byte, error) {
		if offset+n > len(data) {
			return nil, fmt.Errorf("%w: truncated at %s (offset %d)", ErrMalformedFrame, field, offset)
		}
		b := data[offset : offset+n]
		offset += n
		return b, nil
	}

	if d.HasSpeed {
		b, err := take(2, "speed")
		if err != nil {
			return nil, err
		}
		d.SpeedKmh = float64(binary.LittleEndian.Uint16(b)) * 0.01
	}
	if flags&flagAverageSpeed != 0 {
		if _, err := take(2, "average speed"); err != nil {
			return nil, err
		}
	}
	if d.HasCadence {
		b, err := take(2, "cadence")
		if err != nil {
			return nil, err
		}
		d.CadenceRpm = float64(binary.LittleEndian.Uint16(b)) * 0.5
	}
	if flags&flagAverageCadence != 0 {
		if _, err := take(2, "average cadence"); err != nil {
			return nil, err
		}
	}
	if d.HasDistance {
		b, err := take(3, "distance")
		if err != nil {
			return nil, err
		}
		d.Distance = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	}
	if d.HasResistance {
		b, err := take(2, "resistance")
		if err != nil {
			return nil, err
		}
		d.Resistance = int16(binary.LittleEndian.Uint16(b))
	}
	if d.HasPower {
		b, err := take(2, "power")
		if err != nil {
			return nil, err
		}
		d.PowerWatts = int16(binary.LittleEndian.Uint16(b))
	}
	if flags&flagAveragePower != 0 {
		if _, err := take(2, "average power"); err != nil {
			return nil, err
		}
	}
	if d.HasEnergy {
		// total kJ + per hour + per minute
		b, err := take(5, "expended energy")
		if err != nil {
			return nil, err
		}
		d.TotalEnergy = binary.LittleEndian.Uint16(b[0:2])
	}
	if d.HasHeartRate {
		b, err := take(1, "heart rate")
		if err != nil {
			return nil, err
		}
		d.HeartRate = b[0]
	}
	if flags&flagMetabolicEquivalent != 0 {
		if _, err := take(1, "metabolic equivalent"); err != nil {
			return nil, err
		}
	}
	if d.HasElapsed {
		b, err := take(2, "elapsed time")
		if err != nil {
			return nil, err
		}
		d.Elapsed = binary.LittleEndian.Uint16(b)
	}

	return d, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package ftms

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// ============================================================
// Indoor Bike Data Tests
// ============================================================

func TestDecodeIndoorBikeData_SpeedOnly(t *testing.T) {
	// flags 0x0000: bit 0 clear means instantaneous speed present
	frame := []byte{0x00, 0x00, 0x28, 0x0A} // speed raw 2600 -> 26.00 km/h

	d, err := DecodeIndoorBikeData(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !d.HasSpeed {
		t.Error("expected speed present")
	}
	if math.Abs(d.SpeedKmh-26.00) > 0.0001 {
		t.Errorf("expected 26.00 km/h, got %.4f", d.SpeedKmh)
	}
	if d.HasCadence || d.HasPower || d.HasHeartRate {
		t.Error("unexpected presence flags set")
	}
}

func TestDecodeIndoorBikeData_SpeedCadencePower(t *testing.T) {
	// flags: speed (bit0 clear) + cadence (bit2) + power (bit6) = 0x0044
	frame := []byte{
		0x44, 0x00,
		0x28, 0x0A, // speed 26.00 km/h
		0xB4, 0x00, // cadence raw 180 -> 90.0 rpm
		0xC8, 0x00, // power 200 W
	}

	d, err := DecodeIndoorBikeData(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if math.Abs(d.CadenceRpm-90.0) > 0.0001 {
		t.Errorf("expected 90.0 rpm, got %.4f", d.CadenceRpm)
	}
	if d.PowerWatts != 200 {
		t.Errorf("expected 200 W, got %d", d.PowerWatts)
	}
}

func TestDecodeIndoorBikeData_FullRide(t *testing.T) {
	// speed + cadence + distance + resistance + power + energy + HR + elapsed
	// flags = 0x0374 | ... : bits 2,4,5,6,8,9,11 set, bit 0 clear
	flags := uint16(flagInstantaneousCadence | flagTotalDistance | flagResistanceLevel |
		flagInstantaneousPower | flagExpendedEnergy | flagHeartRate | flagElapsedTime)
	frame := []byte{
		byte(flags), byte(flags >> 8),
		0x10, 0x0E, // speed raw 3600 -> 36.00 km/h
		0xAA, 0x00, // cadence raw 170 -> 85.0 rpm
		0x10, 0x27, 0x00, // distance 10000 m
		0x08, 0x00, // resistance 8
		0xFA, 0x00, // power 250 W
		0x2C, 0x01, 0x3C, 0x00, 0x05, // energy: 300 kJ total, 60/h, 5/min
		0x98,       // heart rate 152
		0x84, 0x03, // elapsed 900 s
	}

	d, err := DecodeIndoorBikeData(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if math.Abs(d.SpeedKmh-36.00) > 0.0001 {
		t.Errorf("speed: expected 36.00, got %.4f", d.SpeedKmh)
	}
	if math.Abs(d.CadenceRpm-85.0) > 0.0001 {
		t.Errorf("cadence: expected 85.0, got %.4f", d.CadenceRpm)
	}
	if d.Distance != 10000 {
		t.Errorf("distance: expected 10000, got %d", d.Distance)
	}
	if d.Resistance != 8 {
		t.Errorf("resistance: expected 8, got %d", d.Resistance)
	}
	if d.PowerWatts != 250 {
		t.Errorf("power: expected 250, got %d", d.PowerWatts)
	}
	if d.TotalEnergy != 300 {
		t.Errorf("energy: expected 300, got %d", d.TotalEnergy)
	}
	if d.HeartRate != 152 {
		t.Errorf("heart rate: expected 152, got %d", d.HeartRate)
	}
	if d.Elapsed != 900 {
		t.Errorf("elapsed: expected 900, got %d", d.Elapsed)
	}
}

func TestDecodeIndoorBikeData_NegativePower(t *testing.T) {
	flags := uint16(flagMoreData | flagInstantaneousPower) // no speed, power only
	frame := []byte{byte(flags), byte(flags >> 8), 0xFE, 0xFF}

	d, err := DecodeIndoorBikeData(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if d.HasSpeed {
		t.Error("speed should be absent when More Data bit is set")
	}
	if d.PowerWatts != -2 {
		t.Errorf("expected -2 W, got %d", d.PowerWatts)
	}
}

func TestDecodeIndoorBikeData_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "empty", frame: []byte{}},
		{name: "flags only, speed declared", frame: []byte{0x00, 0x00}},
		{name: "truncated speed", frame: []byte{0x00, 0x00, 0x28}},
		{name: "truncated cadence", frame: []byte{0x44, 0x00, 0x28, 0x0A, 0xB4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecodeIndoorBikeData(tt.frame)
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("expected ErrMalformedFrame, got %v", err)
			}
			if d != nil {
				t.Errorf("expected no sample, got %+v", d)
			}
		})
	}
}

// ============================================================
// Control Point Tests
// ============================================================

func TestControlPointCommands(t *testing.T) {
	tests := []struct {
		name     string
		frame    []byte
		expected []byte
	}{
		{name: "request control", frame: RequestControl(), expected: []byte{0x00}},
		{name: "start or resume", frame: StartOrResume(), expected: []byte{0x07}},
		{name: "stop", frame: Stop(), expected: []byte{0x08, 0x01}},
		{name: "target resistance 4.0", frame: SetTargetResistance(40), expected: []byte{0x04, 0x28, 0x00}},
		{name: "target power 250W", frame: SetTargetPower(250), expected: []byte{0x05, 0xFA, 0x00}},
		{name: "target power negative", frame: SetTargetPower(-2), expected: []byte{0x05, 0xFE, 0xFF}},
		{name: "target cadence 90rpm", frame: SetTargetCadence(180), expected: []byte{0x14, 0xB4, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.frame, tt.expected) {
				t.Errorf("frame mismatch: expected % X, got % X", tt.expected, tt.frame)
			}
		})
	}
}

func TestParseControlResponse(t *testing.T) {
	resp, err := ParseControlResponse([]byte{0x80, OpRequestControl, ResultSuccess})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if resp.RequestOpCode != OpRequestControl || !resp.Ok() {
		t.Errorf("unexpected response: %+v", resp)
	}

	resp, err = ParseControlResponse([]byte{0x80, OpSetTargetPower, ResultControlNotPermitted})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if resp.Ok() {
		t.Error("expected rejected response")
	}

	if _, err := ParseControlResponse([]byte{0x80, 0x00}); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for short indication, got %v", err)
	}
	if _, err := ParseControlResponse([]byte{0x55, 0x00, 0x01}); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for wrong opcode, got %v", err)
	}
}

func FuzzDecodeIndoorBikeData(f *testing.F) {
	f.Add([]byte{0x44, 0x00, 0x28, 0x0A, 0xB4, 0x00, 0xC8, 0x00})
	f.Add([]byte{0x00, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		d, err := DecodeIndoorBikeData(data)
		if err != nil && !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("unexpected error class: %v", err)
		}
		if (d == nil) == (err == nil) {
			t.Errorf("exactly one of sample/error expected: %v %v", d, err)
		}
	})
}

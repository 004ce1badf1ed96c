// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

// Package ftms implements the frame layer of the Bluetooth Fitness
// Machine Service (FTMS 1.0) as used by smart trainers: Indoor Bike
// Data telemetry decoding and Control Point command encoding.
//
// Like the vendor codecs, this package is pure encode/decode with no
// transport involvement.
package ftms

import "github.com/google/uuid"

// GATT identifiers for the Fitness Machine Service.
var (
	ServiceUUID              = uuid.MustParse("00001826-0000-1000-8000-00805f9b34fb")
	IndoorBikeDataUUID       = uuid.MustParse("00002ad2-0000-1000-8000-00805f9b34fb")
	ControlPointUUID         = uuid.MustParse("00002ad9-0000-1000-8000-00805f9b34fb")
	FitnessMachineStatusUUID = uuid.MustParse("00002ada-0000-1000-8000-00805f9b34fb")
)

// Control Point op codes
const (
	OpRequestControl      = 0x00
	OpReset               = 0x01
	OpSetTargetResistance = 0x04
	OpSetTargetPower      = 0x05
	OpStartOrResume       = 0x07
	OpStop                = 0x08
	OpSetTargetCadence    = 0x14
	OpResponseCode        = 0x80
)

// Control Point result codes
const (
	ResultSuccess             = 0x01
	ResultOpCodeNotSupported  = 0x02
	ResultInvalidParameter    = 0x03
	ResultOperationFailed     = 0x04
	ResultControlNotPermitted = 0x05
)

// Stop command parameter values
const (
	StopParamStop  = 0x01
	StopParamPause = 0x02
)

// Indoor Bike Data flag bits (flags word is little-endian uint16).
// Bit 0 is inverted: 0 means instantaneous speed IS present.
const (
	flagMoreData             = 1 << 0
	flagAverageSpeed         = 1 << 1
	flagInstantaneousCadence = 1 << 2
	flagAverageCadence       = 1 << 3
	flagTotalDistance        = 1 << 4
	flagResistanceLevel      = 1 << 5
	flagInstantaneousPower   = 1 << 6
	flagAveragePower         = 1 << 7
	flagExpendedEnergy       = 1 << 8
	flagHeartRate            = 1 << 9
	flagMetabolicEquivalent  = 1 << 10
	flagElapsedTime          = 1 << 11
	flagRemainingTime        = 1 << 12
)

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package equipment

import "errors"

// Error taxonomy surfaced by the core. Cancellation is reported as the
// context's own error, never wrapped into one of these.
var (
	// ErrInvalidState: the operation is not permitted in the instance's
	// current lifecycle state. A caller bug; never retried internally.
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrInvalidSetpoint: the target level falls outside the range the
	// machine accepts. Rejected before any bytes are encoded.
	ErrInvalidSetpoint = errors.New("setpoint out of range")

	// ErrLinkLost: the transport reported disconnection. The instance
	// transitions to disconnected; Connect may be called again.
	ErrLinkLost = errors.New("wireless link lost")

	// ErrUnsupportedType: the factory knows no machine class for the
	// requested type tag.
	ErrUnsupportedType = errors.New("unsupported equipment type")

	// ErrDiscoveryFailed: no matching device was found within the
	// discovery policy. Retry policy belongs to the caller.
	ErrDiscoveryFailed = errors.New("discovery failed")
)

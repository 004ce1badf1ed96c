package iconsole

import (
	"errors"
	"fmt"
)

// ErrInvalidSetpoint is returned when a setpoint falls outside the
// console's accepted range. No frame is produced.
var ErrInvalidSetpoint = errors.New("setpoint out of range")

// EncodeSetLevel builds the resistance setpoint command frame.
// Identical levels always yield identical bytes.
func EncodeSetLevel(level int) ([]byte, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("%w: level %d (accepted %d-%d)", ErrInvalidSetpoint, level, MinLevel, MaxLevel)
	}
	return []byte{OpSetLevel, byte(level)}, nil
}

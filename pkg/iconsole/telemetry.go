// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package iconsole

import "fmt"

// Telemetry is one decoded telemetry frame from the console.
type Telemetry struct {
	Cadence uint16  // crank revolutions per minute
	Power   uint16  // watts
	Speed   float64 // km/h, two-decimal precision
}

// String renders the sample the way the console's own display would.
func (t Telemetry) String() string {
	return fmt.Sprintf("%d rpm, %d W, %.2f km/h", t.Cadence, t.Power, t.Speed)
}

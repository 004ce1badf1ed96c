// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package profile

import (
	"fmt"
	"strings"
)

// Validate checks a loaded profiles file for consistency. It performs
// declarative validation only and does not mutate the file.
func Validate(f *File) error {
	if len(f.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	for name, p := range f.Profiles {
		if p.Type == "" {
			return fmt.Errorf("profile %q: type is required", name)
		}

		hasBridge := p.URL != ""
		hasSerial := p.Port != ""
		if hasBridge && hasSerial {
			return fmt.Errorf("profile %q: url and port are mutually exclusive", name)
		}

		if hasBridge {
			if !strings.HasPrefix(p.URL, "ws://") && !strings.HasPrefix(p.URL, "wss://") {
				return fmt.Errorf("profile %q: url must be ws:// or wss://", name)
			}
		}
		if !hasBridge && (p.Username != "" || p.NoSSLVerify) {
			return fmt.Errorf("profile %q: bridge credentials without a url", name)
		}

		if p.Baud != 0 && !hasSerial {
			return fmt.Errorf("profile %q: baud without a port", name)
		}
		if p.Baud < 0 {
			return fmt.Errorf("profile %q: baud must be positive", name)
		}

		if p.MaxLevel < 0 {
			return fmt.Errorf("profile %q: max_level must not be negative", name)
		}
		if p.TimeoutMs < 0 {
			return fmt.Errorf("profile %q: timeout_ms must not be negative", name)
		}
	}

	return nil
}

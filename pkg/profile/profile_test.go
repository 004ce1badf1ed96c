// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProfiles(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndLookup(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  garage:
    type: "28"
    max_level: 24
    url: wss://bridge.local:8443
    username: rider
    name: iConsole
    timeout_ms: 5000
  bench:
    type: ftms
    port: /dev/ttyUSB0
    baud: 115200
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(f); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	p, err := f.Lookup("garage")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Type != "28" || p.MaxLevel != 24 || p.URL != "wss://bridge.local:8443" {
		t.Fatalf("garage profile %+v", p)
	}
	if p.Timeout() != 5*time.Second {
		t.Fatalf("timeout %v", p.Timeout())
	}

	if _, err := f.Lookup("attic"); err == nil {
		t.Fatal("missing profile did not fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file did not fail")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeProfiles(t, "profiles: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml did not fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string // substring of the error, empty = valid
	}{
		{
			name: "empty file",
			body: `profiles: {}`,
			want: "no profiles",
		},
		{
			name: "missing type",
			body: "profiles:\n  a:\n    url: ws://h:1",
			want: "type is required",
		},
		{
			name: "both transports",
			body: "profiles:\n  a:\n    type: ftms\n    url: ws://h:1\n    port: /dev/ttyUSB0",
			want: "mutually exclusive",
		},
		{
			name: "bad scheme",
			body: "profiles:\n  a:\n    type: ftms\n    url: http://h:1",
			want: "ws:// or wss://",
		},
		{
			name: "credentials without url",
			body: "profiles:\n  a:\n    type: ftms\n    username: rider",
			want: "without a url",
		},
		{
			name: "baud without port",
			body: "profiles:\n  a:\n    type: \"28\"\n    baud: 9600",
			want: "without a port",
		},
		{
			name: "negative max level",
			body: "profiles:\n  a:\n    type: debug\n    max_level: -1",
			want: "max_level",
		},
		{
			name: "minimal debug",
			body: "profiles:\n  a:\n    type: debug",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(writeProfiles(t, tt.body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			err = Validate(f)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate: got %v, want substring %q", err, tt.want)
			}
		})
	}
}

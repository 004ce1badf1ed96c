// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

// Package profile loads named equipment profiles from a YAML file. A
// profile bundles the machine type tag with the transport settings
// needed to reach it, so the CLI can say `--profile garage` instead of
// repeating flags.
package profile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the top level of a profiles file.
type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile describes one machine and how to reach it.
type Profile struct {
	Type     string `yaml:"type"`
	MaxLevel int    `yaml:"max_level"`

	// Bridge transport (mutually exclusive with serial).
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`

	// Serial transport.
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// Discovery.
	Name      string `yaml:"name"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Timeout returns the discovery timeout, or zero for the transport
// default.
func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// Load reads and parses a profiles file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	return &f, nil
}

// Lookup returns the named profile.
func (f *File) Lookup(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not defined", name)
	}
	return p, nil
}

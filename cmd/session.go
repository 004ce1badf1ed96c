// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/veloforge/rouleur/pkg/equipment"
	"github.com/veloforge/rouleur/pkg/link"
	"github.com/veloforge/rouleur/pkg/profile"
)

// session is the resolved machine plus everything needed to describe it.
type session struct {
	eq   equipment.Equipment
	tag  string
	info string
}

// GetPassword retrieves the bridge password from environment or prompts
func GetPassword() (string, error) {
	if pw := os.Getenv("ROULEUR_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// loadProfile merges a named profile into the flag variables, if
// --profile was given. Flags changed on the command line keep their
// values.
func loadProfile() error {
	if profileName == "" {
		return nil
	}

	f, err := profile.Load(profilePath)
	if err != nil {
		return err
	}
	if err := profile.Validate(f); err != nil {
		return err
	}
	p, err := f.Lookup(profileName)
	if err != nil {
		return err
	}

	flags := rootCmd.PersistentFlags()
	if !flags.Changed("type") && p.Type != "" {
		typeTag = p.Type
	}
	if !flags.Changed("max-level") && p.MaxLevel != 0 {
		maxLevel = p.MaxLevel
	}
	if !flags.Changed("url") && p.URL != "" {
		bridgeURL = p.URL
	}
	if !flags.Changed("username") && p.Username != "" {
		bridgeUsername = p.Username
	}
	if !flags.Changed("no-ssl-verify") && p.NoSSLVerify {
		bridgeNoSSLVerify = true
	}
	if !flags.Changed("port") && p.Port != "" {
		portName = p.Port
	}
	if !flags.Changed("baud") && p.Baud != 0 {
		baudRate = p.Baud
	}
	if !flags.Changed("name") && p.Name != "" {
		nameFilter = p.Name
	}
	if !flags.Changed("timeout") && p.TimeoutMs != 0 {
		scanTimeout = int(p.Timeout() / time.Second)
	}
	return nil
}

// buildTransport maps the connection flags to a transport. The debug
// machine type needs none.
func buildTransport() (link.Transport, string, error) {
	if typeTag == "debug" {
		return nil, "debug (no transport)", nil
	}

	if portName != "" {
		t := &link.SerialTransport{Port: portName, Baud: baudRate}
		return t, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	// Bridge mode, explicit URL or mDNS discovery.
	password := ""
	if bridgeUsername != "" {
		var err error
		password, err = GetPassword()
		if err != nil {
			return nil, "", err
		}
	}
	t := &link.BridgeTransport{
		URL:           bridgeURL,
		Username:      bridgeUsername,
		Password:      password,
		SkipSSLVerify: bridgeNoSSLVerify,
	}
	if bridgeURL != "" {
		return t, fmt.Sprintf("Bridge: %s", bridgeURL), nil
	}
	return t, "Bridge: mDNS discovery", nil
}

func scanDuration() time.Duration {
	return time.Duration(scanTimeout) * time.Second
}

func protocolLogger() *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "", log.Ltime)
}

// resolveEquipment maps the flags (plus any profile) to a discovered,
// not-yet-connected machine.
func resolveEquipment(ctx context.Context) (*session, error) {
	if err := loadProfile(); err != nil {
		return nil, err
	}

	transport, info, err := buildTransport()
	if err != nil {
		return nil, err
	}

	eq, err := equipment.Resolve(ctx, typeTag, equipment.Options{
		Transport: transport,
		Identity: link.Identity{
			NameFilter: nameFilter,
			Timeout:    scanDuration(),
		},
		MaxLevel: maxLevel,
		Logger:   protocolLogger(),
	})
	if err != nil {
		return nil, err
	}

	return &session{eq: eq, tag: typeTag, info: info}, nil
}

// connectEquipment resolves and connects in one step. A declined
// connection is an error at the CLI surface.
func connectEquipment(ctx context.Context) (*session, error) {
	s, err := resolveEquipment(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := s.eq.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s declined the connection", s.eq.Name())
	}
	return s, nil
}

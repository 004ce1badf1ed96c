// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Equipment selection flags
	typeTag     string
	profileName string
	profilePath string
	maxLevel    int

	// Discovery flags
	nameFilter  string
	scanTimeout int

	// Serial transport flags
	portName string
	baudRate int

	// Bridge transport flags
	bridgeURL         string
	bridgeUsername    string
	bridgeNoSSLVerify bool

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rouleur",
	Short: "Smart trainer control",
	Long: `Rouleur - A CLI tool for controlling stationary bikes and smart trainers.

Provides commands for device discovery, live telemetry, resistance control,
an interactive ride screen, and ride recording.

Machine types:
  28     iConsole 0028 console firmware
  ftms   Any trainer speaking the Bluetooth Fitness Machine Service
  debug  Transportless simulator for testing

Connection modes:
  Bridge: --url ws://host/gatt [--username user], or discovered via mDNS
  Serial: --port /dev/ttyUSB0 [--baud 115200]

For bridge authentication, the password is read from the ROULEUR_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Profiles bundle these flags under a name; see --profiles-file.`,
	Version: "1.0.0",
}

func init() {
	// Equipment selection flags
	rootCmd.PersistentFlags().StringVarP(&typeTag, "type", "t", "28", "Machine type tag")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Named profile to load settings from")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profiles-file", "profiles.yaml", "Path to the profiles file")
	rootCmd.PersistentFlags().IntVar(&maxLevel, "max-level", 0, "Resistance level cap (0 = machine default)")

	// Discovery flags
	rootCmd.PersistentFlags().StringVarP(&nameFilter, "name", "n", "", "Device name filter for discovery")
	rootCmd.PersistentFlags().IntVar(&scanTimeout, "timeout", 0, "Discovery timeout in seconds (0 = transport default)")

	// Serial transport flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// Bridge transport flags
	rootCmd.PersistentFlags().StringVarP(&bridgeURL, "url", "u", "", "Bridge WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&bridgeUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&bridgeNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log protocol events to stderr")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

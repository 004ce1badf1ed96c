// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veloforge/rouleur/pkg/link"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find a reachable machine without connecting",
	Long: `Run transport discovery and print the first matching device.

With --url or --port, discovery just checks the configured endpoint. Without
either, bridge mode browses mDNS for a GATT bridge on the local network.
Use --name to require a device name substring and --timeout to bound the scan.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadProfile(); err != nil {
		return err
	}

	transport, info, err := buildTransport()
	if err != nil {
		return err
	}
	if transport == nil {
		fmt.Println("debug machines need no discovery")
		return nil
	}

	fmt.Printf("Scanning (%s)...\n", info)

	candidate, err := transport.Discover(ctx, link.Identity{
		NameFilter: nameFilter,
		Timeout:    scanDuration(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Found: %s\n", candidate.Name)
	fmt.Printf("  Address: %s\n", candidate.Addr)
	if candidate.RSSI != 0 {
		fmt.Printf("  RSSI:    %d dBm\n", candidate.RSSI)
	}
	return nil
}

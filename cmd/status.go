// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var statusWait int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connect and print one telemetry sample",
	Long: `Connect to the machine, wait for a telemetry notification, print it,
and disconnect. Useful for checking that a machine is alive and pedaling
data is flowing.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusWait, "wait", 10, "Seconds to wait for a sample")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := connectEquipment(ctx)
	if err != nil {
		return err
	}
	defer s.eq.Disconnect()

	fmt.Printf("Connected: %s (%s)\n", s.eq.Name(), s.info)

	deadline := time.Now().Add(time.Duration(statusWait) * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		sample, err := s.eq.Read(ctx)
		if err != nil {
			return err
		}
		if sample != nil {
			fmt.Println(sample)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no telemetry within %ds (is anyone pedaling?)", statusWait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

var levelCmd = &cobra.Command{
	Use:   "level N",
	Short: "Set the resistance level and exit",
	Long: `Connect to the machine, command the given resistance level, and
disconnect. The accepted range depends on the machine type (0-32 for
iConsole consoles) and can be narrowed with --max-level.`,
	Args: cobra.ExactArgs(1),
	RunE: runLevel,
}

func init() {
	rootCmd.AddCommand(levelCmd)
}

func runLevel(cmd *cobra.Command, args []string) error {
	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid level %q: %v", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := connectEquipment(ctx)
	if err != nil {
		return err
	}
	defer s.eq.Disconnect()

	if err := s.eq.SetLevel(level); err != nil {
		return err
	}

	fmt.Printf("%s: level set to %d\n", s.eq.Name(), level)
	return nil
}

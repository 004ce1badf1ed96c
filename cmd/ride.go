// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/veloforge/rouleur/pkg/equipment"
)

var rideCmd = &cobra.Command{
	Use:   "ride",
	Short: "Interactive ride screen",
	Long: `Ride the machine with a live terminal UI.

The screen shows cadence, power, and speed as they arrive, plus the
commanded resistance level. Up/down (or +/-) adjust the level, q quits.
If the wireless link drops, the session is closed and the ride ends.`,
	RunE: runRide,
}

func init() {
	rootCmd.AddCommand(rideCmd)
}

// ridePump owns the equipment for the duration of the ride. All
// machine calls happen on its goroutine; the TUI talks to it through
// the level channel and hears back through program messages.
type ridePump struct {
	eq      equipment.Equipment
	p       *tea.Program
	levelCh chan int
	done    chan struct{}
}

func (rp *ridePump) run(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-rp.done:
			return
		case <-ctx.Done():
			rp.p.Send(rideEndedMsg{reason: "interrupted"})
			return
		case level := <-rp.levelCh:
			err := rp.eq.SetLevel(level)
			rp.p.Send(rideLevelMsg{level: level, err: err})
			if errors.Is(err, equipment.ErrLinkLost) {
				rp.p.Send(rideEndedMsg{reason: "link lost"})
				return
			}
		case <-ticker.C:
			sample, err := rp.eq.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					rp.p.Send(rideEndedMsg{reason: "interrupted"})
				} else {
					rp.p.Send(rideEndedMsg{reason: err.Error()})
				}
				return
			}
			if sample != nil {
				rp.p.Send(rideSampleMsg{sample: sample})
			}
		}
	}
}

func runRide(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := connectEquipment(ctx)
	if err != nil {
		return err
	}
	defer s.eq.Disconnect()

	rp := &ridePump{
		eq:      s.eq,
		levelCh: make(chan int, 1),
		done:    make(chan struct{}),
	}

	m := initialRideModel(rp, s.eq.Name(), s.info)
	p := tea.NewProgram(m, tea.WithAltScreen())
	rp.p = p

	go rp.run(ctx)

	if _, err := p.Run(); err != nil {
		close(rp.done)
		return fmt.Errorf("TUI error: %v", err)
	}
	close(rp.done)
	return nil
}

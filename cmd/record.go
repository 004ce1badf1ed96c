// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
)

var (
	recordOutput   string
	recordInterval int
	recordLevel    int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a ride to a CBOR log file",
	Long: `Connect to the machine and append timestamped telemetry samples to a
CBOR stream until interrupted with Ctrl+C.

Each sample is one CBOR map, so the file can be replayed or post-processed
record by record without loading the whole ride. With --level the resistance
is commanded once at the start of the recording.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "Output file (default ride-<timestamp>.cbor)")
	recordCmd.Flags().IntVar(&recordInterval, "interval", 1000, "Sample interval in milliseconds")
	recordCmd.Flags().IntVar(&recordLevel, "level", -1, "Resistance level to set before recording (-1 = leave as is)")
	rootCmd.AddCommand(recordCmd)
}

// rideSample is one recorded telemetry point.
type rideSample struct {
	At         time.Time `cbor:"at"`
	Cadence    uint16    `cbor:"cadence"`
	Power      uint16    `cbor:"power"`
	Speed      float64   `cbor:"speed"`
	Distance   uint32    `cbor:"distance,omitempty"`
	Resistance int16     `cbor:"resistance,omitempty"`
	Calories   uint16    `cbor:"calories,omitempty"`
	HeartRate  uint8     `cbor:"heart_rate,omitempty"`
	Elapsed    uint16    `cbor:"elapsed,omitempty"`
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := connectEquipment(ctx)
	if err != nil {
		return err
	}
	defer s.eq.Disconnect()

	if recordLevel >= 0 {
		if err := s.eq.SetLevel(recordLevel); err != nil {
			return err
		}
	}

	path := recordOutput
	if path == "" {
		path = fmt.Sprintf("ride-%s.cbor", time.Now().Format("20060102-150405"))
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create log file: %v", err)
	}
	defer file.Close()

	enc := cbor.NewEncoder(file)

	fmt.Printf("Recording %s to %s\n", s.eq.Name(), path)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	ticker := time.NewTicker(time.Duration(recordInterval) * time.Millisecond)
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\nRecorded %d samples\n", count)
			return nil
		case <-ticker.C:
		}

		sample, err := s.eq.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Printf("\nRecorded %d samples\n", count)
				return nil
			}
			return err
		}
		if sample == nil {
			continue
		}

		if err := enc.Encode(rideSample{
			At:         time.Now(),
			Cadence:    sample.Cadence,
			Power:      sample.Power,
			Speed:      sample.Speed,
			Distance:   sample.Distance,
			Resistance: sample.Resistance,
			Calories:   sample.Calories,
			HeartRate:  sample.HeartRate,
			Elapsed:    sample.Elapsed,
		}); err != nil {
			return fmt.Errorf("write sample: %v", err)
		}
		count++
		fmt.Printf("\r%d samples  last: %s ", count, sample)
	}
}

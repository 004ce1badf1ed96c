// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge
//
// Rouleur - Smart trainer control
//
// A CLI tool for discovering, monitoring, and controlling stationary
// bikes and smart trainers over a GATT bridge or a serial console.

package main

import (
	"os"

	"github.com/veloforge/rouleur/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/capture/main.go
//
// Records the sensor's serial stream into acquisitions/impacts_<UTC>.csv.
// Stop with Ctrl+C; the device is told to stop streaming before exit.
//
// Run:
//
//	go run ./cmd/capture
package main

import (
	"log"

	"github.com/relabs-tech/inertial_replay/internal/app"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

func main() {
	log.Println("starting inertial-replay capture")

	if err := config.InitGlobal("inertial_replay.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunCapture(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

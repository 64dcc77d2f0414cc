// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_replay/internal/app"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

func main() {
	configPath := flag.String("config", "inertial_replay.txt", "configuration file")
	flag.Parse()

	log.Println("starting inertial-replay (console)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// An empty path replays the synthetic log.
	if err := app.RunConsole(flag.Arg(0)); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

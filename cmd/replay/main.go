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
	configPath := flag.String("config", "inertial_replay.txt", "configuration file (KEY=VALUE or YAML)")
	logPath := flag.String("log", "", "processed log to load at startup")
	demo := flag.Bool("demo", false, "load a synthetic log at startup")
	flag.Parse()

	log.Println("starting inertial-replay web server")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReplay(*logPath, *demo); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

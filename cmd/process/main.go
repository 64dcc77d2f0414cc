// ./cmd/process/main.go
//
// Converts a raw capture log into a replayable one (g, deg/s, time_diff).
//
// Run:
//
//	go run ./cmd/process -in acquisitions/impacts_X.csv -out processed.csv
package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_replay/internal/app"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

func main() {
	configPath := flag.String("config", "inertial_replay.txt", "configuration file")
	in := flag.String("in", "", "raw capture log")
	out := flag.String("out", "", "processed log to write")
	flag.Parse()

	if *in == "" || *out == "" {
		log.Fatalf("usage: process -in <raw.csv> -out <processed.csv>")
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProcess(*in, *out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

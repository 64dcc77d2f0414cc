package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_replay/internal/app"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

func main() {
	configPath := flag.String("config", "inertial_replay.txt", "configuration file")
	logPath := flag.String("log", "", "processed log (empty for the synthetic one)")
	outDir := flag.String("out", "charts", "output directory")
	svg := flag.Bool("svg", false, "write SVG instead of PNG")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunChartExport(*logPath, *outDir, *svg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

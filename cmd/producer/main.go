package main

import (
	"log"
	"os"

	"github.com/relabs-tech/inertial_replay/internal/app"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

func main() {
	log.Println("starting inertial-replay MQTT producer")

	if err := config.InitGlobal("inertial_replay.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := app.RunProducer(path); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

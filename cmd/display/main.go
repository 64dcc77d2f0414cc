package main

import (
	"log"

	"github.com/relabs-tech/inertial_replay/internal/app"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

func main() {
	log.Println("starting inertial-replay OLED display")

	if err := config.InitGlobal("inertial_replay.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

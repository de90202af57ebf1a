// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/gesture_companion/internal/app"
	"github.com/relabs-tech/gesture_companion/internal/config"
)

func main() {
	configPath := flag.String("config", "./companion_config.txt", "path to configuration file")
	useMock := flag.Bool("mock", false, "run the offline mock pipeline instead of subscribing")
	flag.Parse()

	if *useMock {
		log.Println("starting gesture-companion (mock console)")
		if err := app.RunMockConsole(); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	log.Println("starting gesture-companion console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

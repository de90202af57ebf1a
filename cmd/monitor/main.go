package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/gesture_companion/internal/app"
	"github.com/relabs-tech/gesture_companion/internal/config"
)

func main() {
	configPath := flag.String("config", "./companion_config.txt", "path to configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMonitor(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

package main

import (
	"flag"
	"log"

	"github.com/TranDung6129/real-time-displacement/internal/app"
	"github.com/TranDung6129/real-time-displacement/internal/config"
)

func main() {
	configPath := flag.String("config", "./displacement_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting real-time-displacement producer (sensor → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

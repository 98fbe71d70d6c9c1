package main

import (
	"flag"
	"log"

	"swanctl/config"
	"swanctl/server"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

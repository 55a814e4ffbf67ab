package main

import (
	"context"
	"log"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/app"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("initialize application: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("run application: %v", err)
	}
}

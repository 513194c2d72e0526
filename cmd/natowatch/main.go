package main

import (
	"log"

	"github.com/natowatch/natowatch/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ natowatch failed to start: %v", err)
	}
}

package main

import (
	"log"

	"github.com/aryodp/edgegate/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ edgegate failed to start: %v", err)
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/farellandr/eventpass/internal/server"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded, using environment: %v", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

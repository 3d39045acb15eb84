package main

import (
	"log"

	"github.com/bellapacxx/bingo-operator/config"
)

func main() {
	config.LoadEnv()

	// SetupDatabase runs AutoMigrate as part of connecting
	config.SetupDatabase()
	log.Println("✅ Database migration completed")
}

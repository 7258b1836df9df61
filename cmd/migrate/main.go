package main

import (
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/db"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	logger.Initialize()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db.Connect(cfg)
	db.AutoMigrate()

	logger.Info("Migrations completed", nil)
}

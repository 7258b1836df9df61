package main

import (
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/db"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"github.com/joho/godotenv"
)

// Seeds one completed project with a blueprint and a handful of analyses so
// the listing, detail, and search endpoints have data to serve locally.
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

	conn := db.GetDB()

	project := models.Project{
		UserPrompt: "Build a real-time ride sharing platform with driver matching, surge pricing, and trip tracking",
		Status:     models.ProjectStatusCompleted,
	}
	if err := conn.Create(&project).Error; err != nil {
		logger.Fatal("Failed to seed project", map[string]interface{}{"error": err.Error()})
	}

	blueprint := models.Blueprint{
		ProjectID:   project.ID,
		Name:        "Event-Driven Ride Sharing Microservices",
		Description: "Rider, driver, matching, pricing, and trip services communicating over REST and an event bus, each with its own Postgres database, deployed as containers behind an API gateway.",
		Pros: models.TradeoffList{
			{Point: "Independent Scalability", Description: "The matching service can scale with demand spikes without touching billing"},
			{Point: "Failure Isolation", Description: "A pricing outage degrades quotes but does not stop active trips"},
		},
		Cons: models.TradeoffList{
			{Point: "Operational Complexity", Description: "Five services and an event bus need orchestration and monitoring from day one"},
			{Point: "Eventual Consistency", Description: "Trip state propagates asynchronously, so readers can briefly see stale data"},
		},
		Diagram: "graph TB\n  Rider[Rider App] -->|REST| GW[API Gateway]\n  GW --> Match[Matching Service]\n  Match -.->|events| Trip[Trip Service]\n  Trip --> DB[(Postgres)]",
	}
	if err := conn.Create(&blueprint).Error; err != nil {
		logger.Fatal("Failed to seed blueprint", map[string]interface{}{"error": err.Error()})
	}

	analyses := []models.Analysis{
		{
			BlueprintID: blueprint.ID,
			AgentType:   models.AgentTypeSystems,
			Category:    "Performance",
			Finding:     "Driver location updates at high frequency will overwhelm the matching service without geospatial sharding or stream batching",
			Severity:    8,
		},
		{
			BlueprintID: blueprint.ID,
			AgentType:   models.AgentTypeSystems,
			Category:    "Reliability",
			Finding:     "The event bus is a single point of failure for trip state propagation and needs multi-AZ replication",
			Severity:    7,
		},
		{
			BlueprintID: blueprint.ID,
			AgentType:   models.AgentTypeBizops,
			Category:    "Cost",
			Finding:     "Per-service databases multiply baseline infrastructure cost before the platform has any traffic",
			Severity:    5,
		},
		{
			BlueprintID: blueprint.ID,
			AgentType:   models.AgentTypeBizops,
			Category:    "Compliance",
			Finding:     "Storing rider location history requires a retention policy and regional data residency review",
			Severity:    6,
		},
	}
	if err := conn.Create(&analyses).Error; err != nil {
		logger.Fatal("Failed to seed analyses", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Seed data created", map[string]interface{}{
		"project_id": project.ID.String(),
		"analyses":   len(analyses),
	})
}

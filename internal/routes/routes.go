package routes

import (
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/controllers"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires the service graph and registers the API surface.
func SetupRoutes(router *gin.Engine, database *gorm.DB, cfg *config.Config) {
	llmService := services.NewLLMService(cfg)
	lifecycleService := services.NewLifecycleService(database)
	forkService := services.NewForkService(database, cfg)
	orchestratorService := services.NewOrchestratorService(lifecycleService, llmService, forkService)
	searchService := services.NewSearchService(database, llmService, cfg)

	projectController := controllers.NewProjectController(lifecycleService, orchestratorService, searchService, llmService)

	v1 := router.Group("/api/v1")
	{
		projects := v1.Group("/projects")
		{
			projects.POST("", projectController.CreateProject)
			projects.GET("", projectController.ListProjects)
			projects.GET("/:id", projectController.GetProject)
			projects.GET("/:id/status", projectController.GetProjectStatus)
			projects.GET("/:id/search", projectController.SearchProject)
			projects.DELETE("/:id", projectController.DeleteProject)
		}

		v1.GET("/llm/status", projectController.GetLLMStatus)
	}
}

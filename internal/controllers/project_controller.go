package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectController exposes the project lifecycle and hybrid search over
// HTTP.
type ProjectController struct {
	lifecycle    *services.LifecycleService
	orchestrator *services.OrchestratorService
	search       *services.SearchService
	llm          *services.LLMService
}

func NewProjectController(lifecycle *services.LifecycleService, orchestrator *services.OrchestratorService, search *services.SearchService, llm *services.LLMService) *ProjectController {
	return &ProjectController{
		lifecycle:    lifecycle,
		orchestrator: orchestrator,
		search:       search,
		llm:          llm,
	}
}

type createProjectRequest struct {
	UserPrompt string `json:"user_prompt" binding:"required"`
}

// CreateProject accepts a prompt, persists a pending project, and kicks off
// the orchestration run in the background.
func (pc *ProjectController) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_prompt is required"})
		return
	}

	project, err := pc.lifecycle.CreateProject(req.UserPrompt)
	if err != nil {
		if errors.Is(err, services.ErrEmptyPrompt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_prompt must not be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	pc.orchestrator.Start(project)

	c.JSON(http.StatusCreated, gin.H{
		"project_id": project.ID,
		"status":     project.Status,
		"message":    "Project accepted for analysis",
	})
}

// ListProjects returns a paginated project listing, newest first.
func (pc *ProjectController) ListProjects(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	status := models.ProjectStatus(c.Query("status"))
	projects, err := pc.lifecycle.ListProjects(skip, limit, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	items := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		items = append(items, gin.H{
			"id":             p.ID,
			"status":         p.Status,
			"prompt_preview": truncate(p.UserPrompt, 200),
			"created_at":     p.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": items,
		"skip":     skip,
		"limit":    limit,
	})
}

// GetProject returns a project with its full analysis results. Results are
// withheld until the project reaches the completed state.
func (pc *ProjectController) GetProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	project, err := pc.lifecycle.GetProject(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	blueprints := []models.Blueprint{}
	if project.Status == models.ProjectStatusCompleted {
		full, err := pc.lifecycle.GetProjectWithResults(id)
		if err != nil {
			respondProjectError(c, err)
			return
		}
		project = full
		if project.Blueprints != nil {
			blueprints = project.Blueprints
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            project.ID,
		"user_prompt":   project.UserPrompt,
		"status":        project.Status,
		"error_message": project.ErrorMessage,
		"created_at":    project.CreatedAt,
		"blueprints":    blueprints,
	})
}

// GetProjectStatus is the lightweight polling endpoint.
func (pc *ProjectController) GetProjectStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	project, err := pc.lifecycle.GetProject(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id":     project.ID,
		"status":         project.Status,
		"error_message":  project.ErrorMessage,
		"prompt_preview": truncate(project.UserPrompt, 100),
	})
}

// SearchProject runs hybrid search within one project's analyses.
func (pc *ProjectController) SearchProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := pc.lifecycle.GetProject(id); err != nil {
		respondProjectError(c, err)
		return
	}

	var blueprintID *uuid.UUID
	if raw := c.Query("blueprint_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blueprint_id"})
			return
		}
		blueprintID = &parsed
	}

	query := c.Query("q")
	results, err := pc.search.Search(c.Request.Context(), id, blueprintID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// DeleteProject removes a project and all of its results.
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := pc.lifecycle.DeleteProject(id); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// GetLLMStatus reports whether the model backend is reachable.
func (pc *ProjectController) GetLLMStatus(c *gin.Context) {
	if err := pc.llm.CheckHealth(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return uuid.Nil, false
	}
	return id, true
}

func respondProjectError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LifecycleService owns project rows and their status state machine on the
// canonical database.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// CreateProject persists a new pending project. The prompt is stored
// verbatim; only an all-whitespace prompt is rejected.
func (s *LifecycleService) CreateProject(userPrompt string) (*models.Project, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ErrEmptyPrompt
	}

	project := &models.Project{
		UserPrompt: userPrompt,
		Status:     models.ProjectStatusPending,
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject fetches a bare project row.
func (s *LifecycleService) GetProject(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}

// GetProjectWithResults fetches a project with its blueprints and analyses
// preloaded. Results for non-completed projects are withheld by the caller.
func (s *LifecycleService) GetProjectWithResults(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Blueprints", func(db *gorm.DB) *gorm.DB {
			return db.Order("blueprints.created_at ASC")
		}).
		Preload("Blueprints.Analyses", func(db *gorm.DB) *gorm.DB {
			return db.Order("analyses.severity DESC, analyses.created_at ASC")
		}).
		First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}

// ListProjects returns projects ordered newest first, optionally filtered
// by status.
func (s *LifecycleService) ListProjects(skip, limit int, status models.ProjectStatus) ([]models.Project, error) {
	query := s.db.Model(&models.Project{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Offset(skip).Limit(limit).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ValidTransition reports whether from -> to is an allowed edge of the
// project state machine. Terminal states have no outgoing edges.
func ValidTransition(from, to models.ProjectStatus) bool {
	switch from {
	case models.ProjectStatusPending:
		return to == models.ProjectStatusProcessing
	case models.ProjectStatusProcessing:
		return to == models.ProjectStatusCompleted || to == models.ProjectStatusError
	}
	return false
}

// Transition moves a project from one status to another with a conditional
// update. If the row is no longer in the expected source status (deleted, or
// raced by another worker) the update matches nothing and ErrStaleTransition
// is returned so the caller can stand down.
func (s *LifecycleService) Transition(id uuid.UUID, from, to models.ProjectStatus, detail string) error {
	if !ValidTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	updates := map[string]interface{}{"status": to}
	if to == models.ProjectStatusError {
		updates["error_message"] = detail
	}

	result := s.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update project status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// Exists reports whether the project row is still present. The orchestrator
// uses this as a liveness check before each persistence step so a deleted
// project stops accumulating results.
func (s *LifecycleService) Exists(id uuid.UUID) bool {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// DeleteProject hard-deletes a project and everything under it.
func (s *LifecycleService) DeleteProject(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("failed to fetch project: %w", err)
		}

		if err := tx.Exec(
			`DELETE FROM analyses WHERE blueprint_id IN (SELECT id FROM blueprints WHERE project_id = ?)`, id,
		).Error; err != nil {
			return fmt.Errorf("failed to delete analyses: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Blueprint{}).Error; err != nil {
			return fmt.Errorf("failed to delete blueprints: %w", err)
		}
		if err := tx.Delete(&project).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

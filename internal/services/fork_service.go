package services

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/db"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForkService provisions isolated database forks for orchestration runs via
// the provider CLI. When the provider is unconfigured or provisioning fails,
// runs fall back to writing directly against the canonical database.
type ForkService struct {
	canonical *gorm.DB
	cfg       *config.Config
	cliPath   string
	serviceID string
	timeout   time.Duration
}

// ForkScope is one run's isolated write target. A primary scope means the
// run writes straight to the canonical database and merge is a no-op.
type ForkScope struct {
	ProjectID uuid.UUID
	Name      string
	db        *gorm.DB
	primary   bool
	released  bool
}

// DB returns the session orchestration steps should write through.
func (fs *ForkScope) DB() *gorm.DB {
	return fs.db
}

// Primary reports whether this scope is the canonical-database fallback.
func (fs *ForkScope) Primary() bool {
	return fs.primary
}

func NewForkService(canonical *gorm.DB, cfg *config.Config) *ForkService {
	cliPath := cfg.Fork.CLIPath
	if cliPath == "" {
		cliPath = "tiger"
	}
	return &ForkService{
		canonical: canonical,
		cfg:       cfg,
		cliPath:   cliPath,
		serviceID: cfg.Fork.ServiceID,
		timeout:   time.Duration(cfg.Fork.TimeoutSeconds) * time.Second,
	}
}

// forkName derives the fork name for a project.
func forkName(projectID uuid.UUID) string {
	return "project_" + projectID.String()
}

// Acquire provisions a fork scope for a run. It never returns an error: any
// failure along the way degrades to the primary fallback so generation work
// is not lost to infrastructure trouble.
func (s *ForkService) Acquire(ctx context.Context, projectID uuid.UUID) *ForkScope {
	name := forkName(projectID)
	log := logger.WithFork(projectID, name)

	if s.serviceID == "" {
		log.Warn("Fork provider not configured, writing to primary database")
		return s.primaryScope(projectID)
	}

	if err := s.createFork(ctx, name); err != nil {
		log.WithField("error", err.Error()).Warn("Fork creation failed, falling back to primary database")
		return s.primaryScope(projectID)
	}

	forkDB, err := db.Open(s.cfg.Database.ForkDSN(name))
	if err != nil {
		log.WithField("error", err.Error()).Warn("Fork connection failed, falling back to primary database")
		s.destroyFork(context.Background(), name)
		return s.primaryScope(projectID)
	}

	// A fresh fork carries the canonical schema, but run migrations anyway
	// so a fork of an older service still accepts writes.
	if err := db.Migrate(forkDB); err != nil {
		log.WithField("error", err.Error()).Warn("Fork migration failed, falling back to primary database")
		closeSession(forkDB)
		s.destroyFork(context.Background(), name)
		return s.primaryScope(projectID)
	}

	log.Info("Fork provisioned")
	return &ForkScope{ProjectID: projectID, Name: name, db: forkDB}
}

func (s *ForkService) primaryScope(projectID uuid.UUID) *ForkScope {
	return &ForkScope{
		ProjectID: projectID,
		Name:      "primary",
		db:        s.canonical,
		primary:   true,
	}
}

// Release finishes a scope: on success the fork's results are merged into
// the canonical database, and the fork is torn down regardless of outcome.
// Calling Release on an already-released scope is a no-op, so callers can
// release explicitly on the happy path and still defer a discarding release
// for panic and early-return paths.
func (s *ForkService) Release(ctx context.Context, scope *ForkScope, succeeded bool) error {
	if scope == nil || scope.released {
		return nil
	}
	scope.released = true

	if scope.primary {
		return nil
	}

	log := logger.WithFork(scope.ProjectID, scope.Name)

	var mergeErr error
	if succeeded {
		if s.projectAlive(scope.ProjectID) {
			mergeErr = s.merge(scope)
		} else {
			log.Info("Project deleted during run, discarding fork results")
		}
	}

	closeSession(scope.db)
	s.destroyFork(ctx, scope.Name)

	if mergeErr != nil {
		return fmt.Errorf("failed to merge fork results: %w", mergeErr)
	}
	return nil
}

// merge copies the run's blueprints and analyses from the fork into the
// canonical database in one transaction, parents before children.
func (s *ForkService) merge(scope *ForkScope) error {
	var blueprints []models.Blueprint
	if err := scope.db.Where("project_id = ?", scope.ProjectID).Find(&blueprints).Error; err != nil {
		return fmt.Errorf("failed to read fork blueprints: %w", err)
	}
	if len(blueprints) == 0 {
		return nil
	}

	blueprintIDs := make([]uuid.UUID, len(blueprints))
	for i, bp := range blueprints {
		blueprintIDs[i] = bp.ID
	}

	var analyses []models.Analysis
	if err := scope.db.Where("blueprint_id IN ?", blueprintIDs).Find(&analyses).Error; err != nil {
		return fmt.Errorf("failed to read fork analyses: %w", err)
	}

	return s.canonical.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&blueprints).Error; err != nil {
			return err
		}
		if len(analyses) > 0 {
			if err := tx.Create(&analyses).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ForkService) createFork(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cliPath,
		"service", "fork", s.serviceID,
		"--now",
		"--name", name,
		"--no-set-default",
		"--output", "json",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("fork CLI failed: %w: %s", err, string(output))
	}
	return nil
}

// destroyFork tears a fork down. Teardown is best effort; a leaked fork is
// logged, never surfaced to the run.
func (s *ForkService) destroyFork(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cliPath,
		"service", "delete", name,
		"--confirm",
		"--output", "json",
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		logger.WithContext(map[string]interface{}{
			"component": "fork_service",
			"fork":      name,
			"error":     err.Error(),
			"output":    string(output),
		}).Error("Fork teardown failed, fork may be leaked")
	}
}

func (s *ForkService) projectAlive(projectID uuid.UUID) bool {
	var count int64
	if err := s.canonical.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func closeSession(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}

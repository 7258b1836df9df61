package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"github.com/google/uuid"
)

// generationClient is the model surface the orchestrator depends on.
type generationClient interface {
	GenerateBlueprint(ctx context.Context, userPrompt string) (*BlueprintDraft, error)
	RunAnalyst(ctx context.Context, agentType models.AgentType, blueprintContext string) ([]Finding, error)
	GenerateDiagram(ctx context.Context, name, description string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) (models.Vector, error)
}

// forkProvider is the scoped-database surface the orchestrator depends on.
type forkProvider interface {
	Acquire(ctx context.Context, projectID uuid.UUID) *ForkScope
	Release(ctx context.Context, scope *ForkScope, succeeded bool) error
}

// OrchestratorService drives one project through the generation pipeline:
// claim, fork, architect, parallel analysts, diagram, merge, complete.
type OrchestratorService struct {
	lifecycle *LifecycleService
	llm       generationClient
	forks     forkProvider
}

func NewOrchestratorService(lifecycle *LifecycleService, llm generationClient, forks forkProvider) *OrchestratorService {
	return &OrchestratorService{
		lifecycle: lifecycle,
		llm:       llm,
		forks:     forks,
	}
}

// Start launches the orchestration run for a project in the background.
func (s *OrchestratorService) Start(project *models.Project) {
	go func() {
		if err := s.Run(context.Background(), project.ID, project.UserPrompt); err != nil {
			logger.WithProject(project.ID).WithField("error", err.Error()).
				Error("Orchestration run failed")
		}
	}()
}

// Run executes the full pipeline for one project. It returns nil both on
// success and when the run stands down because another worker claimed the
// project or the project was deleted mid-run.
func (s *OrchestratorService) Run(ctx context.Context, projectID uuid.UUID, userPrompt string) error {
	log := logger.WithProject(projectID)

	// Claim the project. Losing the claim race, or finding the project
	// already gone, is a silent stand-down.
	if err := s.lifecycle.Transition(projectID, models.ProjectStatusPending, models.ProjectStatusProcessing, ""); err != nil {
		if errors.Is(err, ErrStaleTransition) {
			log.Info("Project already claimed or deleted, skipping run")
			return nil
		}
		return err
	}

	scope := s.forks.Acquire(ctx, projectID)

	// Discarding release for panic and early-return paths. The happy path
	// releases explicitly below, which makes this a no-op.
	defer func() {
		if err := s.forks.Release(ctx, scope, false); err != nil {
			log.WithField("error", err.Error()).Error("Fork release failed")
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprintf("%v", r)).Error("Orchestration run panicked")
			s.fail(projectID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	// Architect step. Everything downstream depends on it, so any failure
	// here ends the run with nothing persisted.
	draft, err := s.llm.GenerateBlueprint(ctx, userPrompt)
	if err != nil {
		log.WithField("error", err.Error()).Error("Blueprint generation failed")
		s.fail(projectID, "blueprint generation failed: "+err.Error())
		return err
	}

	if !s.lifecycle.Exists(projectID) {
		log.Info("Project deleted during run, aborting")
		return nil
	}

	blueprint := &models.Blueprint{
		ProjectID:   projectID,
		Name:        draft.Name,
		Description: draft.Description,
		Pros:        draft.Pros,
		Cons:        draft.Cons,
	}
	if err := scope.DB().Create(blueprint).Error; err != nil {
		log.WithField("error", err.Error()).Error("Blueprint persistence failed")
		s.fail(projectID, "failed to persist blueprint: "+err.Error())
		return err
	}
	log.WithField("blueprint", draft.Name).Info("Blueprint generated")

	// Analyst fan-out. Each agent succeeds or fails on its own; a failed
	// agent contributes nothing and the run carries on.
	results := s.runAnalysts(ctx, draft.Context())
	for _, agent := range []models.AgentType{models.AgentTypeSystems, models.AgentTypeBizops} {
		res := results[agent]
		if res.err != nil {
			logger.WithAgent(projectID, string(agent)).WithField("error", res.err.Error()).
				Warn("Analyst run failed, continuing without its findings")
			continue
		}

		if !s.lifecycle.Exists(projectID) {
			log.Info("Project deleted during run, aborting")
			return nil
		}
		if err := s.persistFindings(ctx, scope, blueprint.ID, agent, res.findings); err != nil {
			log.WithField("error", err.Error()).Error("Analysis persistence failed")
			s.fail(projectID, "failed to persist analyses: "+err.Error())
			return err
		}
		logger.WithAgent(projectID, string(agent)).
			WithField("findings", len(res.findings)).Info("Analyst run persisted")
	}

	// Diagram step is cosmetic: failures are logged and the blueprint
	// simply ships without one.
	if diagram, err := s.llm.GenerateDiagram(ctx, draft.Name, draft.Description); err != nil {
		log.WithField("error", err.Error()).Warn("Diagram generation failed, blueprint will have no diagram")
	} else if s.lifecycle.Exists(projectID) {
		if err := scope.DB().Model(&models.Blueprint{}).
			Where("id = ?", blueprint.ID).
			Update("diagram", diagram).Error; err != nil {
			log.WithField("error", err.Error()).Warn("Diagram persistence failed")
		}
	}

	// Merge results into the canonical database, then flip the status so
	// readers never see a completed project without its blueprint.
	if err := s.forks.Release(ctx, scope, true); err != nil {
		log.WithField("error", err.Error()).Error("Result merge failed")
		s.fail(projectID, "failed to merge results: "+err.Error())
		return err
	}

	if err := s.lifecycle.Transition(projectID, models.ProjectStatusProcessing, models.ProjectStatusCompleted, ""); err != nil {
		if errors.Is(err, ErrStaleTransition) {
			log.Info("Project deleted before completion")
			return nil
		}
		return err
	}

	log.Info("Orchestration run completed")
	return nil
}

type analystResult struct {
	agent    models.AgentType
	findings []Finding
	err      error
}

// runAnalysts fans both analyst agents out in parallel and collects their
// independent results.
func (s *OrchestratorService) runAnalysts(ctx context.Context, blueprintContext string) map[models.AgentType]analystResult {
	agents := []models.AgentType{models.AgentTypeSystems, models.AgentTypeBizops}

	ch := make(chan analystResult, len(agents))
	for _, agent := range agents {
		go func(agent models.AgentType) {
			findings, err := s.llm.RunAnalyst(ctx, agent, blueprintContext)
			ch <- analystResult{agent: agent, findings: findings, err: err}
		}(agent)
	}

	results := make(map[models.AgentType]analystResult, len(agents))
	for range agents {
		res := <-ch
		results[res.agent] = res
	}
	return results
}

// persistFindings writes one agent's findings into the run scope. Embedding
// generation is best effort: a finding without a vector still persists and
// participates in lexical search.
func (s *OrchestratorService) persistFindings(ctx context.Context, scope *ForkScope, blueprintID uuid.UUID, agent models.AgentType, findings []Finding) error {
	for _, f := range findings {
		analysis := &models.Analysis{
			BlueprintID: blueprintID,
			AgentType:   agent,
			Category:    f.Category,
			Finding:     f.Finding,
			Severity:    f.Severity,
		}

		if embedding, err := s.llm.GenerateEmbedding(ctx, f.Category+": "+f.Finding); err != nil {
			logger.WithAgent(scope.ProjectID, string(agent)).WithField("error", err.Error()).
				Warn("Embedding generation failed, storing finding without vector")
		} else {
			analysis.Embedding = embedding
		}

		if err := scope.DB().Create(analysis).Error; err != nil {
			return fmt.Errorf("failed to persist analysis: %w", err)
		}
	}
	return nil
}

// fail marks a processing project as errored. A stale transition here means
// the project was deleted mid-run, which is fine.
func (s *OrchestratorService) fail(projectID uuid.UUID, detail string) {
	err := s.lifecycle.Transition(projectID, models.ProjectStatusProcessing, models.ProjectStatusError, detail)
	if err != nil && !errors.Is(err, ErrStaleTransition) {
		logger.WithProject(projectID).WithField("error", err.Error()).
			Error("Failed to mark project as errored")
	}
}

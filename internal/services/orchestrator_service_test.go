package services

import (
	"context"
	"errors"
	"testing"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
)

// fakeGenerationClient lets each agent succeed or fail independently.
type fakeGenerationClient struct {
	systemsFindings []Finding
	systemsErr      error
	bizopsFindings  []Finding
	bizopsErr       error
}

func (f *fakeGenerationClient) GenerateBlueprint(ctx context.Context, userPrompt string) (*BlueprintDraft, error) {
	return &BlueprintDraft{Name: "Test Architecture", Description: "test"}, nil
}

func (f *fakeGenerationClient) RunAnalyst(ctx context.Context, agentType models.AgentType, blueprintContext string) ([]Finding, error) {
	switch agentType {
	case models.AgentTypeSystems:
		return f.systemsFindings, f.systemsErr
	case models.AgentTypeBizops:
		return f.bizopsFindings, f.bizopsErr
	}
	return nil, errors.New("unknown agent")
}

func (f *fakeGenerationClient) GenerateDiagram(ctx context.Context, name, description string) (string, error) {
	return "graph TB\n  A --> B", nil
}

func (f *fakeGenerationClient) GenerateEmbedding(ctx context.Context, text string) (models.Vector, error) {
	return models.Vector{0.1, 0.2}, nil
}

func TestRunAnalystsBothSucceed(t *testing.T) {
	llm := &fakeGenerationClient{
		systemsFindings: []Finding{{Category: "Performance", Finding: "slow", Severity: 6}},
		bizopsFindings:  []Finding{{Category: "Cost", Finding: "pricey", Severity: 4}, {Category: "Ops", Finding: "complex", Severity: 5}},
	}
	orch := &OrchestratorService{llm: llm}

	results := orch.runAnalysts(context.Background(), "some context")

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if res := results[models.AgentTypeSystems]; res.err != nil || len(res.findings) != 1 {
		t.Errorf("systems result = %+v", res)
	}
	if res := results[models.AgentTypeBizops]; res.err != nil || len(res.findings) != 2 {
		t.Errorf("bizops result = %+v", res)
	}
}

func TestRunAnalystsOneFails(t *testing.T) {
	llm := &fakeGenerationClient{
		systemsErr:     errors.New("model timeout"),
		bizopsFindings: []Finding{{Category: "Cost", Finding: "pricey", Severity: 4}},
	}
	orch := &OrchestratorService{llm: llm}

	results := orch.runAnalysts(context.Background(), "some context")

	if res := results[models.AgentTypeSystems]; res.err == nil {
		t.Error("systems agent should have failed")
	}
	if res := results[models.AgentTypeBizops]; res.err != nil || len(res.findings) != 1 {
		t.Errorf("bizops agent should be unaffected by the systems failure, got %+v", res)
	}
}

func TestRunAnalystsBothFail(t *testing.T) {
	llm := &fakeGenerationClient{
		systemsErr: errors.New("model timeout"),
		bizopsErr:  errors.New("malformed output"),
	}
	orch := &OrchestratorService{llm: llm}

	results := orch.runAnalysts(context.Background(), "some context")

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for agent, res := range results {
		if res.err == nil {
			t.Errorf("%s agent should have failed", agent)
		}
	}
}

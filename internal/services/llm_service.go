package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
)

// LLMService talks to a local Ollama instance for blueprint generation,
// analyst runs, diagram generation, and embeddings.
type LLMService struct {
	baseURL    string
	model      string
	embedModel string
	embedDim   int
	client     *http.Client
	timeout    time.Duration
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// BlueprintDraft is the architect agent's validated output, not yet
// persisted anywhere.
type BlueprintDraft struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Pros        models.TradeoffList `json:"pros"`
	Cons        models.TradeoffList `json:"cons"`
}

// Finding is one validated analyst result item.
type Finding struct {
	Category string
	Finding  string
	Severity int
}

func NewLLMService(cfg *config.Config) *LLMService {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	return &LLMService{
		baseURL:    strings.TrimRight(cfg.LLM.BaseURL, "/"),
		model:      cfg.LLM.Model,
		embedModel: cfg.LLM.EmbedModel,
		embedDim:   cfg.LLM.EmbeddingDim,
		client:     &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// callLLM sends a prompt to the generation endpoint and returns the raw
// model response text.
func (ls *LLMService) callLLM(ctx context.Context, prompt, callType string) (string, error) {
	start := time.Now()

	reqBody := ollamaGenerateRequest{
		Model:  ls.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": 0.2,
			"top_p":       0.8,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal LLM request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ls.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ls.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create LLM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ls.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}

	logger.WithLLM(callType).WithField("duration_ms", time.Since(start).Milliseconds()).
		Debug("LLM call completed")

	return result.Response, nil
}

// GenerateBlueprint runs the architect agent. Any parse or validation
// failure here is fatal to the whole run.
func (ls *LLMService) GenerateBlueprint(ctx context.Context, userPrompt string) (*BlueprintDraft, error) {
	response, err := ls.callLLM(ctx, architectPrompt(userPrompt), "blueprint_generation")
	if err != nil {
		return nil, err
	}
	return parseBlueprintResponse(response)
}

func parseBlueprintResponse(response string) (*BlueprintDraft, error) {
	clean := extractJSON(response)

	var drafts []BlueprintDraft
	if strings.HasPrefix(clean, "{") {
		// Some models drop the array wrapper; accept a bare object.
		var single BlueprintDraft
		if err := json.Unmarshal([]byte(clean), &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		drafts = []BlueprintDraft{single}
	} else {
		if err := json.Unmarshal([]byte(clean), &drafts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
	}

	if len(drafts) != 1 {
		return nil, fmt.Errorf("%w: expected exactly 1 blueprint, got %d", ErrMalformedOutput, len(drafts))
	}

	draft := drafts[0]
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("%w: blueprint name is empty", ErrMalformedOutput)
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, fmt.Errorf("%w: blueprint description is empty", ErrMalformedOutput)
	}
	if len(draft.Name) > 255 {
		draft.Name = draft.Name[:255]
	}

	return &draft, nil
}

// RunAnalyst runs one analyst agent against a blueprint context. A single
// malformed item rejects the whole batch.
func (ls *LLMService) RunAnalyst(ctx context.Context, agentType models.AgentType, blueprintContext string) ([]Finding, error) {
	instructions, err := analystInstructions(agentType)
	if err != nil {
		return nil, err
	}

	response, err := ls.callLLM(ctx, instructions+"\n"+blueprintContext, string(agentType)+"_analysis")
	if err != nil {
		return nil, err
	}
	return parseFindings(response)
}

type findingPayload struct {
	Category string   `json:"category"`
	Finding  string   `json:"finding"`
	Severity *float64 `json:"severity"`
}

func parseFindings(response string) ([]Finding, error) {
	clean := extractJSON(response)
	if !strings.HasPrefix(clean, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array of findings", ErrMalformedOutput)
	}

	var payloads []findingPayload
	if err := json.Unmarshal([]byte(clean), &payloads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: analyst returned no findings", ErrMalformedOutput)
	}

	findings := make([]Finding, 0, len(payloads))
	for i, p := range payloads {
		if strings.TrimSpace(p.Category) == "" {
			return nil, fmt.Errorf("%w: finding %d has empty category", ErrMalformedOutput, i)
		}
		if strings.TrimSpace(p.Finding) == "" {
			return nil, fmt.Errorf("%w: finding %d has empty finding text", ErrMalformedOutput, i)
		}
		if p.Severity == nil {
			return nil, fmt.Errorf("%w: finding %d is missing severity", ErrMalformedOutput, i)
		}
		sev := *p.Severity
		if sev != math.Trunc(sev) {
			return nil, fmt.Errorf("%w: finding %d severity %v is not an integer", ErrMalformedOutput, i, sev)
		}
		severity := int(sev)
		if severity < 1 || severity > 10 {
			return nil, fmt.Errorf("%w: finding %d severity %d out of range [1,10]", ErrMalformedOutput, i, severity)
		}

		category := p.Category
		if len(category) > 100 {
			category = category[:100]
		}

		findings = append(findings, Finding{
			Category: category,
			Finding:  p.Finding,
			Severity: severity,
		})
	}

	return findings, nil
}

// GenerateDiagram produces a Mermaid flowchart for a blueprint. Callers
// treat failures as non-fatal.
func (ls *LLMService) GenerateDiagram(ctx context.Context, name, description string) (string, error) {
	response, err := ls.callLLM(ctx, diagramPrompt(name, description), "diagram_generation")
	if err != nil {
		return "", err
	}

	diagram := stripCodeFences(response)
	if diagram == "" {
		return "", fmt.Errorf("%w: empty diagram", ErrMalformedOutput)
	}
	if !strings.HasPrefix(diagram, "graph TB") && !strings.HasPrefix(diagram, "graph TD") {
		diagram = "graph TB\n" + diagram
	}

	return diagram, nil
}

// GenerateEmbedding returns an embedding vector for the given text. A
// dimension mismatch against the configured model is an error so corrupt
// vectors never reach storage.
func (ls *LLMService) GenerateEmbedding(ctx context.Context, text string) (models.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	jsonData, err := json.Marshal(ollamaEmbeddingRequest{Model: ls.embedModel, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ls.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ls.baseURL+"/api/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ls.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	if len(result.Embedding) != ls.embedDim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(result.Embedding), ls.embedDim)
	}

	return models.Vector(result.Embedding), nil
}

// CheckHealth verifies the LLM backend is reachable.
func (ls *LLMService) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ls.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := ls.client.Do(req)
	if err != nil {
		return fmt.Errorf("LLM backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LLM backend returned status %d", resp.StatusCode)
	}
	return nil
}

// extractJSON strips markdown fences and surrounding prose, keeping the
// outermost JSON value in the response.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		response = response[idx+len("```json"):]
		if end := strings.Index(response, "```"); end != -1 {
			response = response[:end]
		}
	} else if idx := strings.Index(response, "```"); idx != -1 {
		response = response[idx+len("```"):]
		if end := strings.Index(response, "```"); end != -1 {
			response = response[:end]
		}
	}

	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := strings.LastIndex(response, "]"); end > arrStart {
			response = response[arrStart : end+1]
		}
	} else if objStart != -1 {
		if end := strings.LastIndex(response, "}"); end > objStart {
			response = response[objStart : end+1]
		}
	}

	return strings.TrimSpace(response)
}

// stripCodeFences removes markdown fences from non-JSON output such as
// Mermaid diagrams.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```mermaid", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude inputs score zero.
func cosineSimilarity(a, b models.Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

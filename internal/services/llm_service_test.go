package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
)

func TestParseBlueprintResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantName string
		wantErr  bool
	}{
		{
			name:     "clean array",
			response: `[{"name": "Microservices Architecture", "description": "A distributed system", "pros": [{"point": "Scalability", "description": "Scales well"}], "cons": [{"point": "Complexity", "description": "Hard to operate"}]}]`,
			wantName: "Microservices Architecture",
		},
		{
			name: "markdown fenced",
			response: "Here is the design:\n```json\n" +
				`[{"name": "Event-Driven Architecture", "description": "Services react to events", "pros": [], "cons": []}]` +
				"\n```\nLet me know if you need changes.",
			wantName: "Event-Driven Architecture",
		},
		{
			name:     "bare object instead of array",
			response: `{"name": "Layered Architecture", "description": "Classic tiers", "pros": [], "cons": []}`,
			wantName: "Layered Architecture",
		},
		{
			name:     "surrounding prose without fences",
			response: `Sure! [{"name": "Serverless Architecture", "description": "Functions on demand", "pros": [], "cons": []}] Hope that helps.`,
			wantName: "Serverless Architecture",
		},
		{
			name:     "two blueprints",
			response: `[{"name": "A", "description": "a", "pros": [], "cons": []}, {"name": "B", "description": "b", "pros": [], "cons": []}]`,
			wantErr:  true,
		},
		{
			name:     "empty name",
			response: `[{"name": "  ", "description": "something", "pros": [], "cons": []}]`,
			wantErr:  true,
		},
		{
			name:     "empty description",
			response: `[{"name": "Something", "description": "", "pros": [], "cons": []}]`,
			wantErr:  true,
		},
		{
			name:     "not JSON at all",
			response: "I cannot design that architecture.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := parseBlueprintResponse(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got draft %+v", draft)
				}
				if !errors.Is(err, ErrMalformedOutput) {
					t.Errorf("expected ErrMalformedOutput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if draft.Name != tt.wantName {
				t.Errorf("name = %q, want %q", draft.Name, tt.wantName)
			}
		})
	}
}

func TestParseFindings(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantCount int
		wantErr   bool
	}{
		{
			name: "valid batch",
			response: `[
				{"category": "Performance", "finding": "Slow queries under load", "severity": 7},
				{"category": "Security", "finding": "Missing rate limiting", "severity": 9}
			]`,
			wantCount: 2,
		},
		{
			name: "fenced batch",
			response: "```json\n" +
				`[{"category": "Cost", "finding": "High infra baseline", "severity": 4}]` +
				"\n```",
			wantCount: 1,
		},
		{
			name:     "severity zero",
			response: `[{"category": "Performance", "finding": "x", "severity": 0}]`,
			wantErr:  true,
		},
		{
			name:     "severity eleven",
			response: `[{"category": "Performance", "finding": "x", "severity": 11}]`,
			wantErr:  true,
		},
		{
			name:     "fractional severity",
			response: `[{"category": "Performance", "finding": "x", "severity": 7.5}]`,
			wantErr:  true,
		},
		{
			name:     "missing severity",
			response: `[{"category": "Performance", "finding": "x"}]`,
			wantErr:  true,
		},
		{
			name:     "empty category",
			response: `[{"category": "", "finding": "x", "severity": 5}]`,
			wantErr:  true,
		},
		{
			name: "one bad item rejects the batch",
			response: `[
				{"category": "Performance", "finding": "fine", "severity": 5},
				{"category": "Security", "finding": "bad", "severity": 15}
			]`,
			wantErr: true,
		},
		{
			name:     "object instead of array",
			response: `{"category": "Performance", "finding": "x", "severity": 5}`,
			wantErr:  true,
		},
		{
			name:     "empty array",
			response: `[]`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := parseFindings(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d findings", len(findings))
				}
				if !errors.Is(err, ErrMalformedOutput) {
					t.Errorf("expected ErrMalformedOutput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(findings) != tt.wantCount {
				t.Errorf("got %d findings, want %d", len(findings), tt.wantCount)
			}
		})
	}
}

func TestParseFindingsTruncatesCategory(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "Operations"
	}
	findings, err := parseFindings(`[{"category": "` + long + `", "finding": "x", "severity": 3}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings[0].Category) != 100 {
		t.Errorf("category length = %d, want 100", len(findings[0].Category))
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```mermaid\ngraph TB\n  A --> B\n```", "graph TB\n  A --> B"},
		{"```\ngraph TD\n  A --> B\n```", "graph TD\n  A --> B"},
		{"graph TB\n  A --> B", "graph TB\n  A --> B"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Vector
		want float64
	}{
		{"identical", models.Vector{1, 2, 3}, models.Vector{1, 2, 3}, 1},
		{"opposite", models.Vector{1, 0}, models.Vector{-1, 0}, -1},
		{"orthogonal", models.Vector{1, 0}, models.Vector{0, 1}, 0},
		{"mismatched lengths", models.Vector{1, 2}, models.Vector{1, 2, 3}, 0},
		{"zero vector", models.Vector{0, 0}, models.Vector{1, 2}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateEmbeddingDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding": [0.1, 0.2, 0.3]}`))
	}))
	defer srv.Close()

	ls := &LLMService{
		baseURL:    srv.URL,
		embedModel: "nomic-embed-text",
		embedDim:   768,
		client:     srv.Client(),
		timeout:    5 * time.Second,
	}

	if _, err := ls.GenerateEmbedding(context.Background(), "some finding text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestGenerateEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding": [0.5, 0.5, 0.5]}`))
	}))
	defer srv.Close()

	ls := &LLMService{
		baseURL:    srv.URL,
		embedModel: "nomic-embed-text",
		embedDim:   3,
		client:     srv.Client(),
		timeout:    5 * time.Second,
	}

	embedding, err := ls.GenerateEmbedding(context.Background(), "some finding text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embedding) != 3 {
		t.Errorf("embedding length = %d, want 3", len(embedding))
	}

	if _, err := ls.GenerateEmbedding(context.Background(), "   "); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ls := &LLMService{baseURL: srv.URL, client: srv.Client(), timeout: 5 * time.Second}
	if err := ls.CheckHealth(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	srv.Close()
	if err := ls.CheckHealth(context.Background()); err == nil {
		t.Error("expected error after server shutdown")
	}
}

package services

import (
	"testing"
	"time"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
)

func row(category string, severity int, lexRank float64, embedding models.Vector, createdAt time.Time) scoredAnalysis {
	return scoredAnalysis{
		Analysis: models.Analysis{
			Category:  category,
			Finding:   category + " detail",
			Severity:  severity,
			Embedding: embedding,
			CreatedAt: createdAt,
		},
		LexRank: lexRank,
	}
}

func TestRankAnalysesEmpty(t *testing.T) {
	results := rankAnalyses(nil, models.Vector{1, 0}, 0.5, 0.5)
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestRankAnalysesScoresInRange(t *testing.T) {
	now := time.Now()
	rows := []scoredAnalysis{
		row("Performance", 5, 0.8, models.Vector{1, 0}, now),
		row("Security", 7, 0.2, models.Vector{0, 1}, now),
		row("Cost", 3, 0.0, models.Vector{-1, 0}, now),
	}

	results := rankAnalyses(rows, models.Vector{1, 0}, 0.5, 0.5)
	for _, r := range results {
		if r.FusedScore < 0 || r.FusedScore > 1 {
			t.Errorf("fused score %v out of [0,1]", r.FusedScore)
		}
		if r.LexicalScore < 0 || r.LexicalScore > 1 {
			t.Errorf("lexical score %v out of [0,1]", r.LexicalScore)
		}
		if r.SemanticScore < 0 || r.SemanticScore > 1 {
			t.Errorf("semantic score %v out of [0,1]", r.SemanticScore)
		}
	}
}

func TestRankAnalysesSemanticWinsOverWeakLexical(t *testing.T) {
	now := time.Now()
	// "Compliance" matches the query vector exactly but has a weaker
	// lexical rank than "Performance".
	rows := []scoredAnalysis{
		row("Performance", 5, 0.6, models.Vector{0, 1}, now),
		row("Compliance", 5, 0.3, models.Vector{1, 0}, now),
	}

	results := rankAnalyses(rows, models.Vector{1, 0}, 0.5, 0.5)
	if results[0].Analysis.Category != "Compliance" {
		t.Errorf("top result = %s, want Compliance", results[0].Analysis.Category)
	}
}

func TestRankAnalysesSeverityBreaksTies(t *testing.T) {
	now := time.Now()
	rows := []scoredAnalysis{
		row("Low", 2, 0.5, models.Vector{1, 0}, now),
		row("High", 9, 0.5, models.Vector{1, 0}, now),
	}

	results := rankAnalyses(rows, models.Vector{1, 0}, 0.5, 0.5)
	if results[0].Analysis.Severity != 9 {
		t.Errorf("top severity = %d, want 9", results[0].Analysis.Severity)
	}
}

func TestRankAnalysesRecencyBreaksRemainingTies(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	rows := []scoredAnalysis{
		row("Older", 5, 0.5, models.Vector{1, 0}, older),
		row("Newer", 5, 0.5, models.Vector{1, 0}, newer),
	}

	results := rankAnalyses(rows, models.Vector{1, 0}, 0.5, 0.5)
	if results[0].Analysis.Category != "Newer" {
		t.Errorf("top result = %s, want Newer", results[0].Analysis.Category)
	}
}

func TestRankAnalysesLexicalOnlyRows(t *testing.T) {
	now := time.Now()
	// One row never got an embedding: its fused score is its lexical
	// score alone, so a strong lexical match still ranks first.
	rows := []scoredAnalysis{
		row("NoVector", 5, 0.9, nil, now),
		row("WithVector", 5, 0.1, models.Vector{0, 1}, now),
	}

	results := rankAnalyses(rows, models.Vector{1, 0}, 0.5, 0.5)
	if results[0].Analysis.Category != "NoVector" {
		t.Errorf("top result = %s, want NoVector", results[0].Analysis.Category)
	}
	if results[0].FusedScore != results[0].LexicalScore {
		t.Errorf("lexical-only fused = %v, want lexical score %v",
			results[0].FusedScore, results[0].LexicalScore)
	}
}

func TestRankAnalysesNoQueryEmbedding(t *testing.T) {
	now := time.Now()
	rows := []scoredAnalysis{
		row("A", 5, 0.2, models.Vector{1, 0}, now),
		row("B", 5, 0.8, models.Vector{0, 1}, now),
	}

	results := rankAnalyses(rows, nil, 0.5, 0.5)
	if results[0].Analysis.Category != "B" {
		t.Errorf("top result = %s, want B (higher lexical rank)", results[0].Analysis.Category)
	}
	for _, r := range results {
		if r.SemanticScore != 0 {
			t.Errorf("semantic score should be 0 without a query embedding, got %v", r.SemanticScore)
		}
	}
}

func TestRankAnalysesUniformLexRank(t *testing.T) {
	now := time.Now()

	// All candidates matched equally well: everyone gets full lexical
	// credit rather than zero from degenerate normalization.
	rows := []scoredAnalysis{
		row("A", 5, 0.4, nil, now),
		row("B", 5, 0.4, nil, now),
	}
	results := rankAnalyses(rows, nil, 0.5, 0.5)
	for _, r := range results {
		if r.LexicalScore != 1 {
			t.Errorf("uniform positive lex rank should normalize to 1, got %v", r.LexicalScore)
		}
	}

	// All candidates matched not at all: nobody gets credit.
	rows = []scoredAnalysis{
		row("A", 5, 0, nil, now),
		row("B", 5, 0, nil, now),
	}
	results = rankAnalyses(rows, nil, 0.5, 0.5)
	for _, r := range results {
		if r.LexicalScore != 0 {
			t.Errorf("uniform zero lex rank should normalize to 0, got %v", r.LexicalScore)
		}
	}
}

func TestRankAnalysesDeterministic(t *testing.T) {
	now := time.Now()
	rows := []scoredAnalysis{
		row("A", 5, 0.3, models.Vector{1, 0}, now),
		row("B", 7, 0.6, models.Vector{0.5, 0.5}, now),
		row("C", 2, 0.9, nil, now),
	}

	first := rankAnalyses(rows, models.Vector{1, 0}, 0.7, 0.3)
	second := rankAnalyses(rows, models.Vector{1, 0}, 0.7, 0.3)

	for i := range first {
		if first[i].Analysis.Category != second[i].Analysis.Category {
			t.Fatalf("ordering not deterministic at index %d: %s vs %s",
				i, first[i].Analysis.Category, second[i].Analysis.Category)
		}
	}
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// embeddingClient is the slice of the LLM surface hybrid search needs.
type embeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) (models.Vector, error)
}

// SearchService ranks a project's analyses against a free-text query by
// fusing Postgres full-text rank with embedding cosine similarity.
type SearchService struct {
	db        *gorm.DB
	embedder  embeddingClient
	lexWeight float64
	semWeight float64
	limit     int
}

func NewSearchService(db *gorm.DB, embedder embeddingClient, cfg *config.Config) *SearchService {
	return &SearchService{
		db:        db,
		embedder:  embedder,
		lexWeight: cfg.Search.LexicalWeight,
		semWeight: cfg.Search.SemanticWeight,
		limit:     cfg.Search.ResultLimit,
	}
}

// SearchResult is one ranked hit with its score breakdown.
type SearchResult struct {
	Analysis      models.Analysis `json:"analysis"`
	LexicalScore  float64         `json:"lexical_score"`
	SemanticScore float64         `json:"semantic_score"`
	FusedScore    float64         `json:"fused_score"`
}

// scoredAnalysis carries the raw ts_rank alongside the row.
type scoredAnalysis struct {
	models.Analysis
	LexRank float64 `gorm:"column:lex_rank"`
}

// Search runs a hybrid search over one project's analyses, optionally
// narrowed to a single blueprint. A blank query matches nothing.
func (s *SearchService) Search(ctx context.Context, projectID uuid.UUID, blueprintID *uuid.UUID, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}

	rows, err := s.fetchCandidates(projectID, blueprintID, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []SearchResult{}, nil
	}

	// Query embedding is best effort: without it every row ranks on its
	// lexical score alone.
	var queryEmbedding models.Vector
	if embedding, err := s.embedder.GenerateEmbedding(ctx, query); err != nil {
		logger.WithContext(map[string]interface{}{
			"component":  "search_service",
			"project_id": projectID.String(),
			"error":      err.Error(),
		}).Warn("Query embedding failed, ranking lexically only")
	} else {
		queryEmbedding = embedding
	}

	ranked := rankAnalyses(rows, queryEmbedding, s.lexWeight, s.semWeight)
	if len(ranked) > s.limit {
		ranked = ranked[:s.limit]
	}
	return ranked, nil
}

func (s *SearchService) fetchCandidates(projectID uuid.UUID, blueprintID *uuid.UUID, query string) ([]scoredAnalysis, error) {
	sql := `SELECT a.*,
	               ts_rank(to_tsvector('english', a.category || ' ' || a.finding),
	                       plainto_tsquery('english', ?)) AS lex_rank
	        FROM analyses a
	        JOIN blueprints b ON b.id = a.blueprint_id
	        WHERE b.project_id = ?`
	args := []interface{}{query, projectID}

	if blueprintID != nil {
		sql += " AND a.blueprint_id = ?"
		args = append(args, *blueprintID)
	}

	var rows []scoredAnalysis
	if err := s.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	return rows, nil
}

// rankAnalyses fuses lexical and semantic scores and orders the results.
// Lexical ts_rank values are min-max normalized across the candidate set;
// cosine similarity is shifted from [-1,1] into [0,1]. Rows without a stored
// embedding, or with no query embedding available, fall back to their
// lexical score as the fused score.
func rankAnalyses(rows []scoredAnalysis, queryEmbedding models.Vector, lexWeight, semWeight float64) []SearchResult {
	if len(rows) == 0 {
		return []SearchResult{}
	}

	minLex, maxLex := rows[0].LexRank, rows[0].LexRank
	for _, row := range rows[1:] {
		if row.LexRank < minLex {
			minLex = row.LexRank
		}
		if row.LexRank > maxLex {
			maxLex = row.LexRank
		}
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		var lex float64
		if maxLex > minLex {
			lex = (row.LexRank - minLex) / (maxLex - minLex)
		} else if row.LexRank > 0 {
			lex = 1
		}

		var sem, fused float64
		if len(queryEmbedding) > 0 && len(row.Embedding) > 0 {
			sem = (cosineSimilarity(row.Embedding, queryEmbedding) + 1) / 2
			if sem < 0 {
				sem = 0
			} else if sem > 1 {
				sem = 1
			}
			fused = lexWeight*lex + semWeight*sem
		} else {
			fused = lex
		}

		results = append(results, SearchResult{
			Analysis:      row.Analysis,
			LexicalScore:  lex,
			SemanticScore: sem,
			FusedScore:    fused,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		if results[i].Analysis.Severity != results[j].Analysis.Severity {
			return results[i].Analysis.Severity > results[j].Analysis.Severity
		}
		return results[i].Analysis.CreatedAt.After(results[j].Analysis.CreatedAt)
	})

	return results
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Fork     ForkConfig
	Search   SearchConfig
}

type ServerConfig struct {
	Port       string
	CORSOrigin string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type LLMConfig struct {
	BaseURL        string
	Model          string
	EmbedModel     string
	EmbeddingDim   int
	TimeoutSeconds int
}

type ForkConfig struct {
	ServiceID      string
	CLIPath        string
	TimeoutSeconds int
}

type SearchConfig struct {
	LexicalWeight  float64
	SemanticWeight float64
	ResultLimit    int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:       getEnv("PORT", "8080"),
			CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "archgen"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:          getEnv("OLLAMA_MODEL", "llama3"),
			EmbedModel:     getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
			EmbeddingDim:   getEnvAsInt("EMBEDDING_DIM", 768),
			TimeoutSeconds: getEnvAsInt("OLLAMA_TIMEOUT_SECONDS", 120),
		},
		Fork: ForkConfig{
			ServiceID:      os.Getenv("TIGER_SERVICE_ID"),
			CLIPath:        os.Getenv("TIGER_CLI_PATH"),
			TimeoutSeconds: getEnvAsInt("TIGER_TIMEOUT_SECONDS", 60),
		},
		Search: SearchConfig{
			LexicalWeight:  getEnvAsFloat("SEARCH_LEXICAL_WEIGHT", 0.5),
			SemanticWeight: getEnvAsFloat("SEARCH_SEMANTIC_WEIGHT", 0.5),
			ResultLimit:    getEnvAsInt("SEARCH_RESULT_LIMIT", 15),
		},
	}

	cfg.Search.normalizeWeights()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	if c.LLM.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	return nil
}

// DSN returns the canonical database connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// ForkDSN returns the connection string for a named fork of the canonical
// database. The fork provider exposes forks as "<dbname>:<fork>" databases.
func (d DatabaseConfig) ForkDSN(forkName string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s:%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, forkName, d.Port, d.SSLMode)
}

// normalizeWeights rescales the fusion weights so they sum to 1, keeping the
// fused score inside [0,1]. Two zero weights fall back to equal weighting.
func (s *SearchConfig) normalizeWeights() {
	if s.LexicalWeight < 0 {
		s.LexicalWeight = 0
	}
	if s.SemanticWeight < 0 {
		s.SemanticWeight = 0
	}
	total := s.LexicalWeight + s.SemanticWeight
	if total == 0 {
		s.LexicalWeight = 0.5
		s.SemanticWeight = 0.5
		return
	}
	s.LexicalWeight /= total
	s.SemanticWeight /= total
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

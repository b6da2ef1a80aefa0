// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

type ModelConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type Config struct {
	ListenAddr  string
	PostgresDSN string
	Neo4jURI    string
	Neo4jUser   string
	Neo4jPass   string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	Embeddings ModelConfig
	LLM        ModelConfig

	ChunkSize           int
	ChunkOverlap        int
	TopK                int
	ConfidenceThreshold float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/freight-assistant?sslmode=disable"),
		Neo4jURI:    getEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:   getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass:   getEnv("NEO4J_PASSWORD", "password"),

		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		Embeddings: ModelConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 1536),
		},
		LLM: ModelConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		},

		ChunkSize:           getEnvInt("CHUNK_SIZE", 512),
		ChunkOverlap:        getEnvInt("CHUNK_OVERLAP", 64),
		TopK:                getEnvInt("TOP_K_RESULTS", 5),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.45),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

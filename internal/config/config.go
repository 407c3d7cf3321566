package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// OpenSearch connection
	OpenSearchURL      string
	OpenSearchUser     string
	OpenSearchPassword string
	IndexName          string

	// Embedding provider
	OpenAIAPIKey       string
	EmbeddingBaseURL   string
	EmbeddingModel     string
	EmbeddingDimension int
	EmbedConcurrency   int
	EmbedTimeout       time.Duration

	// Document loading
	PDFLoader string

	// Chunking
	MaxChunkChars     int
	ChunkOverlapChars int
	MaxTableChars     int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Search tuning
	SearchLexicalBoost float64
	SearchVectorBoost  float64
	SearchMinScore     float64
	SearchTopK         int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PAPERIDX_API_KEY"),

		OpenSearchURL:      envOr("OPENSEARCH_URL", "http://localhost:9200"),
		OpenSearchUser:     os.Getenv("OPENSEARCH_USER"),
		OpenSearchPassword: os.Getenv("OPENSEARCH_PASSWORD"),
		IndexName:          envOr("OPENSEARCH_INDEX", "papers-index"),

		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		EmbeddingBaseURL:   envOr("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingModel:     envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension: envInt("EMBEDDING_DIMENSION", 1536),
		EmbedConcurrency:   envInt("EMBED_CONCURRENCY", 8),
		EmbedTimeout:       envDuration("EMBED_TIMEOUT", 30*time.Second),

		PDFLoader: envOr("PDF_LOADER", "pdflib"),

		MaxChunkChars:     envInt("MAX_CHUNK_CHARS", 2000),
		ChunkOverlapChars: envInt("CHUNK_OVERLAP_CHARS", 200),
		MaxTableChars:     envInt("MAX_TABLE_CHARS", 8000),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		SearchLexicalBoost: envFloat("SEARCH_LEXICAL_BOOST", 0.4),
		SearchVectorBoost:  envFloat("SEARCH_VECTOR_BOOST", 0.6),
		SearchMinScore:     envFloat("SEARCH_MIN_SCORE", 0),
		SearchTopK:         envInt("SEARCH_TOP_K", 10),
	}

	if cfg.EmbeddingDimension <= 0 {
		cfg.EmbeddingDimension = 1536
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = 8
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 2000
	}
	if cfg.ChunkOverlapChars < 0 || cfg.ChunkOverlapChars >= cfg.MaxChunkChars {
		cfg.ChunkOverlapChars = cfg.MaxChunkChars / 10
	}
	if cfg.MaxTableChars <= 0 {
		cfg.MaxTableChars = 8000
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = 10
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PAPERIDX_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.OpenSearchURL == "" {
		return fmt.Errorf("OPENSEARCH_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendPGVector = "pgvector"
	BackendQdrant   = "qdrant"
	BackendMemory   = "memory"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var providerDefaults = map[string]struct {
	model              string
	embeddingModel     string
	embeddingDimension int
}{
	ProviderOpenAI: {"gpt-3.5-turbo", "text-embedding-3-small", 1536},
	ProviderGemini: {"gemini-1.5-flash", "text-embedding-004", 768},
}

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	// S3 archive of raw uploads, disabled when S3Endpoint is empty
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// LLM
	LLMProvider        string
	LLMAPIKey          string
	LLMBaseURL         string
	LLMModel           string
	LLMTemperature     float64 // 0.5 unless overridden
	EmbeddingModel     string
	EmbeddingDimension int

	// Vector index
	VectorIndexBackend string
	VectorIndexURL     string
	VectorIndexAPIKey  string
	VectorIndexName    string

	// Chunking and retrieval
	ChunkSize     int
	ChunkOverlap  int
	RetrievalTopK int

	// Upload limits
	MaxFileSize        int64
	AllowedUploadTypes []string
}

// ConfigurationError lists the required settings that are absent.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))
	defaults := providerDefaults[provider]

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "data/docqa.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "documents"),
		S3UseSSL:           getEnv("S3_USE_SSL", "false") == "true",
		LLMProvider:        provider,
		LLMAPIKey:          getEnv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMModel:           getEnv("LLM_MODEL", defaults.model),
		LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.5),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", defaults.embeddingModel),
		EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", defaults.embeddingDimension),
		VectorIndexBackend: strings.ToLower(getEnv("VECTOR_INDEX_BACKEND", BackendPGVector)),
		VectorIndexURL:     getEnv("VECTOR_INDEX_URL", ""),
		VectorIndexAPIKey:  getEnv("VECTOR_INDEX_API_KEY", ""),
		VectorIndexName:    getEnv("VECTOR_INDEX_NAME", ""),
		ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 200),
		RetrievalTopK:      getEnvAsInt("RETRIEVAL_TOP_K", 4),
		MaxFileSize:        int64(getEnvAsInt("MAX_FILE_SIZE", 10*1024*1024)),
		AllowedUploadTypes: getEnvAsList("ALLOWED_UPLOAD_TYPES", []string{"application/pdf"}),
	}

	var missing []string
	if cfg.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if cfg.VectorIndexAPIKey == "" {
		missing = append(missing, "VECTOR_INDEX_API_KEY")
	}
	if cfg.VectorIndexName == "" {
		missing = append(missing, "VECTOR_INDEX_NAME")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.VectorIndexBackend {
	case BackendPGVector, BackendQdrant:
		if c.VectorIndexURL == "" {
			return fmt.Errorf("VECTOR_INDEX_URL is required for the %s backend", c.VectorIndexBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown VECTOR_INDEX_BACKEND %q", c.VectorIndexBackend)
	}

	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive")
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive")
	}

	return nil
}

// ArchiveEnabled reports whether raw uploads are stored in S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Endpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

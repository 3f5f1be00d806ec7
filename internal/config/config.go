package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the OncoPilot server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Analysis AnalysisConfig
	RAG      RAGConfig
	LLM      LLMConfig
	Vector   VectorConfig
	Trials   TrialsConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AnalysisConfig tunes the analysis job orchestrator.
type AnalysisConfig struct {
	Workers      int
	QueueDepth   int
	MaxRetries   int           // additional attempts beyond the first
	StepTimeout  time.Duration // per-attempt timeout for one step call
	JobRetention time.Duration // terminal jobs older than this are reaped
}

// RAGConfig tunes retrieval-augmented knowledge lookup.
type RAGConfig struct {
	Enabled             bool
	TopK                int
	SimilarityThreshold float64
}

type LLMConfig struct {
	UseMock bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type VectorConfig struct {
	UseMock    bool
	BaseURL    string
	Collection string
	Timeout    time.Duration
}

type TrialsConfig struct {
	UseMock    bool
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("ONCOPILOT_PORT", 8080),
			Env:  envString("ONCOPILOT_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Analysis: AnalysisConfig{
			Workers:      envInt("ANALYSIS_WORKERS", 4),
			QueueDepth:   envInt("ANALYSIS_QUEUE_DEPTH", 64),
			MaxRetries:   envInt("MAX_AGENT_RETRIES", 3),
			StepTimeout:  envDurationSecs("AGENT_TIMEOUT_SECONDS", 30*time.Second),
			JobRetention: envDuration("JOB_RETENTION", 24*time.Hour),
		},
		RAG: RAGConfig{
			Enabled:             envBool("ENABLE_RAG", true),
			TopK:                envInt("RAG_TOP_K", 5),
			SimilarityThreshold: envFloat("RAG_SIMILARITY_THRESHOLD", 0.7),
		},
		LLM: LLMConfig{
			UseMock: envBool("USE_MOCK_LLM", false),
			BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   envString("LLM_MODEL", "gpt-4o-mini"),
			Timeout: envDurationSecs("LLM_TIMEOUT_SECONDS", 60*time.Second),
		},
		Vector: VectorConfig{
			UseMock:    envBool("USE_MOCK_VECTOR_STORE", false),
			BaseURL:    os.Getenv("VECTOR_STORE_URL"),
			Collection: envString("VECTOR_STORE_COLLECTION", "oncology-knowledge"),
			Timeout:    envDurationSecs("VECTOR_STORE_TIMEOUT_SECONDS", 15*time.Second),
		},
		Trials: TrialsConfig{
			UseMock:    envBool("USE_MOCK_TRIALS_API", false),
			BaseURL:    envString("CTGOV_BASE_URL", "https://clinicaltrials.gov"),
			MaxResults: envInt("CTGOV_MAX_RESULTS", 10),
			Timeout:    envDurationSecs("CTGOV_TIMEOUT_SECONDS", 20*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("ANALYSIS_WORKERS must be at least 1, got %d", c.Analysis.Workers)
	}
	if c.Analysis.MaxRetries < 0 {
		return fmt.Errorf("MAX_AGENT_RETRIES must not be negative, got %d", c.Analysis.MaxRetries)
	}

	if c.RAG.TopK < 1 {
		return fmt.Errorf("RAG_TOP_K must be at least 1, got %d", c.RAG.TopK)
	}
	if c.RAG.SimilarityThreshold < 0 || c.RAG.SimilarityThreshold > 1 {
		return fmt.Errorf("RAG_SIMILARITY_THRESHOLD must be in [0,1], got %v", c.RAG.SimilarityThreshold)
	}

	if !c.LLM.UseMock && c.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when USE_MOCK_LLM is false")
	}
	if c.RAG.Enabled && !c.Vector.UseMock && c.Vector.BaseURL == "" {
		return fmt.Errorf("VECTOR_STORE_URL is required when ENABLE_RAG is true and USE_MOCK_VECTOR_STORE is false")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

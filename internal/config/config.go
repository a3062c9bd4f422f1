package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	LogConfig     logger.LogConfig `json:"log_config"`
	DB            DBConfig         `json:"db"`
	AI            AIConfig         `json:"ai"`
	Search        SearchConfig     `json:"search"`
	Memory        MemoryConfig     `json:"memory"`
	Jobs          JobsConfig       `json:"jobs"`
}

type DBConfig struct {
	DSN           string `json:"dsn"`
	MigrationsDir string `json:"migrations_dir"`
}

type AIConfig struct {
	Provider      string                 `json:"provider"`
	Model         string                 `json:"model"`
	EmbedModel    string                 `json:"embed_model"`
	Dimension     int                    `json:"dimension"`
	Timeout       int                    `json:"timeout"`
	MaxInputChars int                    `json:"max_input_chars"`
	Data          map[string]interface{} `json:"data"`
}

type SearchConfig struct {
	// Alpha weights lexical vs semantic scores in the merge; 1.0 is
	// lexical-only, 0.0 semantic-only.
	Alpha             float64 `json:"alpha"`
	TopK              int     `json:"top_k"`
	FetchK            int     `json:"fetch_k"`
	MaxCharsPerSource int     `json:"max_chars_per_source"`
	TimeoutSeconds    int     `json:"timeout"`
}

type MemoryConfig struct {
	Capacity          int `json:"capacity"`
	SessionTTLMinutes int `json:"session_ttl_minutes"`
	MaxSessions       int `json:"max_sessions"`
}

type JobsConfig struct {
	EmbeddingBackfillSpec string `json:"embedding_backfill_spec"`
	EmbeddingBatchSize    int    `json:"embedding_batch_size"`
	CitationCleanupSpec   string `json:"citation_cleanup_spec"`
	CitationRetentionDays int    `json:"citation_retention_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	// Alpha is pre-seeded so an explicit 0 (semantic-only) survives
	// decoding.
	cfg.Search.Alpha = 0.5
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.DB.MigrationsDir == "" {
		cfg.DB.MigrationsDir = "migrations"
	}
	if cfg.AI.Dimension == 0 {
		cfg.AI.Dimension = 384
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 8000
	}
	if cfg.Search.Alpha < 0 || cfg.Search.Alpha > 1 {
		return nil, fmt.Errorf("search.alpha must be in [0,1]")
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 10
	}
	if cfg.Search.FetchK == 0 {
		cfg.Search.FetchK = 2 * cfg.Search.TopK
	}
	if cfg.Search.MaxCharsPerSource == 0 {
		cfg.Search.MaxCharsPerSource = 500
	}
	if cfg.Search.TimeoutSeconds == 0 {
		cfg.Search.TimeoutSeconds = 10
	}
	if cfg.Memory.Capacity == 0 {
		cfg.Memory.Capacity = 10
	}
	if cfg.Memory.SessionTTLMinutes == 0 {
		cfg.Memory.SessionTTLMinutes = 120
	}
	if cfg.Memory.MaxSessions == 0 {
		cfg.Memory.MaxSessions = 4096
	}
	if cfg.Jobs.EmbeddingBatchSize == 0 {
		cfg.Jobs.EmbeddingBatchSize = 50
	}
	if cfg.Jobs.CitationRetentionDays == 0 {
		cfg.Jobs.CitationRetentionDays = 180
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/schemesetu/matchengine/internal/ranking"
	"github.com/schemesetu/matchengine/internal/scoring"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Events    EventsConfig    `yaml:"events"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Mapping   MappingConfig   `yaml:"mapping"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Freshness FreshnessConfig `yaml:"freshness"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	MetricsPort  int    `yaml:"metrics_port"`
	AdminToken   string `yaml:"admin_token"`
	RateLimitRPM int    `yaml:"rate_limit_rpm"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type EmbeddingConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
	Token string `yaml:"token"`
}

type MappingConfig struct {
	Path string `yaml:"path"`
}

type ScoringConfig struct {
	RequiredWeight float64 `yaml:"required_weight"`
	OptionalWeight float64 `yaml:"optional_weight"`
	NeutralValue   float64 `yaml:"neutral_value"`
}

type FreshnessConfig struct {
	HalfLifeDays float64 `yaml:"half_life_days"`
	NeutralValue float64 `yaml:"neutral_value"`
}

type RankingConfig struct {
	RulesWeight     float64 `yaml:"rules_weight"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
	FreshnessWeight float64 `yaml:"freshness_weight"`
	DefaultTopK     int     `yaml:"default_top_k"`
	MaxCandidates   int     `yaml:"max_candidates"`
	PoolSize        int     `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RuleWeights builds the scoring weight set from config.
func (c *Config) RuleWeights() scoring.RuleWeights {
	return scoring.RuleWeights{
		Required: c.Scoring.RequiredWeight,
		Optional: c.Scoring.OptionalWeight,
	}
}

// BlendWeights builds the ranking weight set from config.
func (c *Config) BlendWeights() ranking.BlendWeights {
	return ranking.BlendWeights{
		Rules:     c.Ranking.RulesWeight,
		Semantic:  c.Ranking.SemanticWeight,
		Freshness: c.Ranking.FreshnessWeight,
	}
}

// Load reads the config file (optional), applies environment
// overrides, and validates the result. Configuration problems are
// programmer/operator errors and abort startup before any scoring.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8700,
			MetricsPort:  8701,
			RateLimitRPM: 120,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Embedding: EmbeddingConfig{
			Host:  "http://localhost:11434/v1",
			Model: "nomic-embed-text",
		},
		Scoring: ScoringConfig{
			RequiredWeight: 0.75,
			OptionalWeight: 0.25,
			NeutralValue:   0.5,
		},
		Freshness: FreshnessConfig{
			HalfLifeDays: 730,
			NeutralValue: 0.5,
		},
		Ranking: RankingConfig{
			RulesWeight:     0.5,
			SemanticWeight:  0.3,
			FreshnessWeight: 0.2,
			DefaultTopK:     10,
			MaxCandidates:   50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that would make scoring meaningless.
func (c *Config) Validate() error {
	if err := c.RuleWeights().Validate(); err != nil {
		return err
	}
	if err := c.BlendWeights().Validate(); err != nil {
		return err
	}
	if c.Scoring.NeutralValue < 0 || c.Scoring.NeutralValue > 1 {
		return fmt.Errorf("neutral_value %.4f outside [0,1]", c.Scoring.NeutralValue)
	}
	if c.Freshness.NeutralValue < 0 || c.Freshness.NeutralValue > 1 {
		return fmt.Errorf("freshness neutral_value %.4f outside [0,1]", c.Freshness.NeutralValue)
	}
	if c.Freshness.HalfLifeDays <= 0 {
		return fmt.Errorf("freshness half_life_days must be positive, got %.2f", c.Freshness.HalfLifeDays)
	}
	if c.Ranking.DefaultTopK <= 0 {
		return fmt.Errorf("default_top_k must be positive, got %d", c.Ranking.DefaultTopK)
	}
	if c.Ranking.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive, got %d", c.Ranking.MaxCandidates)
	}
	if c.Ranking.PoolSize < 0 {
		return fmt.Errorf("pool_size must not be negative, got %d", c.Ranking.PoolSize)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MATCHENGINE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("MATCHENGINE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("MATCHENGINE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("MATCHENGINE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MATCHENGINE_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("MATCHENGINE_EVENTS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Events.Enabled = b
		}
	}
	if v := os.Getenv("MATCHENGINE_EMBEDDING_HOST"); v != "" {
		cfg.Embedding.Host = v
	}
	if v := os.Getenv("MATCHENGINE_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("MATCHENGINE_EMBEDDING_TOKEN"); v != "" {
		cfg.Embedding.Token = v
	}
	if v := os.Getenv("MATCHENGINE_MAPPING_PATH"); v != "" {
		cfg.Mapping.Path = v
	}
	if v := os.Getenv("MATCHENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

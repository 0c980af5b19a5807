package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Agent roles recognized in the agents section of the config file.
const (
	RoleWriter   = "doc_writer"
	RoleReviewer = "doc_reviewer"
)

// AgentConfig holds the model rotation for one agent role. An empty model
// name means the service default.
type AgentConfig struct {
	Models []string `mapstructure:"models"`
}

type OpenCodeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PipelineConfig struct {
	Candidates   int `mapstructure:"candidates"`
	AlignRounds  int `mapstructure:"align_rounds"`
	RefineFactor int `mapstructure:"refine_factor"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type LimitsConfig struct {
	// MaxPromptTokens triggers a warning on oversized prompts. Zero disables it.
	MaxPromptTokens int `mapstructure:"max_prompt_tokens"`
}

type Config struct {
	Agents   map[string]AgentConfig `mapstructure:"agents"`
	OpenCode OpenCodeConfig         `mapstructure:"opencode"`
	Pipeline PipelineConfig         `mapstructure:"pipeline"`
	Store    StoreConfig            `mapstructure:"store"`
	Limits   LimitsConfig           `mapstructure:"limits"`
}

// WriterModels returns the configured writer rotation.
func (c Config) WriterModels() []string { return c.Agents[RoleWriter].Models }

// ReviewerModels returns the configured reviewer rotation.
func (c Config) ReviewerModels() []string { return c.Agents[RoleReviewer].Models }

// Load reads agents_config.yaml from the working directory, or the file at
// path when given. A missing default file is not an error; a missing explicit
// file is. Unconfigured agent roles fall back to a single service-default
// model with a warning.
func Load(path string, log *slog.Logger) (Config, error) {
	v := viper.New()
	v.SetDefault("opencode.base_url", "http://localhost:3000")
	v.SetDefault("opencode.timeout", 10*time.Minute)
	v.SetDefault("pipeline.candidates", 5)
	v.SetDefault("pipeline.align_rounds", 5)
	v.SetDefault("pipeline.refine_factor", 5)
	v.SetDefault("store.path", "./data/docsmith.db")
	v.SetDefault("limits.max_prompt_tokens", 0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("agents_config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
			log.Warn("agents_config.yaml not found, using defaults")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Agents == nil {
		cfg.Agents = make(map[string]AgentConfig)
	}
	for _, role := range []string{RoleWriter, RoleReviewer} {
		agent := cfg.Agents[role]
		if len(agent.Models) == 0 {
			log.Warn("no models configured for agent, using service default", "agent", role)
			agent.Models = []string{""}
			cfg.Agents[role] = agent
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Pipeline.Candidates < 1 {
		return fmt.Errorf("pipeline.candidates must be at least 1, got %d", c.Pipeline.Candidates)
	}
	if c.Pipeline.AlignRounds < 0 {
		return fmt.Errorf("pipeline.align_rounds must not be negative, got %d", c.Pipeline.AlignRounds)
	}
	if c.Pipeline.RefineFactor < 1 {
		return fmt.Errorf("pipeline.refine_factor must be at least 1, got %d", c.Pipeline.RefineFactor)
	}
	if c.Limits.MaxPromptTokens < 0 {
		return fmt.Errorf("limits.max_prompt_tokens must not be negative, got %d", c.Limits.MaxPromptTokens)
	}
	if c.OpenCode.Timeout <= 0 {
		return fmt.Errorf("opencode.timeout must be positive, got %s", c.OpenCode.Timeout)
	}
	return nil
}

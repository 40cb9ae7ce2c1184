// Package config loads application configuration from a YAML file with
// environment variable overrides for deployment-specific values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs    int    `yaml:"write_timeout_secs"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

// ReadTimeout returns the listener read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSecs) * time.Second
}

// WriteTimeout returns the listener write timeout.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSecs) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSecs) * time.Second
}

// OllamaConfig configures the language-model backend.
type OllamaConfig struct {
	Host               string  `yaml:"host"`
	Model              string  `yaml:"model"`
	TimeoutSecs        int     `yaml:"timeout_secs"`
	MaxAttempts        int     `yaml:"max_attempts"`
	RetryPauseMS       int     `yaml:"retry_pause_ms"`
	OverallTimeoutSecs int     `yaml:"overall_timeout_secs"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
}

// Timeout returns the per-attempt request timeout.
func (o OllamaConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// RetryPause returns the pause between transient-failure retries.
func (o OllamaConfig) RetryPause() time.Duration {
	return time.Duration(o.RetryPauseMS) * time.Millisecond
}

// OverallTimeout returns the deadline bounding all attempts together.
func (o OllamaConfig) OverallTimeout() time.Duration {
	return time.Duration(o.OverallTimeoutSecs) * time.Second
}

// KnowledgeConfig configures the FAQ corpus source.
type KnowledgeConfig struct {
	Path  string `yaml:"path"`
	Watch *bool  `yaml:"watch"`
}

// WatchEnabled reports whether the knowledge base file should be watched for
// changes; unset defaults to enabled.
func (k KnowledgeConfig) WatchEnabled() bool {
	return k.Watch == nil || *k.Watch
}

// RetrievalConfig configures context selection.
type RetrievalConfig struct {
	TopK       int `yaml:"top_k"`
	MaxContext int `yaml:"max_context"`
}

// DatabaseConfig configures the history store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Database  DatabaseConfig  `yaml:"database"`
	LogLevel  string          `yaml:"log_level"`
}

// Load reads the config at path. A missing file yields defaults; environment
// overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSecs == 0 {
		cfg.Server.ReadTimeoutSecs = 15
	}
	if cfg.Server.WriteTimeoutSecs == 0 {
		cfg.Server.WriteTimeoutSecs = 120
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = 5
	}
	if cfg.Ollama.Host == "" {
		cfg.Ollama.Host = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "mistral"
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = 30
	}
	if cfg.Ollama.MaxAttempts == 0 {
		cfg.Ollama.MaxAttempts = 3
	}
	if cfg.Ollama.RetryPauseMS == 0 {
		cfg.Ollama.RetryPauseMS = 1000
	}
	if cfg.Ollama.Temperature == 0 {
		cfg.Ollama.Temperature = 0.7
	}
	if cfg.Ollama.MaxTokens == 0 {
		cfg.Ollama.MaxTokens = 300
	}
	if cfg.Knowledge.Path == "" {
		cfg.Knowledge.Path = "./data/knowledge_base.md"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MaxContext == 0 {
		cfg.Retrieval.MaxContext = 5
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/faqdesk.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// applyEnvOverrides lets deployment environments override the values that
// differ between hosts without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FAQDESK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("FAQDESK_KNOWLEDGE_PATH"); v != "" {
		cfg.Knowledge.Path = v
	}
	if v := os.Getenv("FAQDESK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FAQDESK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Package config provides unified configuration loading for the sheet insights service.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	LLM           LLMConfig           `yaml:"llm"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// StorageConfig holds artifact directory settings.
type StorageConfig struct {
	UploadDir    string `yaml:"upload_dir"`
	ResultsDir   string `yaml:"results_dir"`
	SheetTextDir string `yaml:"sheet_text_dir"`
}

// LLMConfig holds provider connection settings. The client is constructed once
// from these values and passed into the extraction components as a dependency.
type LLMConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Deployment string        `yaml:"deployment"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ExtractionConfig holds pipeline tuning knobs.
type ExtractionConfig struct {
	HeaderSearchWindow int           `yaml:"header_search_window"`
	DataStartRow       int           `yaml:"data_start_row"`
	MaxEmptyRows       int           `yaml:"max_empty_rows"`
	InsightWorkers     int           `yaml:"insight_workers"`
	InsightRetries     int           `yaml:"insight_retries"`
	InsightBaseDelay   time.Duration `yaml:"insight_base_delay"`
	InsightTimeout     time.Duration `yaml:"insight_timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8001,
			ReadTimeout:      5 * time.Minute,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   64 << 20,
		},
		Storage: StorageConfig{
			UploadDir:    "uploads",
			ResultsDir:   "results",
			SheetTextDir: "results/sheet_text",
		},
		LLM: LLMConfig{
			APIVersion: "2023-07-01-preview",
			Timeout:    60 * time.Second,
		},
		Extraction: ExtractionConfig{
			HeaderSearchWindow: 10,
			DataStartRow:       6,
			MaxEmptyRows:       3,
			InsightWorkers:     4,
			InsightRetries:     3,
			InsightBaseDelay:   2 * time.Second,
			InsightTimeout:     30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Extraction.HeaderSearchWindow < 1 {
		return fmt.Errorf("header_search_window must be positive")
	}

	if c.Extraction.DataStartRow < 1 {
		return fmt.Errorf("data_start_row must be positive")
	}

	if c.Extraction.InsightWorkers < 1 {
		return fmt.Errorf("insight_workers must be positive")
	}

	if c.Extraction.InsightRetries < 1 {
		return fmt.Errorf("insight_retries must be positive")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Provider credentials use the same variable names as the deployment scripts.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("AZURE_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}

	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); v != "" {
		cfg.LLM.Deployment = v
	}

	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Storage.UploadDir = v
	}

	if v := os.Getenv("RESULTS_DIR"); v != "" {
		cfg.Storage.ResultsDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// Package config loads daemon configuration from a YAML file with
// BIODATAMINE_-prefixed environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ProviderCredentials configures the authenticated-HTTP provider, one entry
// per host. Host is matched case-insensitively against the request URL.
type ProviderCredentials struct {
	Host     string            `mapstructure:"host" yaml:"host"`
	Token    string            `mapstructure:"token" yaml:"token"`
	Username string            `mapstructure:"username" yaml:"username"`
	Password string            `mapstructure:"password" yaml:"password"`
	Headers  map[string]string `mapstructure:"headers" yaml:"headers"`
}

// DatasetHostConfig configures the Kaggle-style archive-hosting provider.
type DatasetHostConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Username string `mapstructure:"username" yaml:"username"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
}

// SourceRepoConfig configures the GitHub-style source-repository provider.
type SourceRepoConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

type StoreConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

// PipelineConfig mirrors the configuration table in SPEC_FULL.md §6.
type PipelineConfig struct {
	DataRoot           string  `mapstructure:"data_root" yaml:"data_root"`
	MaxDownloadBytes   int64   `mapstructure:"max_download_bytes" yaml:"max_download_bytes"`
	MaxExtractedBytes  int64   `mapstructure:"max_extracted_bytes" yaml:"max_extracted_bytes"`
	MaxFilesPerDataset int     `mapstructure:"max_files_per_dataset" yaml:"max_files_per_dataset"`
	Enabled            bool    `mapstructure:"enabled" yaml:"enabled"`
	FileConcurrency    int     `mapstructure:"file_concurrency" yaml:"file_concurrency"`
	MongoBatchSize     int     `mapstructure:"mongo_batch_size" yaml:"mongo_batch_size"`
	BatchFlushSeconds  float64 `mapstructure:"batch_flush_seconds" yaml:"batch_flush_seconds"`
}

// ModalityConfig configures the modality classifier's prediction logger
// (daily-rotating JSONL, low-confidence predictions routed to a review
// queue), mirroring PredictionLogger's constructor in the original source.
type ModalityConfig struct {
	PredictionLogDir       string  `mapstructure:"prediction_log_dir" yaml:"prediction_log_dir"`
	LowConfidenceThreshold float64 `mapstructure:"low_confidence_threshold" yaml:"low_confidence_threshold"`
}

type Config struct {
	Port            string                `mapstructure:"port" yaml:"port"`
	Log             LogConfig             `mapstructure:"log" yaml:"log"`
	Store           StoreConfig           `mapstructure:"store" yaml:"store"`
	Pipeline        PipelineConfig        `mapstructure:"pipeline" yaml:"pipeline"`
	Modality        ModalityConfig        `mapstructure:"modality" yaml:"modality"`
	DatasetHost     DatasetHostConfig     `mapstructure:"dataset_host" yaml:"dataset_host"`
	SourceRepo      SourceRepoConfig      `mapstructure:"source_repo" yaml:"source_repo"`
	HTTPCredentials []ProviderCredentials `mapstructure:"http_credentials" yaml:"http_credentials"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()

	// Defaults match SPEC_FULL.md §6's configuration table.
	v.SetDefault("port", "8080")
	v.SetDefault("log.path", "biodatamine.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.dsn", "postgres://localhost:5432/biodatamine")
	v.SetDefault("pipeline.data_root", "/tmp/datascan")
	v.SetDefault("pipeline.max_download_bytes", int64(2<<30))  // 2 GB
	v.SetDefault("pipeline.max_extracted_bytes", int64(5<<30)) // 5 GB
	v.SetDefault("pipeline.max_files_per_dataset", 50000)
	v.SetDefault("pipeline.enabled", true)
	v.SetDefault("pipeline.file_concurrency", 32)
	v.SetDefault("pipeline.mongo_batch_size", 10)
	v.SetDefault("pipeline.batch_flush_seconds", 1.0)
	v.SetDefault("modality.prediction_log_dir", "/tmp/datascan/predictions")
	v.SetDefault("modality.low_confidence_threshold", 0.6)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("BIODATAMINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.DataRoot == "" {
		c.Pipeline.DataRoot = "/tmp/datascan"
	}
	if c.Pipeline.FileConcurrency <= 0 {
		c.Pipeline.FileConcurrency = 32
	}
	if c.Pipeline.MongoBatchSize <= 0 {
		c.Pipeline.MongoBatchSize = 10
	}
	if c.Pipeline.MaxFilesPerDataset <= 0 {
		c.Pipeline.MaxFilesPerDataset = 50000
	}
	if c.Modality.PredictionLogDir == "" {
		c.Modality.PredictionLogDir = "/tmp/datascan/predictions"
	}
	if c.Modality.LowConfidenceThreshold <= 0 {
		c.Modality.LowConfidenceThreshold = 0.6
	}
	return nil
}

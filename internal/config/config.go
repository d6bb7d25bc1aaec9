// Package config loads and persists the application's YAML configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds settings for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	Dims      int    `yaml:"dims"`
}

// OllamaEmbedderConfig holds settings for a local Ollama embedder.
type OllamaEmbedderConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Provider string                `yaml:"provider"`
	OpenAI   *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Ollama   *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
}

// ChunkerConfig configures how conversation text is split before embedding.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// ChatConfig configures the chat model used for analysis.
type ChatConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// ImportConfig configures the bulk importer.
type ImportConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// Config is the root configuration structure.
type Config struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Chat     ChatConfig     `yaml:"chat"`
	Import   ImportConfig   `yaml:"import"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./chat-archive.yaml first, then ~/.chat-archive/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*Config, string, error) {
	cwdPath := "chat-archive.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chat-archive", "config.yaml"), nil
}

func defaultConfig() *Config {
	return &Config{
		Embedder: EmbedderConfig{
			Provider: "openai",
			OpenAI: &OpenAIEmbedderConfig{
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "text-embedding-ada-002",
				Dims:      1536,
			},
		},
		Chunker: ChunkerConfig{ChunkSize: 1000, Overlap: 200},
		Chat:    ChatConfig{Model: "gpt-4-turbo-preview", APIKeyEnv: "OPENAI_API_KEY"},
		Import:  ImportConfig{BatchSize: 10},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 200
	}
	if cfg.Import.BatchSize == 0 {
		cfg.Import.BatchSize = 10
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4-turbo-preview"
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = "openai"
	}
	if cfg.Embedder.Provider == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-ada-002"
		}
		if cfg.Embedder.OpenAI.Dims == 0 {
			cfg.Embedder.OpenAI.Dims = 1536
		}
	}
	if cfg.Embedder.Provider == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = &OllamaEmbedderConfig{}
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "nomic-embed-text"
		}
	}
}

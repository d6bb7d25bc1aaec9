// Package cli implements the chat-archive CLI commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/analysis"
	"github.com/rcliao/chat-archive/internal/chunker"
	"github.com/rcliao/chat-archive/internal/config"
	"github.com/rcliao/chat-archive/internal/embedding"
	"github.com/rcliao/chat-archive/internal/llm"
	"github.com/rcliao/chat-archive/internal/store"
)

var (
	dbPath     string
	configPath string
	userFlag   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "chat-archive",
	Short: "Searchable archive for exported chat conversations",
	Long:  "Import chat export files, enrich them with summaries, tags, and embeddings, and search them by keyword or meaning. SQLite-backed, single binary.",
}

func init() {
	godotenv.Load()

	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CHAT_ARCHIVE_DB or ~/.chat-archive/archive.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./chat-archive.yaml or ~/.chat-archive/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (default: $CHAT_ARCHIVE_USER)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("CHAT_ARCHIVE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chat-archive", "archive.db")
}

func getUserID() string {
	if userFlag != "" {
		return userFlag
	}
	if env := os.Getenv("CHAT_ARCHIVE_USER"); env != "" {
		return env
	}
	exitErr("user", errors.New("user ID required (--user or $CHAT_ARCHIVE_USER)"))
	return ""
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func loadConfig() *config.Config {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			exitErr("load config", err)
		}
		return cfg
	}
	cfg, _, err := config.LoadDefault()
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedder.Provider {
	case "openai":
		oc := cfg.Embedder.OpenAI
		apiKey := os.Getenv(oc.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%s is not set", oc.APIKeyEnv)
		}
		return embedding.NewOpenAIEmbedder(oc.BaseURL, apiKey, oc.Model, oc.Dims), nil
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedder.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.Embedder.Provider)
	}
}

func newCompleter(cfg *config.Config) (llm.Completer, error) {
	apiKey := os.Getenv(cfg.Chat.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set", cfg.Chat.APIKeyEnv)
	}
	return llm.NewOpenAICompleter("", apiKey, cfg.Chat.Model), nil
}

// newPipeline wires the full analysis pipeline. Both model clients are
// required; commands that only read the store should not call this.
func newPipeline(s *store.SQLiteStore, cfg *config.Config) (*analysis.Pipeline, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	completer, err := newCompleter(cfg)
	if err != nil {
		return nil, err
	}
	return &analysis.Pipeline{
		Completer:     completer,
		Embedder:      embedder,
		Conversations: s,
		Embeddings:    s,
		ChunkOpts: chunker.Options{
			ChunkSize: cfg.Chunker.ChunkSize,
			Overlap:   cfg.Chunker.Overlap,
		},
	}, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

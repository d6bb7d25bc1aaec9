package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/analysis"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search conversations",
		Long:  "Search conversations by keyword or meaning. Short queries match the text index; longer queries are embedded and ranked by similarity.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")
	userID := getUserID()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	// Keyword queries never touch the embedder, so a missing API key only
	// blocks the semantic path.
	pipeline := &analysis.Pipeline{Conversations: s, Embeddings: s}
	if analysis.SemanticQuery(query) {
		embedder, err := newEmbedder(loadConfig())
		if err != nil {
			exitErr("configure search", err)
		}
		pipeline.Embedder = embedder
	}

	results, err := pipeline.Search(cmd.Context(), userID, query, limit)
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

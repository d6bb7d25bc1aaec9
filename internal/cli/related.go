package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/analysis"
)

func init() {
	cmd := &cobra.Command{
		Use:   "related [id]",
		Short: "Find conversations similar to one",
		Args:  cobra.ExactArgs(1),
		Run:   runRelated,
	}

	cmd.Flags().IntP("limit", "l", 5, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRelated(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	// Related lookups rank stored vectors against each other; no model client needed.
	pipeline := &analysis.Pipeline{Conversations: s, Embeddings: s}

	results, err := pipeline.Related(cmd.Context(), args[0], limit)
	if err != nil {
		exitErr("related", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

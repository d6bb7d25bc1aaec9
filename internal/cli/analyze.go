package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze [id]",
		Short: "Analyze a conversation",
		Long:  "Summarize a conversation, extract topics, entities, and insights, and regenerate its embeddings.",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze,
	}

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.Conversation(cmd.Context(), args[0])
	if err != nil {
		exitErr("analyze", err)
	}

	pipeline, err := newPipeline(s, loadConfig())
	if err != nil {
		exitErr("configure analysis", err)
	}

	enriched := pipeline.Process(cmd.Context(), c)

	b, _ := json.MarshalIndent(enriched, "", "  ")
	fmt.Println(string(b))
}

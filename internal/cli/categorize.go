package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categorize [id] [categories]",
		Short: "Replace a conversation's categories",
		Long:  "Replace a conversation's categories with a comma-separated list, or suggest categories with --suggest.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCategorize,
	}

	cmd.Flags().Bool("suggest", false, "Ask the chat model to suggest categories instead")

	RootCmd.AddCommand(cmd)
}

func runCategorize(cmd *cobra.Command, args []string) {
	suggest, _ := cmd.Flags().GetBool("suggest")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var categories []string
	if suggest {
		c, err := s.Conversation(cmd.Context(), args[0])
		if err != nil {
			exitErr("categorize", err)
		}
		pipeline, err := newPipeline(s, loadConfig())
		if err != nil {
			exitErr("configure analysis", err)
		}
		categories = pipeline.SuggestCategories(cmd.Context(), c)
	} else {
		for _, c := range strings.Split(strings.Join(args[1:], ","), ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				categories = append(categories, c)
			}
		}
	}
	if categories == nil {
		categories = []string{}
	}

	updated, err := s.UpdateConversation(cmd.Context(), args[0], store.ConversationUpdate{Categories: &categories})
	if err != nil {
		exitErr("categorize", err)
	}

	b, _ := json.Marshal(updated.Categories)
	fmt.Printf(`{"ok":true,"id":%q,"categories":%s}`+"\n", updated.ID, b)
}

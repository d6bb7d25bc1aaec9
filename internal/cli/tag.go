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
		Use:   "tag [id] [tags]",
		Short: "Replace a conversation's tags",
		Long:  "Replace a conversation's tags with a comma-separated list. An empty list clears them.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runTag,
	}

	RootCmd.AddCommand(cmd)
}

func runTag(cmd *cobra.Command, args []string) {
	var tags []string
	if len(args) > 1 {
		for _, t := range strings.Split(strings.Join(args[1:], ","), ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tags = append(tags, t)
			}
		}
	}
	if tags == nil {
		tags = []string{}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	updated, err := s.UpdateConversation(cmd.Context(), args[0], store.ConversationUpdate{Tags: &tags})
	if err != nil {
		exitErr("tag", err)
	}

	b, _ := json.Marshal(updated.Tags)
	fmt.Printf(`{"ok":true,"id":%q,"tags":%s}`+"\n", updated.ID, b)
}

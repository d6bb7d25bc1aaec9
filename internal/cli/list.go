package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Run:   runList,
	}

	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Int("skip", 0, "Results to skip (pagination)")
	cmd.Flags().Bool("titles-only", false, "Only output id and title")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	tag, _ := cmd.Flags().GetString("tag")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	skip, _ := cmd.Flags().GetInt("skip")
	titlesOnly, _ := cmd.Flags().GetBool("titles-only")
	userID := getUserID()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	conversations, err := s.ConversationsByUser(cmd.Context(), store.ListParams{
		UserID:   userID,
		Tag:      tag,
		Category: category,
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		exitErr("list", err)
	}

	if titlesOnly {
		for _, c := range conversations {
			fmt.Printf("%s\t%s\n", c.ID, c.Title)
		}
		return
	}

	b, _ := json.MarshalIndent(conversations, "", "  ")
	fmt.Println(string(b))
}

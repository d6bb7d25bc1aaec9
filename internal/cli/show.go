package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a conversation",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.Conversation(cmd.Context(), args[0])
	if err != nil {
		exitErr("show", err)
	}

	b, _ := json.MarshalIndent(c, "", "  ")
	fmt.Println(string(b))
}

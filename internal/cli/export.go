package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export conversations as JSON",
		Long:  "Export all of a user's conversations as a JSON array, full messages included.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	userID := getUserID()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	conversations, err := s.ExportByUser(cmd.Context(), userID)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(conversations, "", "  ")
	fmt.Println(string(b))
}

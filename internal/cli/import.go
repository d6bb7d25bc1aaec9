package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/importer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a chat export file",
		Long:  "Import a chat export JSON payload from a file or stdin. Use --stream for large exports to persist progress batch by batch.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().Bool("stream", false, "Stream the payload in batches instead of parsing it whole")
	cmd.Flags().IntP("batch", "b", importer.DefaultBatchSize, "Batch size for --stream")
	cmd.Flags().Bool("analyze", false, "Run analysis on each conversation after import")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	stream, _ := cmd.Flags().GetBool("stream")
	batch, _ := cmd.Flags().GetInt("batch")
	analyze, _ := cmd.Flags().GetBool("analyze")
	userID := getUserID()

	var content []byte
	var err error
	if len(args) > 0 {
		content, err = os.ReadFile(args[0])
	} else {
		content, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read payload", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if stream {
		bulk := &importer.Bulk{
			Store:     s,
			BatchSize: batch,
			Progress: func(processed int) {
				fmt.Fprintf(os.Stderr, "processed %d conversations\n", processed)
			},
		}
		result, err := bulk.Run(cmd.Context(), content, userID)
		if err != nil {
			exitErr("import", err)
		}
		b, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(b))
		return
	}

	imp := &importer.Importer{Store: s}
	if analyze {
		pipeline, err := newPipeline(s, loadConfig())
		if err != nil {
			exitErr("configure analysis", err)
		}
		imp.Analyzer = pipeline
	}

	result, err := imp.Import(cmd.Context(), content, userID)
	if err != nil {
		exitErr("import", err)
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/display"
)

func newListCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var sortBy string
	var limit int
	var filters db.Filters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transcripts",
		Long:  "List stored transcripts, newest first, optionally filtered by speaker, source, tag, or date range.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortBy != "date" && sortBy != "title" {
				return &usageError{err: fmt.Errorf("invalid --sort %q: must be date or title", sortBy)}
			}

			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.List(&filters, sortBy, limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if results == nil {
					results = []db.TranscriptResult{}
				}
				return printJSON(results)
			}
			if len(results) == 0 {
				fmt.Println("No transcripts stored.")
				return nil
			}
			display.PrintTranscriptsTable(results, os.Stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "Sort order: date or title")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of results")
	addFilterFlags(cmd, &filters)

	return cmd
}

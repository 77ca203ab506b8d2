package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/display"
)

func newSearchCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var segments bool
	var limit int
	var filters db.Filters

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Full-text search across transcripts",
		Long: "Full-text search with FTS5 syntax (phrases, OR, prefix*). " +
			"Structured filters compose with the text query as an intersection. " +
			"With --segments, hits are individual speech segments instead of whole transcripts.",
		Args: minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if segments {
				results, err := store.SearchSegments(query, &filters, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if results == nil {
						results = []db.SegmentResult{}
					}
					return printJSON(results)
				}
				if len(results) == 0 {
					fmt.Println("No matching segments.")
					return nil
				}
				display.PrintSegmentResults(results, os.Stdout)
				return nil
			}

			results, err := store.SearchTranscripts(query, &filters, limit)
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
				fmt.Println("No matching transcripts.")
				return nil
			}
			display.PrintSearchResults(results, os.Stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&segments, "segments", false, "Search individual segments instead of whole transcripts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	addFilterFlags(cmd, &filters)

	return cmd
}

// addFilterFlags registers the structured filter flags shared by search
// and list.
func addFilterFlags(cmd *cobra.Command, f *db.Filters) {
	cmd.Flags().StringVar(&f.Speaker, "speaker", "", "Only transcripts with this speaker (exact match)")
	cmd.Flags().StringVar(&f.Source, "source", "", "Only transcripts from this source")
	cmd.Flags().StringVar(&f.From, "from", "", "Only transcripts on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.To, "to", "", "Only transcripts on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Tag, "tag", "", "Only transcripts with this tag (exact match)")
}

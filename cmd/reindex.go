package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text search index",
		Long:  "Rebuild the FTS index from the stored transcripts and segments. Useful after manual database surgery or suspected index corruption.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Reindex(); err != nil {
				return err
			}

			st, err := store.Stats()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(map[string]any{
					"reindexed":   true,
					"transcripts": st.Transcripts,
					"segments":    st.Segments,
				})
			}
			fmt.Printf("Reindexed %d transcripts and %d segments\n", st.Transcripts, st.Segments)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

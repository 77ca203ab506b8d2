package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/display"
)

func newStatsCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Stats()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(st)
			}
			display.PrintStats(st, store.Path(), os.Stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newInfoCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show database location and schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Stats()
			if err != nil {
				return err
			}

			info := struct {
				Database      string `json:"database"`
				SchemaVersion string `json:"schema_version"`
				Transcripts   int64  `json:"transcripts"`
				SizeBytes     int64  `json:"size_bytes"`
			}{
				Database:      store.Path(),
				SchemaVersion: store.SchemaVersion(),
				Transcripts:   st.Transcripts,
				SizeBytes:     st.DBSizeBytes,
			}

			if jsonOutput {
				return printJSON(info)
			}
			fmt.Printf("Database:       %s\n", info.Database)
			fmt.Printf("Schema version: %s\n", info.SchemaVersion)
			fmt.Printf("Transcripts:    %d\n", info.Transcripts)
			fmt.Printf("Size:           %s\n", display.FormatBytes(info.SizeBytes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

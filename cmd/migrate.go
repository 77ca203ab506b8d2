package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/ingest"
)

func newMigrateCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate <legacy-db>",
		Short: "Import transcripts from a legacy transcripts.db",
		Long: "Import transcripts from the legacy Python transcripts.db, mapping each row into the canonical model. " +
			"Rows whose IDs already exist are skipped; rows that cannot be mapped are reported and do not abort the migration.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := ingest.New(store).Migrate(args[0], dryRun)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(report)
			}

			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			fmt.Printf("%s %d transcripts, skipped %d existing\n", verb, report.Imported, report.Skipped)
			for _, f := range report.Failed {
				fmt.Printf("FAIL %s: %s\n", f.ID, f.Reason)
			}
			if len(report.Failed) > 0 && report.Imported == 0 && report.Skipped == 0 {
				return fmt.Errorf("migration imported nothing: %d rows failed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be imported without writing")

	return cmd
}

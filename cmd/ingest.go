package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/ingest"
	"github.com/krasmussen37/tss/internal/transcript"
)

func newIngestCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var source string
	var formatFlag string
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest [paths...]",
		Short: "Ingest transcript files into the database",
		Long: "Ingest transcript files, directories (recursive), or stdin. " +
			"Formats: JSON (.json), markdown with frontmatter (.md), plain text (.txt). " +
			"With no paths, reads a single transcript from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := transcript.FormatUnknown
			if formatFlag != "" {
				f, err := transcript.ParseFormat(formatFlag)
				if err != nil {
					return &usageError{err: err}
				}
				format = f
			}

			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ing := ingest.New(store)
			opts := ingest.Options{Source: source, Format: format, DryRun: dryRun, Workers: workers}

			if len(args) == 0 {
				res, err := ing.Stdin(os.Stdin, opts)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(res)
				}
				verb := "Ingested"
				if dryRun {
					verb = "Would ingest"
				} else if res.Replaced {
					verb = "Replaced"
				}
				fmt.Printf("%s %q (%s, %d segments)\n", verb, res.Title, res.ID, res.Segments)
				return nil
			}

			report, err := ing.Paths(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(report)
			}

			for _, f := range report.Files {
				if f.Error != "" {
					fmt.Printf("FAIL %s: %s\n", f.Path, f.Error)
					continue
				}
				marker := "ok  "
				if f.Replaced {
					marker = "repl"
				}
				fmt.Printf("%s %s -> %q (%s, %d segments)\n", marker, f.Path, f.Title, f.ID, f.Segments)
			}
			fmt.Printf("\n%d ingested, %d failed", report.Ingested, report.Failed)
			if dryRun {
				fmt.Print(" (dry run)")
			}
			fmt.Println()

			if report.Failed > 0 && report.Ingested == 0 {
				return fmt.Errorf("all %d files failed to ingest", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Override the source label for all ingested transcripts")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Force input format: json, markdown, or text")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate without writing to the database")
	cmd.Flags().IntVar(&workers, "workers", ingest.DefaultWorkers, "Parallel parse workers for directory ingestion")

	return cmd
}

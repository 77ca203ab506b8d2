package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/display"
	"github.com/krasmussen37/tss/internal/transcript"
)

func newShowCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var withSegments bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transcript",
		Long:  "Show a transcript's metadata, summary, and action items. Add --segments for the full segment listing.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.Load(args[0])
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("transcript %s not found", args[0])
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				if !withSegments {
					t.Segments = nil
				}
				return printJSON(t)
			}
			display.PrintTranscript(t, withSegments, os.Stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&withSegments, "segments", false, "Include the full segment listing")

	return cmd
}

func newExpandCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var speaker string

	cmd := &cobra.Command{
		Use:   "expand <id>",
		Short: "Print a transcript's full segment timeline",
		Long:  "Print every segment of a transcript in order, with timestamps and speakers, optionally restricted to one speaker.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			exists, err := store.Exists(args[0])
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("transcript %s not found", args[0])
			}

			segs, err := store.Segments(args[0])
			if err != nil {
				return err
			}
			if speaker != "" {
				var filtered []transcript.Segment
				for _, s := range segs {
					if s.Speaker == speaker {
						filtered = append(filtered, s)
					}
				}
				segs = filtered
			}

			if jsonOutput {
				if segs == nil {
					segs = []transcript.Segment{}
				}
				return printJSON(segs)
			}
			if len(segs) == 0 {
				fmt.Println("No segments.")
				return nil
			}
			display.PrintSegments(segs, os.Stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&speaker, "speaker", "", "Only segments spoken by this speaker (exact match)")

	return cmd
}

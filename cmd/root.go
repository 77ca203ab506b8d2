// Package cmd wires the tss command tree.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/internal/db"
)

// usageError marks errors that should exit with the usage status code.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// IsUsageError reports whether err came from bad flags or arguments, so
// main can exit with the usage status instead of the failure status.
func IsUsageError(err error) bool {
	var u *usageError
	return errors.As(err, &u)
}

// NewRootCmd creates the root command for tss.
func NewRootCmd() *cobra.Command {
	var dbPath string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "tss",
		Short:         "Meeting transcript search and storage",
		Long:          "tss ingests meeting transcripts from files, stdin, or remote services and makes them searchable with SQLite full-text search.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default ~/.tss/tss.db, or TSS_DB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(newIngestCmd(&dbPath))
	rootCmd.AddCommand(newSearchCmd(&dbPath))
	rootCmd.AddCommand(newListCmd(&dbPath))
	rootCmd.AddCommand(newShowCmd(&dbPath))
	rootCmd.AddCommand(newExpandCmd(&dbPath))
	rootCmd.AddCommand(newStatsCmd(&dbPath))
	rootCmd.AddCommand(newInfoCmd(&dbPath))
	rootCmd.AddCommand(newDeleteCmd(&dbPath))
	rootCmd.AddCommand(newReindexCmd(&dbPath))
	rootCmd.AddCommand(newMigrateCmd(&dbPath))
	rootCmd.AddCommand(newSyncCmd(&dbPath))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// openStore resolves the database path and opens the store.
func openStore(dbFlag string) (*db.Store, error) {
	path, err := db.ResolvePath(dbFlag)
	if err != nil {
		return nil, err
	}
	return db.Open(path)
}

// printJSON emits v as indented JSON on stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// exactArgs is cobra.ExactArgs with the usage exit status.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// minimumArgs is cobra.MinimumNArgs with the usage exit status.
func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

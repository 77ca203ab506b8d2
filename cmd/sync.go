package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krasmussen37/tss/config"
	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/sync"
)

func newSyncCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var dryRun bool
	var full bool
	var audit bool
	var apiKey string
	var tag string
	var baseURL string

	cmd := &cobra.Command{
		Use:   "sync <source>",
		Short: "Pull transcripts from a remote service",
		Long: "Pull transcripts from a remote recording service (fireflies or pocket) into the local database. " +
			"The first sync fetches everything; later syncs fetch only transcripts newer than the last run. " +
			"Use --full to rescan everything, or --audit to compare remote and local without writing.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			key, err := cfg.APIKey(source, apiKey)
			if err != nil {
				return err
			}

			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := sync.NewRunner(store)
			conn, err := buildConnector(cmd, store, cfg, source, key, tag, baseURL)
			if err != nil {
				return err
			}

			if audit {
				report, err := runner.Audit(cmd.Context(), conn)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(report)
				}
				fmt.Printf("%s: %d remote, %d local\n", report.Source, report.RemoteTotal, report.LocalTotal)
				for _, rt := range report.MissingLocally {
					fmt.Printf("missing locally: %s %q (%s)\n", rt.ID, rt.Title, rt.Date)
				}
				for _, id := range report.OrphanedLocally {
					fmt.Printf("orphaned locally: %s\n", id)
				}
				if len(report.MissingLocally) == 0 && len(report.OrphanedLocally) == 0 {
					fmt.Println("In sync.")
				}
				return nil
			}

			mode := sync.ModeIncremental
			hasCursor, err := runner.HasCursor(source)
			if err != nil {
				return err
			}
			if full || !hasCursor {
				mode = sync.ModeInitial
			}

			report, err := runner.Run(cmd.Context(), conn, mode, sync.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(report)
			}

			if dryRun {
				fmt.Printf("%s: %d remote, %d already local, would sync %d\n",
					report.Source, report.RemoteTotal, report.AlreadyLocal, report.Skipped)
				return nil
			}
			fmt.Printf("%s: synced %d of %d remote (%d already local, %d failed) in %.1fs\n",
				report.Source, report.Synced, report.RemoteTotal, report.AlreadyLocal,
				report.Failed, report.DurationSecs)
			if report.Failed > 0 && report.Synced == 0 {
				return fmt.Errorf("sync failed for all %d transcripts", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be synced without writing")
	cmd.Flags().BoolVar(&full, "full", false, "Rescan all remote transcripts, ignoring the sync cursor")
	cmd.Flags().BoolVar(&audit, "audit", false, "Compare remote and local without syncing")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (overrides config and environment)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only sync recordings with this tag (pocket)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL override (pocket)")

	return cmd
}

// buildConnector constructs the connector for a source name, resolving
// pocket tag names to IDs with a sync_state cache.
func buildConnector(cmd *cobra.Command, store *db.Store, cfg *config.Config, source, key, tag, baseURL string) (sync.Connector, error) {
	sc := cfg.Sources[source]

	switch source {
	case "fireflies":
		return sync.NewFireflies(key), nil
	case "pocket":
		if baseURL == "" {
			baseURL = sc.BaseURL
		}
		conn := sync.NewPocket(key, baseURL)
		if tag == "" {
			tag = sc.DefaultTag
		}
		if tag != "" {
			cacheKey := "pocket.tag_id." + tag
			if id, ok, err := store.SyncState(cacheKey); err != nil {
				return nil, err
			} else if ok {
				conn.TagID = id
			} else {
				id, err := conn.ResolveTag(cmd.Context(), tag)
				if err != nil {
					return nil, err
				}
				if err := store.SetSyncState(cacheKey, id); err != nil {
					return nil, err
				}
				conn.TagID = id
			}
		}
		return conn, nil
	default:
		return nil, &usageError{err: fmt.Errorf("unknown source %q: expected fireflies or pocket", source)}
	}
}

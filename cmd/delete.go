package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(dbPath *string) *cobra.Command {
	var jsonOutput bool
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transcript and all its data",
		Long:  "Delete a transcript with its segments, speakers, tags, keywords, and action items. Asks for confirmation unless --force is given.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.Get(id)
			if err != nil {
				return fmt.Errorf("transcript %s not found", id)
			}

			if !force {
				fmt.Printf("Delete %q (%s)? [y/N] ", t.Title, id)
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			deleted, err := store.Delete(id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("transcript %s not found", id)
			}

			if jsonOutput {
				return printJSON(map[string]any{"deleted": id})
			}
			fmt.Printf("Deleted %q (%s)\n", t.Title, id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")

	return cmd
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

type changedItemJSON struct {
	Name string `json:"name"`
	Ref  any    `json:"ref,omitempty"`
}

var changedItemsCmd = &cobra.Command{
	Use:   "changed-items",
	Short: "List in-game items the active collection changes",
	Long: `List the items touched by the effective file table, as identified from
the item table (items.yaml in the config directory, or item_table in
config.yaml). Paths the item table does not describe are not listed.

Examples:
  penumbra changed-items
  penumbra changed-items --json`,
	Args: cobra.NoArgs,
	RunE: runChangedItems,
}

func init() {
	rootCmd.AddCommand(changedItemsCmd)
}

func runChangedItems(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	items := svc.Cache().ChangedItems()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	if jsonOutput {
		entries := make([]changedItemJSON, 0, len(names))
		for _, name := range names {
			entries = append(entries, changedItemJSON{Name: name, Ref: items[name]})
		}
		return writeJSON(out, entries)
	}

	if len(names) == 0 {
		fmt.Fprintln(out, "No changed items.")
		return nil
	}
	for _, name := range names {
		if ref := items[name]; ref != nil && verbosity > 0 {
			fmt.Fprintf(out, "%s  %v\n", name, ref)
			continue
		}
		fmt.Fprintln(out, name)
	}
	return nil
}

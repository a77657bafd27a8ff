package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List files enabled mods reference but do not have",
	Long: `List every file an enabled mod's options reference that does not exist
on disk. Missing files are left out of the effective file table.

Examples:
  penumbra missing
  penumbra missing --json`,
	Args: cobra.NoArgs,
	RunE: runMissing,
}

func init() {
	rootCmd.AddCommand(missingCmd)
}

func runMissing(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	missing := svc.Cache().MissingFiles()
	paths := make([]string, 0, len(missing))
	for _, f := range missing {
		paths = append(paths, f.FullName)
	}

	if jsonOutput {
		return writeJSON(out, paths)
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No missing files.")
		return nil
	}
	for _, p := range paths {
		fmt.Fprintln(out, colorRed(p))
	}
	return nil
}

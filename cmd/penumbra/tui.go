package main

import (
	"fmt"

	"penumbra/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit the active collection interactively",
	Long: `Open the interactive collection editor. Every edit is saved and the
collection is resolved again right away; the conflict pane follows the
selected mod.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	return tui.Run(svc, svc.Config().Keybindings)
}

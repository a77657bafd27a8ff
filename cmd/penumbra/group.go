package main

import (
	"fmt"

	"penumbra/internal/core"
	"penumbra/internal/domain"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Edit a mod's option groups",
}

var groupConvertCmd = &cobra.Command{
	Use:   "convert <mod> <group> <single|multi>",
	Short: "Switch an option group between single and multi selection",
	Long: `Rewrite an option group as single or multi selection. The active
collection's selection is carried over: a single index becomes the same
bit, and a bitmask becomes its lowest set option.

Examples:
  penumbra group convert "Better Hair" Extras single
  penumbra group convert "Better Hair" Color multi`,
	Args: cobra.ExactArgs(3),
	RunE: runGroupConvert,
}

func init() {
	groupCmd.AddCommand(groupConvertCmd)

	rootCmd.AddCommand(groupCmd)
}

func runGroupConvert(cmd *cobra.Command, args []string) error {
	to, err := domain.ParseGroupType(args[2])
	if err != nil {
		return fmt.Errorf("group type must be single or multi: %w", err)
	}
	return runModEdit(cmd, args[0], func(svc *core.Service) (core.Passes, error) {
		return svc.ConvertGroup(args[0], args[1], to)
	})
}

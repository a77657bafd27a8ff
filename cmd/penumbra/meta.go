package main

import (
	"fmt"
	"strconv"

	"penumbra/internal/core"
	"penumbra/internal/domain"

	"github.com/spf13/cobra"
)

var metaType string

type metaJSON struct {
	Type     string `json:"type"`
	Key      string `json:"key"`
	Entry    uint64 `json:"entry"`
	Mod      string `json:"mod"`
	Priority int    `json:"priority"`
}

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Show the effective metadata manipulations",
	Long: `Show the winning manipulation for every patched game data record in the
active collection, with the mod that provides it.

Examples:
  penumbra meta
  penumbra meta --type eqdp
  penumbra meta --json`,
	Args: cobra.NoArgs,
	RunE: runMeta,
}

func init() {
	metaCmd.Flags().StringVarP(&metaType, "type", "t", "", "only show one table: eqp, eqdp, gmp, est, imc or rsp")

	rootCmd.AddCommand(metaCmd)
}

func runMeta(cmd *cobra.Command, args []string) error {
	var filter domain.MetaType
	if metaType != "" {
		var err error
		if filter, err = domain.ParseMetaType(metaType); err != nil {
			return err
		}
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	overlay := svc.Cache().Overlay()
	var entries []core.OverlayEntry
	if filter != domain.MetaUnknown {
		entries = overlay.ByType(filter)
	} else {
		entries = overlay.All()
	}

	rows := make([]metaJSON, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, metaJSON{
			Type:     e.Manipulation.Key.Type.String(),
			Key:      e.Manipulation.Key.String(),
			Entry:    e.Manipulation.Entry,
			Mod:      e.Mod,
			Priority: int(e.Priority),
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No manipulations.")
		return nil
	}

	table := newTable(out, "Key", "Entry", "Mod", "Priority")
	for _, r := range rows {
		table.Append([]string{r.Key, fmt.Sprintf("%#x", r.Entry), r.Mod, strconv.Itoa(r.Priority)})
	}
	table.Render()
	return nil
}

package main

import (
	"fmt"
	"strconv"

	"penumbra/internal/core"

	"github.com/spf13/cobra"
)

var listEnabledOnly bool

type modJSON struct {
	Name          string            `json:"name"`
	Enabled       bool              `json:"enabled"`
	Priority      int               `json:"priority"`
	Inherited     bool              `json:"inherited"`
	Groups        map[string]uint64 `json:"groups"`
	Files         int               `json:"files"`
	Manipulations int               `json:"manipulations"`
	Conflicts     int               `json:"conflicts"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List mods and their settings in the active collection",
	Long: `List every mod in the library with its state in the active collection.
Settings taken from an inherited collection are marked with *.

Examples:
  penumbra list
  penumbra list --enabled
  penumbra list --collection Raid --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listEnabledOnly, "enabled", "e", false, "only list enabled mods")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	mods := listMods(svc)
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, mods)
	}

	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods found.")
		return nil
	}

	table := newTable(out, "Name", "Enabled", "Priority", "Groups", "Files", "Meta", "Conflicts")
	for _, m := range mods {
		enabled := "no"
		if m.Enabled {
			enabled = colorGreen("yes")
		}
		priority := strconv.Itoa(m.Priority)
		if m.Inherited {
			priority += "*"
		}
		table.Append([]string{
			truncate(m.Name, 40),
			enabled,
			priority,
			strconv.Itoa(len(m.Groups)),
			strconv.Itoa(m.Files),
			strconv.Itoa(m.Manipulations),
			strconv.Itoa(m.Conflicts),
		})
	}
	table.Render()

	if verbosity > 0 {
		fmt.Fprintf(out, "\nTotal: %d mod(s) in %s\n", len(mods), svc.Collection().Name)
	}
	return nil
}

func listMods(svc *core.Service) []modJSON {
	collection := svc.Collection()
	out := []modJSON{}
	for _, m := range svc.Mods() {
		row := modJSON{
			Name:          m.Name,
			Groups:        map[string]uint64{},
			Files:         len(m.Files),
			Manipulations: m.ManipulationCount(),
		}
		if s := collection.ActualSettings(m.Name); s != nil {
			row.Enabled = s.Enabled
			row.Priority = int(s.Priority)
			_, own := collection.Settings[m.Name]
			row.Inherited = !own
			for i := range m.Groups {
				row.Groups[m.Groups[i].Name] = uint64(s.Setting(&m.Groups[i]))
			}
		} else {
			for i := range m.Groups {
				row.Groups[m.Groups[i].Name] = uint64(m.Groups[i].DefaultSettings)
			}
		}
		if listEnabledOnly && !row.Enabled {
			continue
		}
		row.Conflicts = len(core.GroupConflicts(svc.Cache().Conflicts(m.Name)))
		out = append(out, row)
	}
	return out
}

package main

import (
	"fmt"
	"strings"

	"penumbra/internal/core"

	"github.com/spf13/cobra"
)

type conflictJSON struct {
	Key            string `json:"key"`
	Manipulation   bool   `json:"manipulation"`
	Winner         string `json:"winner"`
	Loser          string `json:"loser"`
	WinnerPriority int    `json:"winner_priority"`
	LoserPriority  int    `json:"loser_priority"`
	Tie            bool   `json:"tie"`
}

type modConflictJSON struct {
	Other         string   `json:"other"`
	HasPriority   bool     `json:"has_priority"`
	Solved        bool     `json:"solved"`
	Paths         []string `json:"paths"`
	Manipulations []string `json:"manipulations"`
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts [mod]",
	Short: "Show conflicts between enabled mods",
	Long: `Display every path and manipulation claimed by more than one enabled mod
in the active collection, with the winner and loser of each.

Conflicts between mods of equal priority are unsolved: the winner is
decided by name order, not by intent. With a mod name, show that mod's
conflicts grouped by the other mod involved.

Examples:
  penumbra conflicts
  penumbra conflicts "Better Hair"
  penumbra conflicts --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	if len(args) == 1 {
		return showModConflicts(cmd, svc, args[0])
	}

	out := cmd.OutOrStdout()
	records := svc.Cache().ConflictRecords()
	entries := make([]conflictJSON, 0, len(records))
	for _, r := range records {
		entries = append(entries, conflictJSON{
			Key:            r.Key.String(),
			Manipulation:   r.Key.IsMeta,
			Winner:         r.Winner,
			Loser:          r.Loser,
			WinnerPriority: int(r.WinnerPriority),
			LoserPriority:  int(r.LoserPriority),
			Tie:            r.Tie(),
		})
	}

	if jsonOutput {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No conflicts found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d conflict(s):\n\n", len(entries))
	table := newTable(out, "Key", "Winner", "Loser", "")
	for _, e := range entries {
		note := ""
		if e.Tie {
			note = colorYellow("unsolved")
		}
		table.Append([]string{e.Key, e.Winner, e.Loser, note})
	}
	table.Render()
	return nil
}

func showModConflicts(cmd *cobra.Command, svc *core.Service, name string) error {
	if _, err := svc.Mod(name); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	groups := core.GroupConflicts(svc.Cache().Conflicts(name))
	entries := make([]modConflictJSON, 0, len(groups))
	for _, g := range groups {
		e := modConflictJSON{
			Other:         g.Other,
			HasPriority:   g.HasPriority,
			Solved:        g.Solved,
			Paths:         []string{},
			Manipulations: []string{},
		}
		for _, p := range g.Paths {
			e.Paths = append(e.Paths, p.String())
		}
		for _, k := range g.Manipulations {
			e.Manipulations = append(e.Manipulations, k.String())
		}
		entries = append(entries, e)
	}

	if jsonOutput {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "%s has no conflicts.\n", name)
		return nil
	}

	for _, e := range entries {
		var verdict string
		switch {
		case !e.Solved:
			verdict = colorYellow("tie with")
		case e.HasPriority:
			verdict = colorGreen("wins over")
		default:
			verdict = colorRed("loses to")
		}
		fmt.Fprintf(out, "%s %s\n", verdict, e.Other)
		for _, p := range e.Paths {
			fmt.Fprintf(out, "    %s\n", p)
		}
		if len(e.Manipulations) > 0 {
			fmt.Fprintf(out, "    %s\n", strings.Join(e.Manipulations, "\n    "))
		}
		fmt.Fprintln(out)
	}
	return nil
}

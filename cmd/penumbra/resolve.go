package main

import (
	"fmt"

	"penumbra/internal/domain"

	"github.com/spf13/cobra"
)

type resolvedJSON struct {
	Path     string `json:"path"`
	Resolved bool   `json:"resolved"`
	File     string `json:"file,omitempty"`
	Swap     bool   `json:"swap,omitempty"`
	Mod      string `json:"mod,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [game-path]",
	Short: "Show which file replaces a game path",
	Long: `Look up a game path in the active collection's effective file table.
Without a path, print the whole table.

A path resolved to another game path is a file swap. Paths nobody
replaces are served by the game itself.

Examples:
  penumbra resolve chara/equipment/e0001/model/c0101e0001_top.mdl
  penumbra resolve --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	cache := svc.Cache()

	if len(args) == 0 {
		files := cache.ResolvedFiles()
		entries := make([]resolvedJSON, 0, len(files))
		for _, f := range files {
			entries = append(entries, resolvedJSON{
				Path:     f.Path.String(),
				Resolved: true,
				File:     f.File.FullName,
				Swap:     !f.File.IsRooted(),
				Mod:      f.Mod,
			})
		}
		if jsonOutput {
			return writeJSON(out, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No files resolved.")
			return nil
		}
		table := newTable(out, "Path", "Mod", "File")
		for _, e := range entries {
			file := e.File
			if e.Swap {
				file = "-> " + file
			}
			table.Append([]string{e.Path, e.Mod, file})
		}
		table.Render()
		return nil
	}

	path, err := domain.NewGamePath(args[0])
	if err != nil {
		return fmt.Errorf("invalid game path %q: %w", args[0], err)
	}

	entry := resolvedJSON{Path: path.String()}
	if file, ok := cache.Lookup(path); ok {
		entry.Resolved = true
		entry.File = file.FullName
		entry.Swap = !file.IsRooted()
		entry.Mod, _ = cache.Owner(path)
	}

	if jsonOutput {
		return writeJSON(out, entry)
	}
	switch {
	case !entry.Resolved:
		fmt.Fprintf(out, "%s: not replaced\n", entry.Path)
	case entry.Swap:
		fmt.Fprintf(out, "%s -> %s (swap from %s)\n", entry.Path, entry.File, entry.Mod)
	default:
		fmt.Fprintf(out, "%s -> %s (%s)\n", entry.Path, entry.File, entry.Mod)
	}
	return nil
}

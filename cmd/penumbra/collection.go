package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"penumbra/internal/storage/config"

	"github.com/spf13/cobra"
)

var (
	collectionInherit    []string
	collectionExportFile string
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"collections"},
	Short:   "Manage collections",
	Long: `Commands for managing collections. A collection is a named set of mod
settings; it can inherit settings for mods it does not configure itself.`,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionList,
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty collection",
	Long: `Create a new collection, optionally inheriting from existing ones.
Inherited collections are consulted in the order given.

Examples:
  penumbra collection create Raid
  penumbra collection create Raid --inherit Default`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionCreate,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDelete,
}

var collectionUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a collection the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionUse,
}

var collectionExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Export a collection as YAML",
	Long: `Export a collection with its inherited settings flattened in, so the
result stands alone. Without a name, the active collection is exported.

Examples:
  penumbra collection export Raid > raid.yaml
  penumbra collection export Raid -o raid.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollectionExport,
}

var collectionImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a collection from YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionImport,
}

func init() {
	collectionCreateCmd.Flags().StringSliceVarP(&collectionInherit, "inherit", "i", nil, "collections to inherit from")
	collectionExportCmd.Flags().StringVarP(&collectionExportFile, "output", "o", "", "write to file instead of stdout")

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	collectionCmd.AddCommand(collectionUseCmd)
	collectionCmd.AddCommand(collectionExportCmd)
	collectionCmd.AddCommand(collectionImportCmd)

	rootCmd.AddCommand(collectionCmd)
}

type collectionJSON struct {
	Name     string   `json:"name"`
	Mods     int      `json:"mods"`
	Inherits []string `json:"inherits"`
	Active   bool     `json:"active"`
	Default  bool     `json:"default"`
}

func runCollectionList(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	names, err := svc.Collections()
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}

	entries := make([]collectionJSON, 0, len(names))
	for _, name := range names {
		c, err := config.LoadCollection(svc.ConfigDir(), name)
		if err != nil {
			return err
		}
		e := collectionJSON{
			Name:     name,
			Mods:     len(c.Settings),
			Inherits: []string{},
			Active:   name == svc.Collection().Name,
			Default:  name == svc.Config().DefaultCollection,
		}
		for _, parent := range c.Inherits {
			e.Inherits = append(e.Inherits, parent.Name)
		}
		entries = append(entries, e)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No collections found.")
		return nil
	}

	table := newTable(out, "Name", "Mods", "Inherits", "")
	for _, e := range entries {
		mark := ""
		switch {
		case e.Active && e.Default:
			mark = "active, default"
		case e.Active:
			mark = "active"
		case e.Default:
			mark = "default"
		}
		table.Append([]string{e.Name, strconv.Itoa(e.Mods), strings.Join(e.Inherits, ", "), mark})
	}
	table.Render()
	return nil
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	c, err := svc.CreateCollection(args[0], collectionInherit...)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created collection: %s\n", colorGreen("✓"), c.Name)
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	if args[0] == svc.Config().DefaultCollection {
		return fmt.Errorf("cannot delete the default collection %s; make another one the default first", args[0])
	}
	if err := svc.DeleteCollection(args[0]); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted collection: %s\n", colorGreen("✓"), args[0])
	return nil
}

func runCollectionUse(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	if err := svc.SwitchCollection(args[0]); err != nil {
		return fmt.Errorf("switching collection: %w", err)
	}
	cfg := svc.Config()
	cfg.DefaultCollection = args[0]
	if err := cfg.Save(svc.ConfigDir()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Default collection: %s (%d files)\n", colorGreen("✓"), args[0], svc.Cache().ResolvedCount())
	return nil
}

func runCollectionExport(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	data, err := svc.ExportCollection(name)
	if err != nil {
		return fmt.Errorf("exporting collection: %w", err)
	}

	if collectionExportFile == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(collectionExportFile, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", collectionExportFile, err)
	}
	if verbosity > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", collectionExportFile)
	}
	return nil
}

func runCollectionImport(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	path, err := config.ParseConfigPath(abs)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	c, err := svc.ImportCollection(data)
	if err != nil {
		return fmt.Errorf("importing collection: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Imported collection: %s\n", colorGreen("✓"), c.Name)
	return nil
}

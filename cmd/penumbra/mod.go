package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"penumbra/internal/core"
	"penumbra/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var modShowTarget string

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Manage mod settings in the active collection",
	Long:  `Commands for changing how the active collection uses a mod.`,
}

var modShowCmd = &cobra.Command{
	Use:   "show <mod>",
	Short: "Show a mod's option groups and current selections",
	Args:  cobra.ExactArgs(1),
	RunE:  runModShow,
}

var modEnableCmd = &cobra.Command{
	Use:   "enable <mod>",
	Short: "Enable a mod",
	Long: `Enable a mod in the active collection. Settings inherited from another
collection are copied into the active one first.

Examples:
  penumbra mod enable "Better Hair"
  penumbra mod enable "Better Hair" --collection Raid`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModEdit(cmd, args[0], func(svc *core.Service) (core.Passes, error) {
			return svc.SetModEnabled(args[0], true)
		})
	},
}

var modDisableCmd = &cobra.Command{
	Use:   "disable <mod>",
	Short: "Disable a mod",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModEdit(cmd, args[0], func(svc *core.Service) (core.Passes, error) {
			return svc.SetModEnabled(args[0], false)
		})
	},
}

var modPriorityCmd = &cobra.Command{
	Use:   "priority <mod> <priority>",
	Short: "Set a mod's priority",
	Long: `Set a mod's priority. Where two enabled mods replace the same path or
patch the same record, the higher priority wins.

Examples:
  penumbra mod priority "Better Hair" 10
  penumbra mod priority "Old Body" -- -5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid priority %q: %w", args[1], err)
		}
		return runModEdit(cmd, args[0], func(svc *core.Service) (core.Passes, error) {
			return svc.SetModPriority(args[0], domain.Priority(priority))
		})
	},
}

var modSelectCmd = &cobra.Command{
	Use:   "select <mod> <group> [option...]",
	Short: "Select options of an option group",
	Long: `Select options of a mod's option group by name or index.

A single group takes exactly one option. A multi group takes any number
of options, and none clears it.

Examples:
  penumbra mod select "Better Hair" Color Blue
  penumbra mod select "Better Hair" Color 2
  penumbra mod select "Better Hair" Extras Gloves Hat
  penumbra mod select "Better Hair" Extras`,
	Args: cobra.MinimumNArgs(2),
	RunE: runModSelect,
}

func init() {
	modShowCmd.Flags().StringVarP(&modShowTarget, "target", "t", "", "also list the files this mod has deployed to a directory")

	modCmd.AddCommand(modShowCmd)
	modCmd.AddCommand(modEnableCmd)
	modCmd.AddCommand(modDisableCmd)
	modCmd.AddCommand(modPriorityCmd)
	modCmd.AddCommand(modSelectCmd)

	rootCmd.AddCommand(modCmd)
}

type editJSON struct {
	Mod          string `json:"mod"`
	Collection   string `json:"collection"`
	FilesPass    bool   `json:"files_pass"`
	MetaPass     bool   `json:"meta_pass"`
	Files        int    `json:"files"`
	Manipulation int    `json:"manipulations"`
}

// runModEdit applies one settings edit and reports which passes it ran
func runModEdit(cmd *cobra.Command, mod string, edit func(*core.Service) (core.Passes, error)) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	passes, err := edit(svc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, editJSON{
			Mod:          mod,
			Collection:   svc.Collection().Name,
			FilesPass:    passes.Files,
			MetaPass:     passes.Meta,
			Files:        svc.Cache().ResolvedCount(),
			Manipulation: svc.Cache().Overlay().Len(),
		})
	}
	fmt.Fprintf(out, "%s: %s\n", mod, describePasses(passes))
	return nil
}

func runModSelect(cmd *cobra.Command, args []string) error {
	name, groupName, choices := args[0], args[1], args[2:]
	return runModEdit(cmd, name, func(svc *core.Service) (core.Passes, error) {
		mod, err := svc.Mod(name)
		if err != nil {
			return core.Passes{}, err
		}
		group, _, err := mod.Group(groupName)
		if err != nil {
			return core.Passes{}, fmt.Errorf("mod %s: %w: %s", name, err, groupName)
		}
		setting, err := parseSelection(group, choices)
		if err != nil {
			return core.Passes{}, err
		}
		return svc.SetGroupSetting(name, groupName, setting)
	})
}

// parseSelection turns option names or indices into a group setting
func parseSelection(group *domain.OptionGroup, choices []string) (domain.Setting, error) {
	if group.Type == domain.GroupSingle && len(choices) != 1 {
		return 0, fmt.Errorf("single group %s takes exactly one option", group.Name)
	}

	var setting domain.Setting
	for _, choice := range choices {
		idx, err := optionIndex(group, choice)
		if err != nil {
			return 0, err
		}
		if group.Type == domain.GroupSingle {
			return domain.Setting(idx), nil
		}
		setting |= domain.SettingMulti(idx)
	}
	return setting, nil
}

func optionIndex(group *domain.OptionGroup, choice string) (int, error) {
	for i := range group.Options {
		if strings.EqualFold(group.Options[i].Name, choice) {
			return i, nil
		}
	}
	if idx, err := strconv.Atoi(choice); err == nil && idx >= 0 && idx < len(group.Options) {
		return idx, nil
	}
	return 0, fmt.Errorf("group %s has no option %q", group.Name, choice)
}

type groupJSON struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Priority int      `json:"priority"`
	Options  []string `json:"options"`
	Selected []string `json:"selected"`
	Setting  uint64   `json:"setting"`
}

func runModShow(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	mod, err := svc.Mod(args[0])
	if err != nil {
		return err
	}
	settings := svc.Collection().ActualSettings(mod.Name)

	groups := make([]groupJSON, 0, len(mod.Groups))
	for i := range mod.Groups {
		g := &mod.Groups[i]
		setting := g.DefaultSettings
		if settings != nil {
			setting = settings.Setting(g)
		}
		row := groupJSON{
			Name:     g.Name,
			Type:     g.Type.String(),
			Priority: int(g.Priority),
			Setting:  uint64(setting),
			Selected: []string{},
		}
		active, err := g.ActiveOptions(setting)
		if err != nil {
			return err
		}
		for _, idx := range active {
			row.Selected = append(row.Selected, g.Options[idx].Name)
		}
		for _, o := range g.Options {
			row.Options = append(row.Options, o.Name)
		}
		groups = append(groups, row)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, groups)
	}

	fmt.Fprintf(out, "%s", mod.Name)
	if mod.Meta.Version != "" {
		fmt.Fprintf(out, " %s", mod.Meta.Version)
	}
	if mod.Meta.Author != "" {
		fmt.Fprintf(out, " by %s", mod.Meta.Author)
	}
	fmt.Fprintln(out)
	if size, err := svc.Library().Size(mod.Name); err == nil {
		fmt.Fprintf(out, "Size: %s  Files: %d\n", humanize.Bytes(uint64(size)), len(mod.Files))
	}
	if settings != nil {
		fmt.Fprintf(out, "Enabled: %s  Priority: %d\n", yesNo(settings.Enabled), settings.Priority)
	} else {
		fmt.Fprintln(out, "Not configured in this collection")
	}
	if modShowTarget != "" {
		if err := showDeployedFiles(cmd, svc, mod.Name); err != nil {
			return err
		}
	}
	if len(groups) == 0 {
		fmt.Fprintln(out, "No option groups.")
		return nil
	}

	fmt.Fprintln(out)
	table := newTable(out, "Group", "Type", "Selected", "Options")
	for _, g := range groups {
		table.Append([]string{g.Name, g.Type, strings.Join(g.Selected, ", "), strings.Join(g.Options, ", ")})
	}
	table.Render()
	return nil
}

func showDeployedFiles(cmd *cobra.Command, svc *core.Service, modName string) error {
	target, err := filepath.Abs(modShowTarget)
	if err != nil {
		return fmt.Errorf("resolving target: %w", err)
	}
	paths, err := svc.DB().GetDeployedFilesForMod(target, modName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deployed to %s: %d file(s)\n", target, len(paths))
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"penumbra/internal/domain"

	"github.com/spf13/cobra"
)

var deployMethod string

type deployJSON struct {
	TargetDir  string        `json:"target_dir"`
	Collection string        `json:"collection"`
	Method     string        `json:"method"`
	Linked     int           `json:"linked"`
	Unchanged  int           `json:"unchanged"`
	Removed    int           `json:"removed"`
	Skipped    int           `json:"skipped"`
	Foreign    []foreignJSON `json:"foreign"`
	HookErrors []string      `json:"hook_errors"`
}

type foreignJSON struct {
	Path       string `json:"path"`
	Collection string `json:"collection"`
	Mod        string `json:"mod"`
}

var deployCmd = &cobra.Command{
	Use:   "deploy <dir>",
	Short: "Deploy the active collection into a directory",
	Long: `Link every file of the active collection's effective file table into
dir, laid out by game path. Files a previous deploy placed there that are
no longer resolved are removed; files already in place are left alone.

Configured deploy hooks run before and after. A failing before hook
aborts the deploy; a failing after hook is reported but does not undo it.

Examples:
  penumbra deploy ~/.local/share/penumbra/out
  penumbra deploy ./out --method copy
  penumbra deploy ./out --collection Raid --no-hooks`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

var undeployCmd = &cobra.Command{
	Use:   "undeploy <dir>",
	Short: "Remove every file deployed into a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runUndeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployMethod, "method", "m", "", "link method: symlink, hardlink, or copy (default: configured method)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(undeployCmd)
}

func parseLinkMethod(s string, fallback domain.LinkMethod) (domain.LinkMethod, error) {
	if s == "" {
		return fallback, nil
	}
	return domain.ParseLinkMethod(s)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	method, err := parseLinkMethod(deployMethod, svc.Config().DefaultLinkMethod)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if verbosity > 0 && !jsonOutput {
		fmt.Fprintf(out, "Deploying %s using %s...\n", svc.Collection().Name, method)
	}

	res, err := svc.Deploy(ctx, target, method)
	if err != nil {
		return fmt.Errorf("deploying: %w", err)
	}

	report := deployJSON{
		TargetDir:  target,
		Collection: svc.Collection().Name,
		Method:     method.String(),
		Linked:     res.Linked,
		Unchanged:  res.Unchanged,
		Removed:    res.Removed,
		Skipped:    res.Skipped,
		Foreign:    []foreignJSON{},
		HookErrors: []string{},
	}
	for _, f := range res.Foreign {
		report.Foreign = append(report.Foreign, foreignJSON{Path: f.RelativePath, Collection: f.Collection, Mod: f.ModName})
	}
	report.HookErrors = append(report.HookErrors, res.HookErrors...)

	if jsonOutput {
		return writeJSON(out, report)
	}

	fmt.Fprintf(out, "%s Deployed %s to %s\n", colorGreen("✓"), report.Collection, target)
	fmt.Fprintf(out, "  %d linked, %d unchanged, %d removed", report.Linked, report.Unchanged, report.Removed)
	if report.Skipped > 0 {
		fmt.Fprintf(out, ", %s", colorYellow(fmt.Sprintf("%d skipped", report.Skipped)))
	}
	fmt.Fprintln(out)
	for _, f := range report.Foreign {
		fmt.Fprintf(out, "  %s %s was deployed by %s (%s)\n", colorYellow("⚠"), f.Path, f.Collection, f.Mod)
	}
	for _, e := range report.HookErrors {
		fmt.Fprintf(out, "  %s %s\n", colorRed("✗"), e)
	}
	return nil
}

func runUndeploy(cmd *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	removed, err := svc.Undeploy(ctx, target)
	if err != nil {
		return fmt.Errorf("undeploying: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, map[string]any{"target_dir": target, "removed": removed})
	}
	fmt.Fprintf(out, "%s Removed %d file(s) from %s\n", colorGreen("✓"), removed, target)
	return nil
}

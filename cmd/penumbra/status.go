package main

import (
	"fmt"
	"time"

	"penumbra/internal/core"

	"github.com/spf13/cobra"
)

type statusJSON struct {
	Collection    string          `json:"collection"`
	Inherits      []string        `json:"inherits"`
	Mods          int             `json:"mods"`
	Enabled       int             `json:"enabled"`
	Files         int             `json:"files"`
	Manipulations int             `json:"manipulations"`
	Conflicts     int             `json:"conflicts"`
	Unsolved      int             `json:"unsolved"`
	Missing       int             `json:"missing"`
	Generation    uint64          `json:"generation"`
	LastDeploy    *lastDeployJSON `json:"last_deploy,omitempty"`
}

type lastDeployJSON struct {
	TargetDir  string    `json:"target_dir"`
	Collection string    `json:"collection"`
	Files      int       `json:"files"`
	Method     string    `json:"method"`
	DeployedAt time.Time `json:"deployed_at"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active collection's resolution summary",
	Long: `Show the active collection, how many mods it enables, the size of the
effective file table and metadata overlay, conflicts, missing files and
the most recent deployment.

Examples:
  penumbra status
  penumbra status --collection Raid --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	st := collectStatus(svc)
	dep, err := svc.DB().LastDeployment("")
	if err != nil {
		return err
	}
	if dep != nil {
		st.LastDeploy = &lastDeployJSON{
			TargetDir:  dep.TargetDir,
			Collection: dep.Collection,
			Files:      dep.Files,
			Method:     dep.LinkMethod.String(),
			DeployedAt: dep.DeployedAt,
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, st)
	}

	fmt.Fprintf(out, "Collection:    %s\n", st.Collection)
	if len(st.Inherits) > 0 {
		fmt.Fprintf(out, "Inherits:      %v\n", st.Inherits)
	}
	fmt.Fprintf(out, "Mods:          %d enabled of %d\n", st.Enabled, st.Mods)
	fmt.Fprintf(out, "Files:         %d\n", st.Files)
	fmt.Fprintf(out, "Manipulations: %d\n", st.Manipulations)

	conflicts := fmt.Sprintf("%d", st.Conflicts)
	if st.Unsolved > 0 {
		conflicts += colorYellow(fmt.Sprintf(" (%d unsolved)", st.Unsolved))
	}
	fmt.Fprintf(out, "Conflicts:     %s\n", conflicts)

	missing := fmt.Sprintf("%d", st.Missing)
	if st.Missing > 0 {
		missing = colorRed(missing)
	}
	fmt.Fprintf(out, "Missing:       %s\n", missing)

	if verbosity > 0 {
		fmt.Fprintf(out, "Generation:    %d\n", st.Generation)
	}
	if st.LastDeploy != nil {
		fmt.Fprintf(out, "Last deploy:   %s (%s, %d files, %s)\n",
			st.LastDeploy.TargetDir, st.LastDeploy.Collection, st.LastDeploy.Files,
			st.LastDeploy.DeployedAt.Local().Format(time.DateTime))
	}
	return nil
}

func collectStatus(svc *core.Service) statusJSON {
	collection := svc.Collection()
	cache := svc.Cache()
	st := statusJSON{
		Collection:    collection.Name,
		Inherits:      []string{},
		Mods:          len(svc.Mods()),
		Files:         cache.ResolvedCount(),
		Manipulations: cache.Overlay().Len(),
		Missing:       len(cache.MissingFiles()),
		Generation:    cache.Generation(),
	}
	for _, parent := range collection.Inherits {
		st.Inherits = append(st.Inherits, parent.Name)
	}
	for _, m := range svc.Mods() {
		if s := collection.ActualSettings(m.Name); s != nil && s.Enabled {
			st.Enabled++
		}
	}
	for _, r := range cache.ConflictRecords() {
		st.Conflicts++
		if r.Tie() {
			st.Unsolved++
		}
	}
	return st
}

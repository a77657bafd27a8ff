package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"penumbra/internal/domain"
	"penumbra/internal/linker"
	"penumbra/internal/logging"
	"penumbra/internal/storage/db"

	"github.com/rs/zerolog"
)

// maxSwapDepth bounds swap chains so swap cycles terminate
const maxSwapDepth = 16

// DeployResult summarizes a deploy run
type DeployResult struct {
	Linked    int
	Unchanged int
	Removed   int
	Skipped   int               // Entries with nothing on disk to link
	Foreign   []db.FileConflict // Paths another collection had deployed

	HookErrors []string // Failed after hooks; the deploy itself succeeded
}

// Deployer materializes a collection's effective path table into a
// directory, tracking every placed file so it can be removed again.
type Deployer struct {
	cache  *CollectionCache
	db     *db.DB
	linker linker.Linker
	log    zerolog.Logger
}

// NewDeployer creates a deployer
func NewDeployer(cache *CollectionCache, database *db.DB, lnk linker.Linker) *Deployer {
	return &Deployer{
		cache:  cache,
		db:     database,
		linker: lnk,
		log:    logging.GetLogger("deploy"),
	}
}

type placement struct {
	path string
	src  string
	mod  string
}

// Deploy links every valid resolved file into targetDir. Files deployed
// earlier that are no longer resolved are removed; files already serving
// the right source are left alone.
func (d *Deployer) Deploy(ctx context.Context, targetDir string) (*DeployResult, error) {
	done := logging.LogOperationStart(d.log, "deploy")
	defer done()

	targetDir, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("resolving target dir: %w", err)
	}

	// One snapshot for the whole deploy; a pass finishing meanwhile is
	// picked up by the next one.
	res := d.cache.current.Load()
	collection := d.cache.Collection().Name
	generation := res.generation
	result := &DeployResult{}

	var placements []placement
	for _, rf := range res.resolved() {
		src, ok := d.source(res, rf.Path)
		if !ok {
			result.Skipped++
			continue
		}
		if _, err := targetPath(targetDir, rf.Path.String()); err != nil {
			d.log.Warn().Err(err).Str("mod", rf.Mod).Msg("Skipping path")
			result.Skipped++
			continue
		}
		placements = append(placements, placement{path: rf.Path.String(), src: src, mod: rf.Mod})
	}

	paths := make([]string, len(placements))
	for i, p := range placements {
		paths[i] = p.path
	}
	result.Foreign, err = d.db.CheckFileConflicts(targetDir, collection, paths)
	if err != nil {
		return nil, err
	}
	for _, f := range result.Foreign {
		d.log.Warn().Str("path", f.RelativePath).Str("collection", f.Collection).Str("mod", f.ModName).Msg("Replacing file deployed by another collection")
	}

	previous, err := d.db.GetDeployedFiles(targetDir)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(placements))
	for _, p := range placements {
		wanted[p.path] = true
	}
	for _, f := range previous {
		if wanted[f.RelativePath] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := linker.New(f.LinkMethod).Unlink(filepath.Join(targetDir, filepath.FromSlash(f.RelativePath))); err != nil {
			return nil, fmt.Errorf("removing stale %s: %w", f.RelativePath, err)
		}
		if err := d.db.DeleteDeployedFile(targetDir, f.RelativePath); err != nil {
			return nil, err
		}
		result.Removed++
	}

	for _, p := range placements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dst, err := targetPath(targetDir, p.path)
		if err != nil {
			return nil, err
		}

		current, err := d.linker.Current(p.src, dst)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", p.path, err)
		}
		if current {
			result.Unchanged++
		} else {
			if err := d.linker.Link(p.src, dst); err != nil {
				return nil, fmt.Errorf("deploying %s: %w", p.path, err)
			}
			result.Linked++
		}

		if err := d.db.SaveDeployedFile(db.DeployedFile{
			TargetDir:    targetDir,
			RelativePath: p.path,
			Collection:   collection,
			ModName:      p.mod,
			SourcePath:   p.src,
			LinkMethod:   d.linker.Method(),
		}); err != nil {
			return nil, err
		}
	}

	if err := linker.PruneEmptyDirs(targetDir); err != nil {
		d.log.Warn().Err(err).Msg("Could not prune empty directories")
	}

	if _, err := d.db.RecordDeployment(db.Deployment{
		TargetDir:  targetDir,
		Collection: collection,
		Generation: generation,
		Files:      len(placements),
		Skipped:    result.Skipped,
		LinkMethod: d.linker.Method(),
	}); err != nil {
		return nil, err
	}

	d.log.Info().
		Str("target", targetDir).
		Int("linked", result.Linked).
		Int("unchanged", result.Unchanged).
		Int("removed", result.Removed).
		Int("skipped", result.Skipped).
		Msg("Deployed collection")
	return result, nil
}

// targetPath joins a game path below targetDir, rejecting paths that would
// escape it.
func targetPath(targetDir, rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "." || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid deploy path: %q", rel)
	}
	dest := filepath.Join(targetDir, cleaned)
	r, err := filepath.Rel(targetDir, dest)
	if err != nil {
		return "", fmt.Errorf("deploy path %q: %w", rel, err)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("deploy path escapes target directory: %q", rel)
	}
	return dest, nil
}

// source follows swaps through the table until it reaches a file on disk.
// A swap ending at a path no mod provides is served by the game itself.
func (d *Deployer) source(res *resolution, path domain.GamePath) (string, bool) {
	for i := 0; i < maxSwapDepth; i++ {
		full, ok := d.cache.lookupIn(res, path)
		if !ok {
			return "", false
		}
		if full.IsRooted() {
			return full.FullName, true
		}
		next, err := domain.NewGamePath(full.FullName)
		if err != nil || next == path {
			return "", false
		}
		path = next
	}
	d.log.Warn().Str("path", path.String()).Msg("Swap chain too long")
	return "", false
}

// Undeploy removes every tracked file from targetDir and returns how many
// were removed.
func Undeploy(ctx context.Context, database *db.DB, targetDir string) (int, error) {
	log := logging.GetLogger("deploy")
	done := logging.LogOperationStart(log, "undeploy")
	defer done()

	targetDir, err := filepath.Abs(targetDir)
	if err != nil {
		return 0, fmt.Errorf("resolving target dir: %w", err)
	}

	files, err := database.GetDeployedFiles(targetDir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		dst := filepath.Join(targetDir, filepath.FromSlash(f.RelativePath))
		if err := linker.New(f.LinkMethod).Unlink(dst); err != nil {
			return removed, fmt.Errorf("removing %s: %w", f.RelativePath, err)
		}
		if err := database.DeleteDeployedFile(targetDir, f.RelativePath); err != nil {
			return removed, err
		}
		removed++
	}

	if err := linker.PruneEmptyDirs(targetDir); err != nil {
		log.Warn().Err(err).Msg("Could not prune empty directories")
	}
	log.Info().Str("target", targetDir).Int("removed", removed).Msg("Undeployed")
	return removed, nil
}

// Package library reads and writes the mod directory: one subdirectory per
// mod holding YAML descriptors next to the mod's resource files.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"penumbra/internal/domain"
	"penumbra/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Descriptor file names
const (
	MetaFile    = "meta.yaml"
	DefaultFile = "default_mod.yaml"
	groupPrefix = "group_"
)

// scanLimit bounds concurrent mod loads during Scan
const scanLimit = 8

// Library manages the mod directory
type Library struct {
	basePath string
}

// New creates a library rooted at basePath
func New(basePath string) *Library {
	return &Library{basePath: basePath}
}

// BasePath returns the mod directory
func (l *Library) BasePath() string {
	return l.basePath
}

// ModPath returns the directory of a mod
func (l *Library) ModPath(name string) string {
	return filepath.Join(l.basePath, name)
}

// Exists checks if a mod directory exists
func (l *Library) Exists(name string) bool {
	info, err := os.Stat(l.ModPath(name))
	return err == nil && info.IsDir()
}

// Store writes a file into a mod directory
func (l *Library) Store(name, relativePath string, content []byte) error {
	fullPath := filepath.Join(l.ModPath(name), relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating mod dir: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("writing mod file: %w", err)
	}

	return nil
}

// ListFiles returns the resource files of a mod, relative to its directory
// and sorted. Descriptor files are not resources and are left out.
func (l *Library) ListFiles(name string) ([]string, error) {
	modPath := l.ModPath(name)

	var files []string
	err := filepath.WalkDir(modPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(modPath, path)
		if err != nil {
			return err
		}
		if isDescriptor(relPath) {
			return nil
		}
		files = append(files, relPath)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("listing mod files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

func isDescriptor(relPath string) bool {
	if strings.ContainsRune(relPath, filepath.Separator) {
		return false
	}
	if relPath == MetaFile || relPath == DefaultFile {
		return true
	}
	return strings.HasPrefix(relPath, groupPrefix) && strings.HasSuffix(relPath, ".yaml")
}

// Delete removes a mod directory
func (l *Library) Delete(name string) error {
	if err := os.RemoveAll(l.ModPath(name)); err != nil {
		return fmt.Errorf("deleting mod: %w", err)
	}
	return nil
}

// Size returns the total size of a mod's files
func (l *Library) Size(name string) (int64, error) {
	var totalSize int64
	err := filepath.WalkDir(l.ModPath(name), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalSize += info.Size()
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("calculating mod size: %w", err)
	}

	return totalSize, nil
}

// Names returns the mod directory names, sorted
func (l *Library) Names() ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading mod directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Scan loads every mod in the library concurrently. A mod that fails to
// load is skipped and logged; the result is sorted by name.
func (l *Library) Scan(ctx context.Context) ([]*domain.Mod, error) {
	log := logging.GetLogger("library")
	done := logging.LogOperationStart(log, "scan library")
	defer done()

	names, err := l.Names()
	if err != nil {
		return nil, err
	}

	mods := make([]*domain.Mod, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanLimit)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mod, err := l.Load(name)
			if err != nil {
				log.Warn().Err(err).Str("mod", name).Msg("Skipping mod that failed to load")
				return nil
			}
			mods[i] = mod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning library: %w", err)
	}

	loaded := mods[:0]
	for _, m := range mods {
		if m != nil {
			loaded = append(loaded, m)
		}
	}
	log.Info().Int("mods", len(loaded)).Int("skipped", len(names)-len(loaded)).Msg("Library scanned")
	return loaded, nil
}

// Load reads one mod: its descriptors and resource catalog
func (l *Library) Load(name string) (*domain.Mod, error) {
	if !l.Exists(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, name)
	}
	modPath := l.ModPath(name)
	mod := &domain.Mod{Name: name, BasePath: modPath}

	var meta metaDescriptor
	if err := readYAML(filepath.Join(modPath, MetaFile), &meta); err != nil {
		return nil, err
	}
	mod.Meta = meta.toDomain()

	var def optionDescriptor
	if err := readYAML(filepath.Join(modPath, DefaultFile), &def); err != nil {
		return nil, err
	}
	opt, err := def.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", DefaultFile, name, err)
	}
	mod.Default = opt

	groupFiles, err := filepath.Glob(filepath.Join(modPath, groupPrefix+"*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	sort.Strings(groupFiles)
	for _, path := range groupFiles {
		var gd groupDescriptor
		if err := readYAML(path, &gd); err != nil {
			return nil, err
		}
		group, err := gd.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s in %s: %w", filepath.Base(path), name, err)
		}
		mod.Groups = append(mod.Groups, group)
	}

	rel, err := l.ListFiles(name)
	if err != nil {
		return nil, err
	}
	files := make([]domain.FullPath, len(rel))
	for i, r := range rel {
		files[i] = domain.NewFullPath(modPath, r)
	}
	mod.SetFiles(files)

	if err := mod.Validate(); err != nil {
		return nil, fmt.Errorf("mod %s: %w", name, err)
	}
	return mod, nil
}

// SaveGroup rewrites the descriptor of the group at index idx, replacing
// whatever file held that index before.
func (l *Library) SaveGroup(name string, idx int, group domain.OptionGroup) error {
	modPath := l.ModPath(name)
	old, err := filepath.Glob(filepath.Join(modPath, fmt.Sprintf("%s%03d_*.yaml", groupPrefix, idx+1)))
	if err != nil {
		return fmt.Errorf("listing groups: %w", err)
	}
	for _, path := range old {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing old group file: %w", err)
		}
	}

	return writeYAML(filepath.Join(modPath, GroupFileName(idx, group.Name)), groupFromDomain(group))
}

// SaveMod writes every descriptor of mod into its directory
func (l *Library) SaveMod(mod *domain.Mod) error {
	modPath := l.ModPath(mod.Name)
	if err := writeYAML(filepath.Join(modPath, MetaFile), metaFromDomain(mod.Name, mod.Meta)); err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(modPath, DefaultFile), optionFromDomain(mod.Default)); err != nil {
		return err
	}
	for i, g := range mod.Groups {
		if err := l.SaveGroup(mod.Name, i, g); err != nil {
			return err
		}
	}
	return nil
}

// GroupFileName returns the descriptor file name of the group at index idx
func GroupFileName(idx int, name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	return fmt.Sprintf("%s%03d_%s.yaml", groupPrefix, idx+1, b.String())
}

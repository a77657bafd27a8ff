package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"penumbra/internal/domain"
	"penumbra/internal/logging"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Catalog provides the mods a collection can enable
type Catalog interface {
	Mods() []*domain.Mod
}

// ModList is a fixed Catalog
type ModList []*domain.Mod

// Mods implements Catalog
func (l ModList) Mods() []*domain.Mod {
	return l
}

// CacheOptions configures a CollectionCache
type CacheOptions struct {
	DisableSoundStreaming bool        // Allow .scd replacements
	FS                    FileSystem  // Defaults to OSFileSystem
	Identifier            Identifier  // Optional: enables ChangedItems
	KeyResolver           KeyResolver // Optional: canonicalizes aliased manipulation keys
	Logger                *zerolog.Logger
}

// Sidecar extensions carry no redirection of their own and are never
// reported missing.
var sidecarExtensions = map[string]bool{
	".meta": true,
	".rgsp": true,
}

// passMod is an enabled mod together with the settings in effect
type passMod struct {
	mod      *domain.Mod
	settings *domain.ModSettings
}

// resolution is one published result of a file pass. It is never mutated
// after publication, except for the lazily filled changed-items cache.
type resolution struct {
	generation uint64
	files      map[domain.GamePath]domain.FullPath
	owners     map[domain.GamePath]string
	missing    map[string]domain.FullPath
	ledger     *Ledger
	changed    atomic.Pointer[map[string]any]
}

// ResolvedFile is one entry of the effective path table
type ResolvedFile struct {
	Path domain.GamePath
	File domain.FullPath
	Mod  string
}

// CollectionCache holds everything needed to serve one collection: the
// effective path table, missing files, conflicts and the metadata overlay.
// Passes run one at a time; readers see whole published snapshots.
type CollectionCache struct {
	collection *domain.Collection
	catalog    Catalog
	fs         FileSystem
	identifier Identifier
	keys       KeyResolver
	log        zerolog.Logger

	soundStreamingDisabled atomic.Bool

	passMu     sync.Mutex
	generation uint64
	current    atomic.Pointer[resolution]
	meta       atomic.Pointer[metaResolution]
	classify   singleflight.Group

	// Scratch state, owned by the running pass
	registry *pathRegistry
	seen     bitset
	active   []passMod
	exists   map[string]bool
}

// NewCollectionCache creates a cache with empty results. Call Recompute to
// run the first pass.
func NewCollectionCache(collection *domain.Collection, catalog Catalog, opts CacheOptions) *CollectionCache {
	c := &CollectionCache{
		collection: collection,
		catalog:    catalog,
		fs:         opts.FS,
		identifier: opts.Identifier,
		keys:       opts.KeyResolver,
		registry:   newPathRegistry(),
		exists:     make(map[string]bool),
	}
	if c.fs == nil {
		c.fs = OSFileSystem{}
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("collection", collection.Name).Logger()
	} else {
		c.log = logging.GetLogger("resolver").With().Str("collection", collection.Name).Logger()
	}
	c.soundStreamingDisabled.Store(opts.DisableSoundStreaming)
	c.current.Store(&resolution{
		files:   map[domain.GamePath]domain.FullPath{},
		owners:  map[domain.GamePath]string{},
		missing: map[string]domain.FullPath{},
		ledger:  emptyLedger,
	})
	c.meta.Store(&metaResolution{overlay: emptyOverlay, ledger: emptyLedger})
	return c
}

// Collection returns the collection this cache serves
func (c *CollectionCache) Collection() *domain.Collection {
	return c.collection
}

// SetDisableSoundStreaming changes the .scd filter; takes effect on the
// next pass.
func (c *CollectionCache) SetDisableSoundStreaming(v bool) {
	c.soundStreamingDisabled.Store(v)
}

// Recompute runs a full file pass followed by a metadata pass. On error
// the previously published results stay in place.
func (c *CollectionCache) Recompute() error {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	if err := c.recomputeFiles(); err != nil {
		return err
	}
	return c.recomputeMeta()
}

func (c *CollectionCache) recomputeFiles() error {
	done := logging.LogOperationStart(c.log, "calculate effective file list")
	defer done()

	res, err := c.calculateEffectiveFileList()
	if err != nil {
		c.log.Error().Err(err).Msg("Resolution pass aborted")
		return err
	}
	c.current.Store(res)

	c.log.Debug().
		Uint64("generation", res.generation).
		Int("files", len(res.files)).
		Int("missing", len(res.missing)).
		Int("conflicts", res.ledger.Len()).
		Msg("Published resolution")
	return nil
}

func (c *CollectionCache) calculateEffectiveFileList() (*resolution, error) {
	c.active = c.collectActive(c.active[:0], false)
	c.registry.resetFiles()
	clear(c.exists)

	res := &resolution{
		files:   make(map[domain.GamePath]domain.FullPath, len(c.current.Load().files)),
		missing: make(map[string]domain.FullPath),
	}
	ledger := newLedgerBuilder()

	for i := range c.active {
		if err := c.addMod(res, ledger, i); err != nil {
			return nil, fmt.Errorf("resolving mod %s: %w", c.active[i].mod.Name, err)
		}
	}

	res.owners = make(map[domain.GamePath]string, len(c.registry.files))
	for path, idx := range c.registry.files {
		res.owners[path] = c.active[idx].mod.Name
	}
	res.ledger = ledger.build()
	c.generation++
	res.generation = c.generation
	return res, nil
}

// collectActive appends every enabled mod, ordered by priority descending
// and then by name so equal priorities resolve the same way on every run.
func (c *CollectionCache) collectActive(dst []passMod, metaOnly bool) []passMod {
	for _, m := range c.catalog.Mods() {
		s := c.collection.ActualSettings(m.Name)
		if s == nil || !s.Enabled {
			continue
		}
		if metaOnly && m.ManipulationCount() == 0 {
			continue
		}
		dst = append(dst, passMod{mod: m, settings: s})
	}
	sort.SliceStable(dst, func(i, j int) bool {
		if dst[i].settings.Priority != dst[j].settings.Priority {
			return dst[i].settings.Priority > dst[j].settings.Priority
		}
		return strings.ToLower(dst[i].mod.Name) < strings.ToLower(dst[j].mod.Name)
	})
	return dst
}

// addMod contributes one mod: groups from last to first, then the default
// option, then every resource file no option claimed.
func (c *CollectionCache) addMod(res *resolution, ledger *ledgerBuilder, idx int) error {
	pm := &c.active[idx]
	mod := pm.mod
	c.seen.reset(len(mod.Files))

	for g := len(mod.Groups) - 1; g >= 0; g-- {
		group := &mod.Groups[g]
		setting := group.FixSetting(pm.settings.Setting(group))
		active, err := group.ActiveOptions(setting)
		if err != nil {
			return err
		}
		for _, o := range active {
			c.addOption(res, ledger, idx, &group.Options[o], true)
		}
		for o := range group.Options {
			if !containsIndex(active, o) {
				c.addOption(res, ledger, idx, &group.Options[o], false)
			}
		}
	}

	c.addOption(res, ledger, idx, &mod.Default, true)
	c.addRemainingFiles(res, ledger, idx)
	return nil
}

// addOption marks the option's files as claimed and, when the option is
// selected, registers its redirections and swaps.
func (c *CollectionCache) addOption(res *resolution, ledger *ledgerBuilder, idx int, opt *domain.Option, enabled bool) {
	mod := c.active[idx].mod
	for path, rel := range opt.Files {
		full := domain.NewFullPath(mod.BasePath, rel)
		fileIdx := mod.IndexOf(full)
		if fileIdx < 0 {
			addMissing(res, full)
			continue
		}

		registered := mod.Files[fileIdx]
		if !c.fileExists(registered) {
			addMissing(res, registered)
			continue
		}

		c.seen.set(fileIdx)
		if enabled {
			c.addFile(res, ledger, idx, path, registered)
		}
	}

	if !enabled {
		return
	}
	for path, target := range opt.FileSwaps {
		c.addFile(res, ledger, idx, path, domain.SwapPath(target))
	}
}

func (c *CollectionCache) addRemainingFiles(res *resolution, ledger *ledgerBuilder, idx int) {
	mod := c.active[idx].mod
	for i, file := range mod.Files {
		if c.seen.get(i) || sidecarExtensions[file.Extension()] {
			continue
		}
		if !c.fileExists(file) {
			addMissing(res, file)
			continue
		}

		path, err := file.ToGamePath(mod.BasePath)
		if err != nil {
			c.log.Warn().Err(err).Str("mod", mod.Name).Str("file", file.FullName).Msg("Could not convert file to game path")
			continue
		}
		c.addFile(res, ledger, idx, path, file)
	}
}

// addFile registers one redirection. First registration owns the path; a
// later contributor takes it over only with strictly higher priority.
// Every collision between different mods is recorded.
func (c *CollectionCache) addFile(res *resolution, ledger *ledgerBuilder, idx int, path domain.GamePath, file domain.FullPath) {
	if c.filterFile(path) {
		return
	}

	owner, ok := c.registry.files[path]
	if !ok {
		c.registry.files[path] = idx
		res.files[path] = file
		return
	}
	if owner == idx {
		return
	}

	ledger.add(PathKey(path), &c.active[owner], &c.active[idx])
	if c.active[idx].settings.Priority > c.active[owner].settings.Priority {
		c.registry.files[path] = idx
		res.files[path] = file
	}
}

// filterFile drops .scd replacements while sound streaming is enabled in
// the game, since replacing streamed sounds crashes it.
func (c *CollectionCache) filterFile(path domain.GamePath) bool {
	return !c.soundStreamingDisabled.Load() && path.HasSuffix(".scd")
}

func (c *CollectionCache) fileExists(f domain.FullPath) bool {
	if ok, cached := c.exists[f.FullName]; cached {
		return ok
	}
	ok := c.fs.Exists(f.FullName)
	c.exists[f.FullName] = ok
	return ok
}

func addMissing(res *resolution, f domain.FullPath) {
	if sidecarExtensions[f.Extension()] {
		return
	}
	res.missing[f.InternalName] = f
}

func containsIndex(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Lookup returns the replacement for path. Entries whose internal name is
// too long for the game, or whose rooted file vanished since the pass, are
// treated as unresolved.
func (c *CollectionCache) Lookup(path domain.GamePath) (domain.FullPath, bool) {
	return c.lookupIn(c.current.Load(), path)
}

func (c *CollectionCache) lookupIn(res *resolution, path domain.GamePath) (domain.FullPath, bool) {
	candidate, ok := res.files[path]
	if !ok || !c.servable(candidate) {
		return domain.FullPath{}, false
	}
	return candidate, true
}

// servable rejects over-long names and rooted files that vanished after the pass
func (c *CollectionCache) servable(f domain.FullPath) bool {
	if len(f.InternalName) > domain.MaxGamePathLength {
		return false
	}
	return !f.IsRooted() || c.fs.Exists(f.FullName)
}

// Owner returns the mod that provides path in the current table
func (c *CollectionCache) Owner(path domain.GamePath) (string, bool) {
	mod, ok := c.current.Load().owners[path]
	return mod, ok
}

// ResolvedFiles returns the effective path table ordered by path
func (c *CollectionCache) ResolvedFiles() []ResolvedFile {
	return c.current.Load().resolved()
}

func (res *resolution) resolved() []ResolvedFile {
	out := make([]ResolvedFile, 0, len(res.files))
	for path, file := range res.files {
		out = append(out, ResolvedFile{Path: path, File: file, Mod: res.owners[path]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path.Compare(out[j].Path) < 0 })
	return out
}

// ResolvedCount returns the number of table entries
func (c *CollectionCache) ResolvedCount() int {
	return len(c.current.Load().files)
}

// MissingFiles returns files referenced by enabled mods but absent on disk
func (c *CollectionCache) MissingFiles() []domain.FullPath {
	res := c.current.Load()
	out := make([]domain.FullPath, 0, len(res.missing))
	for _, f := range res.missing {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InternalName < out[j].InternalName })
	return out
}

// Conflicts returns the file and manipulation conflicts of mod from the
// most recent passes.
func (c *CollectionCache) Conflicts(mod string) []ModConflict {
	out := c.current.Load().ledger.ForMod(mod)
	return append(out, c.meta.Load().ledger.ForMod(mod)...)
}

// ConflictRecords returns every file record followed by every manipulation
// record.
func (c *CollectionCache) ConflictRecords() []ConflictRecord {
	out := c.current.Load().ledger.Records()
	return append(out, c.meta.Load().ledger.Records()...)
}

// Generation identifies the published file pass; it increases by one per
// successful pass.
func (c *CollectionCache) Generation() uint64 {
	return c.current.Load().generation
}

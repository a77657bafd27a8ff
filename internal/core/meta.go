package core

import (
	"fmt"
	"sort"

	"penumbra/internal/domain"
	"penumbra/internal/logging"
)

// KeyResolver maps aliased manipulation keys onto the key the game
// actually reads, so that aliases collide with each other.
type KeyResolver interface {
	Canonical(key domain.MetaKey) domain.MetaKey
}

// OverlayEntry is the winning manipulation for one key
type OverlayEntry struct {
	Manipulation domain.MetaManipulation
	Mod          string
	Priority     domain.Priority
}

// Overlay is the effective set of metadata manipulations
type Overlay struct {
	entries map[domain.MetaKey]OverlayEntry
}

var emptyOverlay = &Overlay{entries: map[domain.MetaKey]OverlayEntry{}}

// Get returns the entry for key
func (o *Overlay) Get(key domain.MetaKey) (OverlayEntry, bool) {
	e, ok := o.entries[key]
	return e, ok
}

// Len returns the number of manipulated records
func (o *Overlay) Len() int {
	return len(o.entries)
}

// ByType returns the entries patching one table, in key order
func (o *Overlay) ByType(t domain.MetaType) []OverlayEntry {
	var out []OverlayEntry
	for k, e := range o.entries {
		if k.Type == t {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

// All returns every entry in key order
func (o *Overlay) All() []OverlayEntry {
	out := make([]OverlayEntry, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []OverlayEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Manipulation.Key.Compare(entries[j].Manipulation.Key) < 0
	})
}

type metaResolution struct {
	generation uint64
	overlay    *Overlay
	ledger     *Ledger
}

// RecomputeMetadataOnly rebuilds the overlay and manipulation conflicts
// from enabled mods that carry manipulations. The path table is untouched.
func (c *CollectionCache) RecomputeMetadataOnly() error {
	c.passMu.Lock()
	defer c.passMu.Unlock()
	return c.recomputeMeta()
}

// Overlay returns the published metadata overlay
func (c *CollectionCache) Overlay() *Overlay {
	return c.meta.Load().overlay
}

// MetaGeneration identifies the published metadata pass
func (c *CollectionCache) MetaGeneration() uint64 {
	return c.meta.Load().generation
}

func (c *CollectionCache) recomputeMeta() error {
	done := logging.LogOperationStart(c.log, "calculate metadata overlay")
	defer done()

	active := c.collectActive(nil, true)
	c.registry.resetMeta()

	overlay := &Overlay{entries: make(map[domain.MetaKey]OverlayEntry)}
	ledger := newLedgerBuilder()

	for i := range active {
		mod := active[i].mod
		for g := len(mod.Groups) - 1; g >= 0; g-- {
			group := &mod.Groups[g]
			opts, err := group.ActiveOptions(group.FixSetting(active[i].settings.Setting(group)))
			if err != nil {
				err = fmt.Errorf("resolving manipulations of mod %s: %w", mod.Name, err)
				c.log.Error().Err(err).Msg("Metadata pass aborted")
				return err
			}
			for _, o := range opts {
				c.addManipulations(overlay, ledger, active, i, group.Options[o].Manipulations)
			}
		}
		c.addManipulations(overlay, ledger, active, i, mod.Default.Manipulations)
	}

	prev := c.meta.Load()
	c.meta.Store(&metaResolution{
		generation: prev.generation + 1,
		overlay:    overlay,
		ledger:     ledger.build(),
	})

	c.log.Debug().
		Int("mods", len(active)).
		Int("manipulations", overlay.Len()).
		Msg("Published metadata overlay")
	return nil
}

// addManipulations registers with the same ownership rule as files: first
// wins, strictly higher priority takes over, collisions are recorded.
func (c *CollectionCache) addManipulations(overlay *Overlay, ledger *ledgerBuilder, active []passMod, idx int, manips []domain.MetaManipulation) {
	for _, m := range manips {
		key := m.Key
		if c.keys != nil {
			key = c.keys.Canonical(key)
		}
		m.Key = key
		entry := OverlayEntry{
			Manipulation: m,
			Mod:          active[idx].mod.Name,
			Priority:     active[idx].settings.Priority,
		}

		owner, ok := c.registry.meta[key]
		if !ok {
			c.registry.meta[key] = idx
			overlay.entries[key] = entry
			continue
		}
		if owner == idx {
			continue
		}

		ledger.add(MetaConflictKey(key), &active[owner], &active[idx])
		if active[idx].settings.Priority > active[owner].settings.Priority {
			c.registry.meta[key] = idx
			overlay.entries[key] = entry
		}
	}
}

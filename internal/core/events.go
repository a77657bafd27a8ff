package core

import (
	"fmt"

	"penumbra/internal/domain"
)

// ChangeType is the kind of settings edit that happened
type ChangeType int

const (
	ChangeEnabled ChangeType = iota
	ChangePriority
	ChangeSetting
	ChangeModEdited // Mod reloaded from disk, or a group converted
	ChangeInheritance
)

func (t ChangeType) String() string {
	switch t {
	case ChangeEnabled:
		return "enabled"
	case ChangePriority:
		return "priority"
	case ChangeSetting:
		return "setting"
	case ChangeModEdited:
		return "mod-edited"
	case ChangeInheritance:
		return "inheritance"
	default:
		return "unknown"
	}
}

// Change describes one edit after it has been applied to the collection
type Change struct {
	Type       ChangeType
	Mod        string
	Group      string // For ChangeSetting
	WasEnabled bool   // Whether the mod was enabled before the edit
}

// Passes reports which passes Apply ran
type Passes struct {
	Files bool
	Meta  bool
}

// Apply runs the passes a change requires. Edits to mods that are neither
// enabled now nor were before cannot move the result and run nothing. A
// setting change only reruns the half of the resolution the group feeds.
func (c *CollectionCache) Apply(ch Change) (Passes, error) {
	var p Passes

	if ch.Type == ChangeInheritance {
		p = Passes{Files: true, Meta: true}
		return p, c.Recompute()
	}

	mod := c.findMod(ch.Mod)
	if mod == nil {
		return p, fmt.Errorf("applying %s change: %w: %s", ch.Type, domain.ErrModNotFound, ch.Mod)
	}

	enabled := false
	if s := c.collection.ActualSettings(mod.Name); s != nil {
		enabled = s.Enabled
	}
	if !enabled && !ch.WasEnabled {
		return p, nil
	}

	switch ch.Type {
	case ChangeSetting:
		group, _, err := mod.Group(ch.Group)
		if err != nil {
			return p, fmt.Errorf("applying setting change on %s: %w", ch.Mod, err)
		}
		p.Files = groupTouchesFiles(group)
		p.Meta = groupTouchesMeta(group)
	default:
		p.Files = true
		p.Meta = mod.ManipulationCount() > 0
	}

	c.passMu.Lock()
	defer c.passMu.Unlock()
	if p.Files {
		if err := c.recomputeFiles(); err != nil {
			return p, err
		}
	}
	if p.Meta {
		if err := c.recomputeMeta(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (c *CollectionCache) findMod(name string) *domain.Mod {
	for _, m := range c.catalog.Mods() {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func groupTouchesFiles(g *domain.OptionGroup) bool {
	for _, o := range g.Options {
		if len(o.Files) > 0 || len(o.FileSwaps) > 0 {
			return true
		}
	}
	return false
}

func groupTouchesMeta(g *domain.OptionGroup) bool {
	for _, o := range g.Options {
		if len(o.Manipulations) > 0 {
			return true
		}
	}
	return false
}

package core

import (
	"sort"
	"strings"

	"penumbra/internal/domain"
)

// ConflictKey is the contested path or manipulation key
type ConflictKey struct {
	Path   domain.GamePath
	Meta   domain.MetaKey
	IsMeta bool
}

// PathKey wraps a game path as a conflict key
func PathKey(p domain.GamePath) ConflictKey {
	return ConflictKey{Path: p}
}

// MetaConflictKey wraps a manipulation key as a conflict key
func MetaConflictKey(k domain.MetaKey) ConflictKey {
	return ConflictKey{Meta: k, IsMeta: true}
}

func (k ConflictKey) String() string {
	if k.IsMeta {
		return k.Meta.String()
	}
	return k.Path.String()
}

// Compare orders paths before manipulations, then by value
func (k ConflictKey) Compare(o ConflictKey) int {
	switch {
	case k.IsMeta != o.IsMeta:
		if k.IsMeta {
			return 1
		}
		return -1
	case k.IsMeta:
		return k.Meta.Compare(o.Meta)
	default:
		return k.Path.Compare(o.Path)
	}
}

// ConflictRecord is one collision between two mods over one key. With
// equal priorities the first registered mod is the winner.
type ConflictRecord struct {
	Key            ConflictKey
	Winner         string
	Loser          string
	WinnerPriority domain.Priority
	LoserPriority  domain.Priority
}

// Tie reports whether the collision was between equal priorities
func (r ConflictRecord) Tie() bool {
	return r.WinnerPriority == r.LoserPriority
}

// ModConflict is a conflict seen from one of its two mods
type ModConflict struct {
	Other string
	Key   ConflictKey
	Won   bool
	Tie   bool
}

// ModConflicts groups one mod's conflicts with another mod
type ModConflicts struct {
	Other         string
	HasPriority   bool // This mod won every contested key
	Solved        bool // Priorities differ, so the outcome is intended
	Paths         []domain.GamePath
	Manipulations []domain.MetaKey
}

// Ledger is the read-only conflict record of one pass
type Ledger struct {
	records []ConflictRecord
	byMod   map[string][]int
}

var emptyLedger = &Ledger{byMod: map[string][]int{}}

// Len returns the number of records
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of all records in key order
func (l *Ledger) Records() []ConflictRecord {
	out := make([]ConflictRecord, len(l.records))
	copy(out, l.records)
	return out
}

// ForMod returns the conflicts mod took part in, won or lost
func (l *Ledger) ForMod(mod string) []ModConflict {
	idx := l.byMod[mod]
	out := make([]ModConflict, 0, len(idx))
	for _, i := range idx {
		r := l.records[i]
		c := ModConflict{Key: r.Key, Tie: r.Tie()}
		if r.Winner == mod {
			c.Other, c.Won = r.Loser, true
		} else {
			c.Other = r.Winner
		}
		out = append(out, c)
	}
	return out
}

// ledgerBuilder accumulates records during a pass
type ledgerBuilder struct {
	records []ConflictRecord
	seen    map[ConflictRecord]struct{}
}

func newLedgerBuilder() *ledgerBuilder {
	return &ledgerBuilder{seen: make(map[ConflictRecord]struct{})}
}

// add records a collision between the current owner and a new contributor.
// The contributor only wins on strictly greater priority.
func (b *ledgerBuilder) add(key ConflictKey, owner, contender *passMod) {
	r := ConflictRecord{
		Key:            key,
		Winner:         owner.mod.Name,
		Loser:          contender.mod.Name,
		WinnerPriority: owner.settings.Priority,
		LoserPriority:  contender.settings.Priority,
	}
	if contender.settings.Priority > owner.settings.Priority {
		r.Winner, r.Loser = r.Loser, r.Winner
		r.WinnerPriority, r.LoserPriority = r.LoserPriority, r.WinnerPriority
	}
	if _, dup := b.seen[r]; dup {
		return
	}
	b.seen[r] = struct{}{}
	b.records = append(b.records, r)
}

// build sorts the records and indexes them by both participants
func (b *ledgerBuilder) build() *Ledger {
	sort.Slice(b.records, func(i, j int) bool {
		ri, rj := b.records[i], b.records[j]
		if c := ri.Key.Compare(rj.Key); c != 0 {
			return c < 0
		}
		if ri.Winner != rj.Winner {
			return ri.Winner < rj.Winner
		}
		return ri.Loser < rj.Loser
	})

	l := &Ledger{records: b.records, byMod: make(map[string][]int)}
	for i, r := range l.records {
		l.byMod[r.Winner] = append(l.byMod[r.Winner], i)
		l.byMod[r.Loser] = append(l.byMod[r.Loser], i)
	}
	return l
}

// GroupConflicts folds per-key conflicts into one entry per other mod,
// ordered with unsolved ties first and then by mod name.
func GroupConflicts(conflicts []ModConflict) []ModConflicts {
	byOther := make(map[string]*ModConflicts)
	var order []string
	for _, c := range conflicts {
		g, ok := byOther[c.Other]
		if !ok {
			g = &ModConflicts{Other: c.Other, HasPriority: true, Solved: true}
			byOther[c.Other] = g
			order = append(order, c.Other)
		}
		g.HasPriority = g.HasPriority && c.Won
		g.Solved = g.Solved && !c.Tie
		if c.Key.IsMeta {
			g.Manipulations = append(g.Manipulations, c.Key.Meta)
		} else {
			g.Paths = append(g.Paths, c.Key.Path)
		}
	}

	out := make([]ModConflicts, 0, len(order))
	for _, name := range order {
		out = append(out, *byOther[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Solved != out[j].Solved {
			return !out[i].Solved
		}
		return strings.ToLower(out[i].Other) < strings.ToLower(out[j].Other)
	})
	return out
}

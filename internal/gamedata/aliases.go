package gamedata

import (
	"penumbra/internal/core"
	"penumbra/internal/domain"
)

// RaceAliases canonicalizes gender-race codes that share one table row in
// the game, so manipulations of aliased codes collide. Only the race-keyed
// tables are affected.
type RaceAliases struct {
	table *Table
}

var _ core.KeyResolver = RaceAliases{}

// NewRaceAliases creates a resolver over the table's race_aliases
func NewRaceAliases(table *Table) RaceAliases {
	if table == nil {
		table = NewTable()
	}
	return RaceAliases{table: table}
}

// Canonical implements core.KeyResolver. Alias chains are followed to
// their end.
func (r RaceAliases) Canonical(key domain.MetaKey) domain.MetaKey {
	if key.Type != domain.MetaEqdp && key.Type != domain.MetaEst {
		return key
	}
	seen := map[uint16]bool{}
	for !seen[key.GenderRace] {
		seen[key.GenderRace] = true
		to, ok := r.table.aliases[key.GenderRace]
		if !ok {
			break
		}
		key.GenderRace = to
	}
	return key
}

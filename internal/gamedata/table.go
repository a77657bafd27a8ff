// Package gamedata identifies which in-game items a resource path belongs to
// and canonicalizes aliased manipulation keys, both driven by a YAML item
// table.
package gamedata

import (
	"errors"
	"fmt"
	"os"

	"penumbra/internal/domain"

	"gopkg.in/yaml.v3"
)

// Kind is the family of an identified item
type Kind string

const (
	KindEquipment     Kind = "equipment"
	KindAccessory     Kind = "accessory"
	KindWeapon        Kind = "weapon"
	KindMonster       Kind = "monster"
	KindDemihuman     Kind = "demihuman"
	KindCustomization Kind = "customization"
)

// ItemRef identifies one item. It is the reference handed out in the
// changed-items index.
type ItemRef struct {
	Kind        Kind
	PrimaryID   uint16
	SecondaryID uint16
	Slot        string
}

type equipmentEntry struct {
	ID   uint16 `yaml:"id"`
	Slot string `yaml:"slot"`
	Name string `yaml:"name"`
}

type modelEntry struct {
	ID   uint16 `yaml:"id"`
	Body uint16 `yaml:"body"`
	Name string `yaml:"name"`
}

type tableFile struct {
	Equipment   []equipmentEntry  `yaml:"equipment"`
	Weapons     []modelEntry      `yaml:"weapons"`
	Monsters    []modelEntry      `yaml:"monsters"`
	Demihumans  []modelEntry      `yaml:"demihumans"`
	Races       map[uint16]string `yaml:"races"`
	RaceAliases map[uint16]uint16 `yaml:"race_aliases"`
}

type modelKey struct {
	kind Kind
	id   uint16
	body uint16
}

type slotKey struct {
	id   uint16
	slot string
}

// Table is the loaded item table
type Table struct {
	equipment map[slotKey]string
	models    map[modelKey]string
	races     map[uint16]string
	aliases   map[uint16]uint16
}

// NewTable returns an empty table. Identification still works, naming
// items by their ids.
func NewTable() *Table {
	return &Table{
		equipment: map[slotKey]string{},
		models:    map[modelKey]string{},
		races:     map[uint16]string{},
		aliases:   map[uint16]uint16{},
	}
}

// LoadTable reads an item table; a missing file yields an empty table
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return NewTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewTable(), nil
		}
		return nil, fmt.Errorf("reading item table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes an item table document
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing item table: %v", domain.ErrInvalidConfig, err)
	}

	t := NewTable()
	for _, e := range f.Equipment {
		t.equipment[slotKey{e.ID, e.Slot}] = e.Name
	}
	for _, e := range f.Weapons {
		t.models[modelKey{KindWeapon, e.ID, e.Body}] = e.Name
	}
	for _, e := range f.Monsters {
		t.models[modelKey{KindMonster, e.ID, e.Body}] = e.Name
	}
	for _, e := range f.Demihumans {
		t.models[modelKey{KindDemihuman, e.ID, e.Body}] = e.Name
	}
	for code, name := range f.Races {
		t.races[code] = name
	}
	for from, to := range f.RaceAliases {
		if from == to {
			continue
		}
		t.aliases[from] = to
	}
	return t, nil
}

// Len returns the number of named items
func (t *Table) Len() int {
	return len(t.equipment) + len(t.models)
}

// RaceName returns the display name of a gender-race code
func (t *Table) RaceName(code uint16) string {
	if name, ok := t.races[code]; ok {
		return name
	}
	return fmt.Sprintf("c%04d", code)
}

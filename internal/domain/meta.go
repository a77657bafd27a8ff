package domain

import (
	"fmt"
	"strings"
)

// MetaType identifies which game data table a manipulation patches
type MetaType uint8

const (
	MetaUnknown MetaType = iota
	MetaEqp              // Equipment parameters, per set and slot
	MetaEqdp             // Equipment deformation, per set, slot and gender-race
	MetaGmp              // Visor parameters, per set
	MetaEst              // Extra skeleton table, per set, slot and gender-race
	MetaImc              // Variant table, per set, variant and slot
	MetaRsp              // Racial scaling, per subrace and attribute
)

var metaTypeNames = map[MetaType]string{
	MetaEqp:  "eqp",
	MetaEqdp: "eqdp",
	MetaGmp:  "gmp",
	MetaEst:  "est",
	MetaImc:  "imc",
	MetaRsp:  "rsp",
}

func (t MetaType) String() string {
	if name, ok := metaTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseMetaType converts a string to MetaType
func ParseMetaType(s string) (MetaType, error) {
	s = strings.ToLower(s)
	for t, name := range metaTypeNames {
		if name == s {
			return t, nil
		}
	}
	return MetaUnknown, fmt.Errorf("%w: unknown manipulation type %q", ErrInvalidConfig, s)
}

// MetaKey identifies the record a manipulation patches. Fields that do not
// apply to a type stay zero, so two manipulations collide exactly when
// their keys are equal.
type MetaKey struct {
	Type        MetaType
	PrimaryID   uint16 // Set id, or subrace for rsp
	SecondaryID uint16 // Body or weapon id where the table has one, attribute for rsp
	Slot        uint8
	Variant     uint8
	GenderRace  uint16
}

// String renders the key for reports
func (k MetaKey) String() string {
	switch k.Type {
	case MetaEqp:
		return fmt.Sprintf("eqp %04d slot %d", k.PrimaryID, k.Slot)
	case MetaEqdp:
		return fmt.Sprintf("eqdp %04d slot %d race %04d", k.PrimaryID, k.Slot, k.GenderRace)
	case MetaGmp:
		return fmt.Sprintf("gmp %04d", k.PrimaryID)
	case MetaEst:
		return fmt.Sprintf("est %04d slot %d race %04d", k.PrimaryID, k.Slot, k.GenderRace)
	case MetaImc:
		return fmt.Sprintf("imc %04d/%04d variant %d slot %d", k.PrimaryID, k.SecondaryID, k.Variant, k.Slot)
	case MetaRsp:
		return fmt.Sprintf("rsp subrace %d attribute %d", k.PrimaryID, k.SecondaryID)
	default:
		return fmt.Sprintf("unknown %d", k.Type)
	}
}

// Compare orders keys for stable output
func (k MetaKey) Compare(o MetaKey) int {
	fields := [][2]int{
		{int(k.Type), int(o.Type)},
		{int(k.PrimaryID), int(o.PrimaryID)},
		{int(k.SecondaryID), int(o.SecondaryID)},
		{int(k.Slot), int(o.Slot)},
		{int(k.Variant), int(o.Variant)},
		{int(k.GenderRace), int(o.GenderRace)},
	}
	for _, f := range fields {
		switch {
		case f[0] < f[1]:
			return -1
		case f[0] > f[1]:
			return 1
		}
	}
	return 0
}

// MetaManipulation is one patched record: which record, and its new entry
type MetaManipulation struct {
	Key   MetaKey
	Entry uint64 // Table-specific encoded entry
}

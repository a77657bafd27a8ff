package gamedata

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"penumbra/internal/core"
	"penumbra/internal/domain"
)

var equipmentSlots = []string{"met", "top", "glv", "dwn", "sho"}

var accessorySlots = []string{"ear", "nek", "wrs", "rir", "ril"}

var customizationParts = map[string]byte{
	"hair": 'h',
	"face": 'f',
	"tail": 't',
	"body": 'b',
	"zear": 'z',
}

// Identifier maps resource paths onto items using a Table. Paths it does
// not recognize identify as nothing; recognized shapes with malformed ids
// are errors.
type Identifier struct {
	table *Table
}

var _ core.Identifier = (*Identifier)(nil)

// NewIdentifier creates an identifier over table
func NewIdentifier(table *Table) *Identifier {
	if table == nil {
		table = NewTable()
	}
	return &Identifier{table: table}
}

// Identify implements core.Identifier
func (id *Identifier) Identify(p domain.GamePath) ([]core.Item, error) {
	parts := strings.Split(p.String(), "/")
	if len(parts) < 3 || parts[0] != "chara" {
		return nil, nil
	}

	switch parts[1] {
	case "equipment":
		return id.gear(parts, 'e', KindEquipment, equipmentSlots)
	case "accessory":
		return id.gear(parts, 'a', KindAccessory, accessorySlots)
	case "weapon":
		return id.model(parts, 'w', KindWeapon, "Weapon")
	case "monster":
		return id.model(parts, 'm', KindMonster, "Monster")
	case "demihuman":
		return id.model(parts, 'd', KindDemihuman, "Demihuman")
	case "human":
		return id.customization(parts)
	default:
		return nil, nil
	}
}

// gear handles chara/<equipment|accessory>/<x>NNNN/..., taking the slot
// from the file name. Files without a slot belong to every slot of the set.
func (id *Identifier) gear(parts []string, prefix byte, kind Kind, slots []string) ([]core.Item, error) {
	set, err := parseID(parts[2], prefix)
	if err != nil {
		return nil, err
	}

	file := path.Base(strings.Join(parts, "/"))
	if slot := findSlot(file, slots); slot != "" {
		return []core.Item{id.gearItem(kind, set, slot)}, nil
	}

	items := make([]core.Item, 0, len(slots))
	for _, slot := range slots {
		items = append(items, id.gearItem(kind, set, slot))
	}
	return items, nil
}

func (id *Identifier) gearItem(kind Kind, set uint16, slot string) core.Item {
	name, ok := id.table.equipment[slotKey{set, slot}]
	if !ok {
		name = fmt.Sprintf("%s %04d (%s)", titleCase(string(kind)), set, slot)
	}
	return core.Item{Name: name, Ref: ItemRef{Kind: kind, PrimaryID: set, Slot: slot}}
}

// model handles chara/<kind>/<x>NNNN/obj/body/bNNNN/...
func (id *Identifier) model(parts []string, prefix byte, kind Kind, label string) ([]core.Item, error) {
	primary, err := parseID(parts[2], prefix)
	if err != nil {
		return nil, err
	}

	var body uint16
	if len(parts) > 5 && parts[3] == "obj" {
		b := parts[5]
		if len(b) == 0 {
			return nil, fmt.Errorf("empty model id in %s", strings.Join(parts, "/"))
		}
		if body, err = parseID(b, b[0]); err != nil {
			return nil, err
		}
	}

	name, ok := id.table.models[modelKey{kind, primary, body}]
	if !ok {
		name = fmt.Sprintf("%s %04d-%04d", label, primary, body)
	}
	return []core.Item{{Name: name, Ref: ItemRef{Kind: kind, PrimaryID: primary, SecondaryID: body}}}, nil
}

// customization handles chara/human/cNNNN/obj/<part>/<x>NNNN/...
func (id *Identifier) customization(parts []string) ([]core.Item, error) {
	race, err := parseID(parts[2], 'c')
	if err != nil {
		return nil, err
	}
	if len(parts) < 6 || parts[3] != "obj" {
		return nil, nil
	}
	prefix, ok := customizationParts[parts[4]]
	if !ok {
		return nil, nil
	}
	n, err := parseID(parts[5], prefix)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s %04d (%s)", titleCase(parts[4]), n, id.table.RaceName(race))
	return []core.Item{{Name: name, Ref: ItemRef{Kind: KindCustomization, PrimaryID: race, SecondaryID: n, Slot: parts[4]}}}, nil
}

// parseID parses "<prefix>NNNN"
func parseID(seg string, prefix byte) (uint16, error) {
	if len(seg) != 5 || seg[0] != prefix {
		return 0, fmt.Errorf("malformed id %q, want %c followed by four digits", seg, prefix)
	}
	n, err := strconv.ParseUint(seg[1:], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("malformed id %q: %w", seg, err)
	}
	return uint16(n), nil
}

// findSlot returns the slot token in a file name such as
// "mt_c0101e0001_top_a.mtrl", or "".
func findSlot(file string, slots []string) string {
	stem := strings.TrimSuffix(file, path.Ext(file))
	for _, tok := range strings.Split(stem, "_") {
		for _, s := range slots {
			if tok == s {
				return s
			}
		}
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

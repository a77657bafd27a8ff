package domain

import (
	"fmt"
	"math/bits"
)

// MaxMultiOptions is the number of options a Setting bitmask can address
const MaxMultiOptions = 64

// GroupType determines how a group's Setting is interpreted
type GroupType int

const (
	GroupSingle GroupType = iota // Setting is the index of the one active option
	GroupMulti                   // Setting is a bitmask of active options
)

func (t GroupType) String() string {
	switch t {
	case GroupSingle:
		return "single"
	case GroupMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// ParseGroupType converts a string to GroupType
func ParseGroupType(s string) (GroupType, error) {
	switch s {
	case "single", "Single", "":
		return GroupSingle, nil
	case "multi", "Multi":
		return GroupMulti, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidGroupType, s)
	}
}

// Setting is a persisted group selection
type Setting uint64

// SettingMulti returns the bitmask with only option idx active
func SettingMulti(idx int) Setting {
	return Setting(1) << uint(idx)
}

// AsIndex interprets the setting as a single-selection index
func (s Setting) AsIndex() int {
	return int(s)
}

// HasFlag reports whether option idx is active in a multi-selection
func (s Setting) HasFlag(idx int) bool {
	return idx >= 0 && idx < MaxMultiOptions && s&SettingMulti(idx) != 0
}

// Option is one selectable entry of a group
type Option struct {
	Name          string
	Description   string
	Files         map[GamePath]string   // Game path -> mod-relative file
	FileSwaps     map[GamePath]GamePath // Game path -> game path it is served from
	Manipulations []MetaManipulation
}

// IsEmpty reports whether the option changes nothing
func (o *Option) IsEmpty() bool {
	return len(o.Files) == 0 && len(o.FileSwaps) == 0 && len(o.Manipulations) == 0
}

// OptionGroup is an ordered list of options sharing one selection.
// Later options and later groups take precedence over earlier ones.
type OptionGroup struct {
	Name            string
	Description     string
	Type            GroupType
	Priority        Priority
	Options         []Option
	DefaultSettings Setting
}

// Validate checks invariants the resolution pass relies on
func (g *OptionGroup) Validate() error {
	switch g.Type {
	case GroupSingle:
	case GroupMulti:
		if len(g.Options) > MaxMultiOptions {
			return fmt.Errorf("%w: group %q has %d", ErrTooManyOptions, g.Name, len(g.Options))
		}
	default:
		return fmt.Errorf("%w: group %q has type %d", ErrInvalidGroupType, g.Name, int(g.Type))
	}
	return nil
}

// FixSetting clamps a persisted selection to the group's current options.
// Multi bitmasks are kept as-is; bits for absent options never match.
func (g *OptionGroup) FixSetting(s Setting) Setting {
	if g.Type != GroupSingle {
		return s
	}
	if len(g.Options) == 0 {
		return 0
	}
	if last := Setting(len(g.Options) - 1); s > last {
		return last
	}
	return s
}

// ActiveOptions returns the indices of options contributing under s, in
// registration order: Single yields only the selected index, Multi yields
// set bits from the highest index down so later options register first.
func (g *OptionGroup) ActiveOptions(s Setting) ([]int, error) {
	switch g.Type {
	case GroupSingle:
		idx := s.AsIndex()
		if idx < 0 || idx >= len(g.Options) {
			return nil, nil
		}
		return []int{idx}, nil
	case GroupMulti:
		var active []int
		for i := len(g.Options) - 1; i >= 0; i-- {
			if s.HasFlag(i) {
				active = append(active, i)
			}
		}
		return active, nil
	default:
		return nil, fmt.Errorf("%w: group %q has type %d", ErrInvalidGroupType, g.Name, int(g.Type))
	}
}

// ConvertToMulti returns a multi group with the same options; the default
// index i becomes bit i.
func (g *OptionGroup) ConvertToMulti() OptionGroup {
	multi := g.clone()
	multi.Type = GroupMulti
	if g.Type == GroupSingle && len(g.Options) > 0 {
		multi.DefaultSettings = SettingMulti(g.FixSetting(g.DefaultSettings).AsIndex())
	}
	return multi
}

// ConvertToSingle returns a single group with the same options; the
// default becomes the lowest set bit of the old bitmask.
func (g *OptionGroup) ConvertToSingle() OptionGroup {
	single := g.clone()
	single.Type = GroupSingle
	if g.Type == GroupMulti {
		single.DefaultSettings = 0
		if g.DefaultSettings != 0 {
			single.DefaultSettings = Setting(bits.TrailingZeros64(uint64(g.DefaultSettings)))
		}
		single.DefaultSettings = single.FixSetting(single.DefaultSettings)
	}
	return single
}

func (g *OptionGroup) clone() OptionGroup {
	c := *g
	c.Options = make([]Option, len(g.Options))
	copy(c.Options, g.Options)
	return c
}

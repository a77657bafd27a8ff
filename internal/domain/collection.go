package domain

// ModSettings is a collection's configuration of one mod
type ModSettings struct {
	Enabled  bool
	Priority Priority
	Settings map[string]Setting // Group name -> selection
}

// Setting returns the persisted selection for g, or its default
func (s *ModSettings) Setting(g *OptionGroup) Setting {
	if v, ok := s.Settings[g.Name]; ok {
		return v
	}
	return g.DefaultSettings
}

// Clone returns a deep copy
func (s *ModSettings) Clone() *ModSettings {
	c := &ModSettings{
		Enabled:  s.Enabled,
		Priority: s.Priority,
		Settings: make(map[string]Setting, len(s.Settings)),
	}
	for k, v := range s.Settings {
		c.Settings[k] = v
	}
	return c
}

// Collection is a named set of mod settings. Mods without own settings
// take them from inherited collections, first match wins.
type Collection struct {
	Name      string
	Settings  map[string]*ModSettings // Mod name -> settings
	Inherits  []*Collection
	IsDefault bool
}

// NewCollection creates an empty collection
func NewCollection(name string) *Collection {
	return &Collection{
		Name:     name,
		Settings: make(map[string]*ModSettings),
	}
}

// ActualSettings returns the settings in effect for a mod, or nil when
// neither this collection nor any inherited one configures it.
func (c *Collection) ActualSettings(mod string) *ModSettings {
	return c.actualSettings(mod, make(map[*Collection]bool))
}

func (c *Collection) actualSettings(mod string, visited map[*Collection]bool) *ModSettings {
	if visited[c] {
		return nil
	}
	visited[c] = true
	if s, ok := c.Settings[mod]; ok && s != nil {
		return s
	}
	for _, parent := range c.Inherits {
		if s := parent.actualSettings(mod, visited); s != nil {
			return s
		}
	}
	return nil
}

// OwnSettings returns this collection's settings for mod, copying inherited
// settings into it first so edits do not leak into parents.
func (c *Collection) OwnSettings(mod string) *ModSettings {
	if s, ok := c.Settings[mod]; ok && s != nil {
		return s
	}
	var s *ModSettings
	if inherited := c.ActualSettings(mod); inherited != nil {
		s = inherited.Clone()
	} else {
		s = &ModSettings{Settings: make(map[string]Setting)}
	}
	if c.Settings == nil {
		c.Settings = make(map[string]*ModSettings)
	}
	c.Settings[mod] = s
	return s
}

// FixSettings clamps every own persisted selection to the mods' current
// groups. Returns the number of corrected selections.
func (c *Collection) FixSettings(mods []*Mod) int {
	fixed := 0
	for _, m := range mods {
		s, ok := c.Settings[m.Name]
		if !ok || s == nil {
			continue
		}
		for i := range m.Groups {
			g := &m.Groups[i]
			v, ok := s.Settings[g.Name]
			if !ok {
				continue
			}
			if clamped := g.FixSetting(v); clamped != v {
				s.Settings[g.Name] = clamped
				fixed++
			}
		}
	}
	return fixed
}

// CheckInheritance returns ErrInheritanceLoop when c reaches itself
func (c *Collection) CheckInheritance() error {
	var walk func(*Collection, map[*Collection]bool) error
	walk = func(cur *Collection, stack map[*Collection]bool) error {
		if stack[cur] {
			return ErrInheritanceLoop
		}
		stack[cur] = true
		for _, p := range cur.Inherits {
			if err := walk(p, stack); err != nil {
				return err
			}
		}
		delete(stack, cur)
		return nil
	}
	return walk(c, make(map[*Collection]bool))
}

package domain

// Priority orders contributors to the same path; higher wins
type Priority int

// ModMeta is the descriptive part of a mod
type ModMeta struct {
	Author      string
	Version     string
	Description string
	Website     string
}

// Mod is a loaded mod: its option groups, its unconditional default option
// and the resource files found in its directory.
type Mod struct {
	Name     string // Stable identity: the mod's directory name
	BasePath string
	Meta     ModMeta
	Default  Option
	Groups   []OptionGroup
	Files    []FullPath // Resource files in the mod directory

	fileIndex map[string]int
}

// SetFiles replaces the resource catalog and rebuilds the lookup index
func (m *Mod) SetFiles(files []FullPath) {
	m.Files = files
	m.fileIndex = make(map[string]int, len(files))
	for i, f := range files {
		if _, ok := m.fileIndex[f.InternalName]; !ok {
			m.fileIndex[f.InternalName] = i
		}
	}
}

// IndexOf returns the catalog index of f, or -1
func (m *Mod) IndexOf(f FullPath) int {
	if m.fileIndex == nil {
		m.SetFiles(m.Files)
	}
	if idx, ok := m.fileIndex[f.InternalName]; ok {
		return idx
	}
	return -1
}

// Group returns the group with the given name
func (m *Mod) Group(name string) (*OptionGroup, int, error) {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i], i, nil
		}
	}
	return nil, -1, ErrGroupNotFound
}

// ManipulationCount counts metadata manipulations across every option,
// selected or not.
func (m *Mod) ManipulationCount() int {
	n := len(m.Default.Manipulations)
	for _, g := range m.Groups {
		for _, o := range g.Options {
			n += len(o.Manipulations)
		}
	}
	return n
}

// Validate checks every group
func (m *Mod) Validate() error {
	for i := range m.Groups {
		if err := m.Groups[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

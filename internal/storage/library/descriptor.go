package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"penumbra/internal/domain"

	"gopkg.in/yaml.v3"
)

type metaDescriptor struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
	Website     string `yaml:"website,omitempty"`
}

type manipulationDescriptor struct {
	Type        string `yaml:"type"`
	PrimaryID   uint16 `yaml:"primary_id"`
	SecondaryID uint16 `yaml:"secondary_id,omitempty"`
	Slot        uint8  `yaml:"slot,omitempty"`
	Variant     uint8  `yaml:"variant,omitempty"`
	GenderRace  uint16 `yaml:"gender_race,omitempty"`
	Entry       uint64 `yaml:"entry"`
}

type optionDescriptor struct {
	Name          string                   `yaml:"name,omitempty"`
	Description   string                   `yaml:"description,omitempty"`
	Files         map[string]string        `yaml:"files,omitempty"`
	FileSwaps     map[string]string        `yaml:"file_swaps,omitempty"`
	Manipulations []manipulationDescriptor `yaml:"manipulations,omitempty"`
}

type groupDescriptor struct {
	Name            string             `yaml:"name"`
	Description     string             `yaml:"description,omitempty"`
	Type            string             `yaml:"type"`
	Priority        int                `yaml:"priority,omitempty"`
	DefaultSettings uint64             `yaml:"default_settings,omitempty"`
	Options         []optionDescriptor `yaml:"options"`
}

func (m metaDescriptor) toDomain() domain.ModMeta {
	return domain.ModMeta{
		Author:      m.Author,
		Version:     m.Version,
		Description: m.Description,
		Website:     m.Website,
	}
}

func metaFromDomain(name string, m domain.ModMeta) metaDescriptor {
	return metaDescriptor{
		Name:        name,
		Author:      m.Author,
		Version:     m.Version,
		Description: m.Description,
		Website:     m.Website,
	}
}

func (o optionDescriptor) toDomain() (domain.Option, error) {
	opt := domain.Option{
		Name:        o.Name,
		Description: o.Description,
		Files:       make(map[domain.GamePath]string, len(o.Files)),
		FileSwaps:   make(map[domain.GamePath]domain.GamePath, len(o.FileSwaps)),
	}
	for game, rel := range o.Files {
		p, err := domain.NewGamePath(game)
		if err != nil {
			return domain.Option{}, fmt.Errorf("%w: option %q file %q: %v", domain.ErrInvalidConfig, o.Name, game, err)
		}
		opt.Files[p] = rel
	}
	for from, to := range o.FileSwaps {
		src, err := domain.NewGamePath(from)
		if err != nil {
			return domain.Option{}, fmt.Errorf("%w: option %q swap %q: %v", domain.ErrInvalidConfig, o.Name, from, err)
		}
		dst, err := domain.NewGamePath(to)
		if err != nil {
			return domain.Option{}, fmt.Errorf("%w: option %q swap target %q: %v", domain.ErrInvalidConfig, o.Name, to, err)
		}
		opt.FileSwaps[src] = dst
	}
	for _, md := range o.Manipulations {
		t, err := domain.ParseMetaType(md.Type)
		if err != nil {
			return domain.Option{}, fmt.Errorf("option %q: %w", o.Name, err)
		}
		opt.Manipulations = append(opt.Manipulations, domain.MetaManipulation{
			Key: domain.MetaKey{
				Type:        t,
				PrimaryID:   md.PrimaryID,
				SecondaryID: md.SecondaryID,
				Slot:        md.Slot,
				Variant:     md.Variant,
				GenderRace:  md.GenderRace,
			},
			Entry: md.Entry,
		})
	}
	return opt, nil
}

func optionFromDomain(o domain.Option) optionDescriptor {
	d := optionDescriptor{Name: o.Name, Description: o.Description}
	if len(o.Files) > 0 {
		d.Files = make(map[string]string, len(o.Files))
		for game, rel := range o.Files {
			d.Files[game.String()] = rel
		}
	}
	if len(o.FileSwaps) > 0 {
		d.FileSwaps = make(map[string]string, len(o.FileSwaps))
		for from, to := range o.FileSwaps {
			d.FileSwaps[from.String()] = to.String()
		}
	}
	manips := make([]domain.MetaManipulation, len(o.Manipulations))
	copy(manips, o.Manipulations)
	sort.SliceStable(manips, func(i, j int) bool { return manips[i].Key.Compare(manips[j].Key) < 0 })
	for _, m := range manips {
		d.Manipulations = append(d.Manipulations, manipulationDescriptor{
			Type:        m.Key.Type.String(),
			PrimaryID:   m.Key.PrimaryID,
			SecondaryID: m.Key.SecondaryID,
			Slot:        m.Key.Slot,
			Variant:     m.Key.Variant,
			GenderRace:  m.Key.GenderRace,
			Entry:       m.Entry,
		})
	}
	return d
}

func (g groupDescriptor) toDomain() (domain.OptionGroup, error) {
	t, err := domain.ParseGroupType(g.Type)
	if err != nil {
		return domain.OptionGroup{}, fmt.Errorf("group %q: %w", g.Name, err)
	}
	group := domain.OptionGroup{
		Name:            g.Name,
		Description:     g.Description,
		Type:            t,
		Priority:        domain.Priority(g.Priority),
		DefaultSettings: domain.Setting(g.DefaultSettings),
	}
	for _, od := range g.Options {
		opt, err := od.toDomain()
		if err != nil {
			return domain.OptionGroup{}, fmt.Errorf("group %q: %w", g.Name, err)
		}
		group.Options = append(group.Options, opt)
	}
	group.DefaultSettings = group.FixSetting(group.DefaultSettings)
	return group, nil
}

func groupFromDomain(g domain.OptionGroup) groupDescriptor {
	d := groupDescriptor{
		Name:            g.Name,
		Description:     g.Description,
		Type:            g.Type.String(),
		Priority:        int(g.Priority),
		DefaultSettings: uint64(g.DefaultSettings),
	}
	for _, o := range g.Options {
		d.Options = append(d.Options, optionFromDomain(o))
	}
	return d
}

// readYAML decodes path into v; a missing file leaves v untouched
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
	}
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating mod dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

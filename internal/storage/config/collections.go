package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"penumbra/internal/domain"

	"gopkg.in/yaml.v3"
)

// CollectionConfig is the YAML representation of a collection
type CollectionConfig struct {
	Name      string                       `yaml:"name"`
	Inherit   []string                     `yaml:"inherit,omitempty"`
	IsDefault bool                         `yaml:"is_default,omitempty"`
	Mods      map[string]ModSettingsConfig `yaml:"mods"`
}

// ModSettingsConfig is the YAML representation of one mod's settings
type ModSettingsConfig struct {
	Enabled  bool              `yaml:"enabled"`
	Priority int               `yaml:"priority"`
	Settings map[string]uint64 `yaml:"settings,omitempty"`
}

func collectionDir(configDir string) string {
	return filepath.Join(configDir, "collections")
}

func collectionPath(configDir, name string) string {
	return filepath.Join(collectionDir(configDir), name+".yaml")
}

// LoadCollectionConfig reads one collection file without resolving inheritance
func LoadCollectionConfig(configDir, name string) (*CollectionConfig, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(collectionPath(configDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	var cfg CollectionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing collection %s: %w", name, err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return &cfg, nil
}

// LoadCollection reads a collection and every collection it inherits from
func LoadCollection(configDir, name string) (*domain.Collection, error) {
	loaded := make(map[string]*domain.Collection)
	c, err := loadCollection(configDir, name, loaded)
	if err != nil {
		return nil, err
	}
	if err := c.CheckInheritance(); err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, err)
	}
	return c, nil
}

func loadCollection(configDir, name string, loaded map[string]*domain.Collection) (*domain.Collection, error) {
	if c, ok := loaded[name]; ok {
		return c, nil
	}

	cfg, err := LoadCollectionConfig(configDir, name)
	if err != nil {
		return nil, err
	}

	c := toDomain(cfg)
	loaded[name] = c
	for _, parent := range cfg.Inherit {
		p, err := loadCollection(configDir, parent, loaded)
		if err != nil {
			return nil, fmt.Errorf("loading %s inherited by %s: %w", parent, name, err)
		}
		c.Inherits = append(c.Inherits, p)
	}
	return c, nil
}

func toDomain(cfg *CollectionConfig) *domain.Collection {
	c := domain.NewCollection(cfg.Name)
	c.IsDefault = cfg.IsDefault
	for mod, m := range cfg.Mods {
		s := &domain.ModSettings{
			Enabled:  m.Enabled,
			Priority: domain.Priority(m.Priority),
			Settings: make(map[string]domain.Setting, len(m.Settings)),
		}
		for group, v := range m.Settings {
			s.Settings[group] = domain.Setting(v)
		}
		c.Settings[mod] = s
	}
	return c
}

func fromDomain(c *domain.Collection) *CollectionConfig {
	cfg := &CollectionConfig{
		Name:      c.Name,
		IsDefault: c.IsDefault,
		Mods:      make(map[string]ModSettingsConfig, len(c.Settings)),
	}
	for _, p := range c.Inherits {
		cfg.Inherit = append(cfg.Inherit, p.Name)
	}
	for mod, s := range c.Settings {
		if s == nil {
			continue
		}
		m := ModSettingsConfig{Enabled: s.Enabled, Priority: int(s.Priority)}
		if len(s.Settings) > 0 {
			m.Settings = make(map[string]uint64, len(s.Settings))
			for group, v := range s.Settings {
				m.Settings[group] = uint64(v)
			}
		}
		cfg.Mods[mod] = m
	}
	return cfg
}

// SaveCollection writes a collection's own settings to disk. Inherited
// collections are referenced by name and not written.
func SaveCollection(configDir string, c *domain.Collection) error {
	if err := ValidateCollectionName(c.Name); err != nil {
		return err
	}

	data, err := yaml.Marshal(fromDomain(c))
	if err != nil {
		return fmt.Errorf("marshaling collection: %w", err)
	}

	if err := os.MkdirAll(collectionDir(configDir), 0755); err != nil {
		return fmt.Errorf("creating collections dir: %w", err)
	}

	if err := os.WriteFile(collectionPath(configDir, c.Name), data, 0644); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}

	return nil
}

// ListCollections returns all collection names, sorted
func ListCollections(configDir string) ([]string, error) {
	entries, err := os.ReadDir(collectionDir(configDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading collections dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)

	return names, nil
}

// DeleteCollection removes a collection from disk
func DeleteCollection(configDir, name string) error {
	if err := ValidateCollectionName(name); err != nil {
		return err
	}
	if err := os.Remove(collectionPath(configDir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
		}
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// ExportCollection flattens a collection, inherited settings included, into
// a portable document.
func ExportCollection(c *domain.Collection, mods []string) ([]byte, error) {
	flat := domain.NewCollection(c.Name)
	for _, mod := range mods {
		if s := c.ActualSettings(mod); s != nil {
			flat.Settings[mod] = s.Clone()
		}
	}

	data, err := yaml.Marshal(fromDomain(flat))
	if err != nil {
		return nil, fmt.Errorf("marshaling exported collection: %w", err)
	}

	return data, nil
}

// ImportCollection parses an exported collection. Inheritance references
// are dropped since they name collections of another installation.
func ImportCollection(data []byte) (*domain.Collection, error) {
	var cfg CollectionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing exported collection: %w", err)
	}
	if err := ValidateCollectionName(cfg.Name); err != nil {
		return nil, err
	}

	cfg.Inherit = nil
	cfg.IsDefault = false
	return toDomain(&cfg), nil
}

// ValidateCollectionName rejects names that cannot be used as file names
func ValidateCollectionName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid collection name %q", domain.ErrInvalidConfig, name)
	}
	return nil
}

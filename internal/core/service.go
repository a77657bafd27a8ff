package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"penumbra/internal/domain"
	"penumbra/internal/linker"
	"penumbra/internal/logging"
	"penumbra/internal/storage/config"
	"penumbra/internal/storage/db"
	"penumbra/internal/storage/library"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir   string      // Directory for configuration files
	DataDir     string      // Directory for database and persistent data
	Collection  string      // Collection to open; empty uses the configured default
	FS          FileSystem  // Defaults to OSFileSystem
	Identifier  Identifier  // Optional changed-item identification
	KeyResolver KeyResolver // Optional manipulation key aliasing
	NoHooks     bool        // Skip configured deploy and undeploy hooks
}

// Service ties the library, the active collection and its resolution
// cache together, persisting every settings change it routes.
type Service struct {
	config     *config.Config
	db         *db.DB
	library    *library.Library
	collection *domain.Collection
	cache      *CollectionCache
	cacheOpts  CacheOptions
	log        zerolog.Logger
	noHooks    bool

	modsMu sync.RWMutex
	mods   []*domain.Mod

	configDir string
	dataDir   string
}

// NewService creates a new core service instance: it loads the library and
// the collection, clamps stale selections and runs the first pass.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Service{
		config:    appConfig,
		db:        database,
		library:   library.New(appConfig.ModPath(cfg.DataDir)),
		log:       logging.GetLogger("service"),
		noHooks:   cfg.NoHooks,
		configDir: cfg.ConfigDir,
		dataDir:   cfg.DataDir,
	}

	if s.mods, err = s.library.Scan(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("scanning library: %w", err)
	}

	name := cfg.Collection
	if name == "" {
		name = appConfig.DefaultCollection
	}
	if s.collection, err = s.openCollection(name); err != nil {
		database.Close()
		return nil, err
	}

	s.cacheOpts = CacheOptions{
		DisableSoundStreaming: appConfig.DisableSoundStreaming,
		FS:                    cfg.FS,
		Identifier:            cfg.Identifier,
		KeyResolver:           cfg.KeyResolver,
	}
	s.cache = NewCollectionCache(s.collection, s, s.cacheOpts)
	if err := s.cache.Recompute(); err != nil {
		database.Close()
		return nil, fmt.Errorf("resolving collection %s: %w", name, err)
	}

	return s, nil
}

// openCollection loads a collection, creating the default one on first
// use, and clamps selections that no longer fit the mods' groups.
func (s *Service) openCollection(name string) (*domain.Collection, error) {
	c, err := config.LoadCollection(s.configDir, name)
	if errors.Is(err, domain.ErrCollectionNotFound) && name == s.config.DefaultCollection {
		c = domain.NewCollection(name)
		c.IsDefault = true
		err = config.SaveCollection(s.configDir, c)
	}
	if err != nil {
		return nil, fmt.Errorf("loading collection %s: %w", name, err)
	}

	if fixed := c.FixSettings(s.Mods()); fixed > 0 {
		s.log.Info().Str("collection", name).Int("fixed", fixed).Msg("Clamped out-of-range selections")
		if err := config.SaveCollection(s.configDir, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SwitchCollection makes another stored collection the active one. The
// current collection stays active when the new one fails to resolve.
func (s *Service) SwitchCollection(name string) error {
	if name == s.collection.Name {
		return nil
	}
	c, err := s.openCollection(name)
	if err != nil {
		return err
	}
	cache := NewCollectionCache(c, s, s.cacheOpts)
	if err := cache.Recompute(); err != nil {
		return fmt.Errorf("resolving collection %s: %w", name, err)
	}
	s.collection = c
	s.cache = cache
	s.log.Info().Str("collection", name).Int("files", cache.ResolvedCount()).Msg("Switched collection")
	return nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Mods implements Catalog
func (s *Service) Mods() []*domain.Mod {
	s.modsMu.RLock()
	defer s.modsMu.RUnlock()
	return s.mods
}

// Mod returns a loaded mod by name
func (s *Service) Mod(name string) (*domain.Mod, error) {
	for _, m := range s.Mods() {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, name)
}

// Reload rescans the library and recomputes everything
func (s *Service) Reload(ctx context.Context) error {
	mods, err := s.library.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning library: %w", err)
	}
	s.modsMu.Lock()
	s.mods = mods
	s.modsMu.Unlock()

	if fixed := s.collection.FixSettings(mods); fixed > 0 {
		if err := s.saveCollection(); err != nil {
			return err
		}
	}
	return s.cache.Recompute()
}

// SetModEnabled enables or disables a mod in the active collection
func (s *Service) SetModEnabled(name string, enabled bool) (Passes, error) {
	return s.editSettings(name, ChangeEnabled, "", func(ms *domain.ModSettings) error {
		ms.Enabled = enabled
		return nil
	})
}

// SetModPriority changes a mod's priority in the active collection
func (s *Service) SetModPriority(name string, priority domain.Priority) (Passes, error) {
	return s.editSettings(name, ChangePriority, "", func(ms *domain.ModSettings) error {
		ms.Priority = priority
		return nil
	})
}

// SetGroupSetting changes a group selection, clamped to the group's options
func (s *Service) SetGroupSetting(name, group string, setting domain.Setting) (Passes, error) {
	mod, err := s.Mod(name)
	if err != nil {
		return Passes{}, err
	}
	g, _, err := mod.Group(group)
	if err != nil {
		return Passes{}, fmt.Errorf("mod %s: %w: %s", name, err, group)
	}
	return s.editSettings(name, ChangeSetting, group, func(ms *domain.ModSettings) error {
		ms.Settings[group] = g.FixSetting(setting)
		return nil
	})
}

func (s *Service) editSettings(name string, kind ChangeType, group string, edit func(*domain.ModSettings) error) (Passes, error) {
	if _, err := s.Mod(name); err != nil {
		return Passes{}, err
	}

	wasEnabled := false
	if cur := s.collection.ActualSettings(name); cur != nil {
		wasEnabled = cur.Enabled
	}

	ms := s.collection.OwnSettings(name)
	if ms.Settings == nil {
		ms.Settings = make(map[string]domain.Setting)
	}
	if err := edit(ms); err != nil {
		return Passes{}, err
	}
	if err := s.saveCollection(); err != nil {
		return Passes{}, err
	}

	passes, err := s.cache.Apply(Change{Type: kind, Mod: name, Group: group, WasEnabled: wasEnabled})
	if err != nil {
		return passes, err
	}
	s.log.Debug().Str("mod", name).Str("change", kind.String()).Bool("files", passes.Files).Bool("meta", passes.Meta).Msg("Applied change")
	return passes, nil
}

// ConvertGroup switches a group between single and multi selection. The
// group file is rewritten and the active collection's selection mapped to
// the equivalent value in the new mode.
func (s *Service) ConvertGroup(name, group string, to domain.GroupType) (Passes, error) {
	mod, err := s.Mod(name)
	if err != nil {
		return Passes{}, err
	}
	g, idx, err := mod.Group(group)
	if err != nil {
		return Passes{}, fmt.Errorf("mod %s: %w: %s", name, err, group)
	}
	if g.Type == to {
		return Passes{}, nil
	}

	var converted domain.OptionGroup
	switch to {
	case domain.GroupMulti:
		converted = g.ConvertToMulti()
	case domain.GroupSingle:
		converted = g.ConvertToSingle()
	default:
		return Passes{}, fmt.Errorf("%w: %d", domain.ErrInvalidGroupType, int(to))
	}
	if err := converted.Validate(); err != nil {
		return Passes{}, err
	}
	if err := s.library.SaveGroup(name, idx, converted); err != nil {
		return Passes{}, err
	}

	wasEnabled := false
	if cur := s.collection.ActualSettings(name); cur != nil {
		wasEnabled = cur.Enabled
		if v, ok := cur.Settings[group]; ok {
			own := s.collection.OwnSettings(name)
			own.Settings[group] = ConvertSetting(v, to)
			if err := s.saveCollection(); err != nil {
				return Passes{}, err
			}
		}
	}

	s.modsMu.Lock()
	mod.Groups[idx] = converted
	s.modsMu.Unlock()

	return s.cache.Apply(Change{Type: ChangeModEdited, Mod: name, WasEnabled: wasEnabled})
}

// ConvertSetting maps a selection into the equivalent value of another
// group type: index i becomes bit i, and a bitmask becomes the index of its
// lowest set bit.
func ConvertSetting(v domain.Setting, to domain.GroupType) domain.Setting {
	switch to {
	case domain.GroupMulti:
		if v >= domain.MaxMultiOptions {
			return 0
		}
		return domain.SettingMulti(int(v))
	default:
		for i := 0; i < domain.MaxMultiOptions; i++ {
			if v.HasFlag(i) {
				return domain.Setting(i)
			}
		}
		return 0
	}
}

func (s *Service) saveCollection() error {
	if err := config.SaveCollection(s.configDir, s.collection); err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}
	return nil
}

// Collections returns the names of all stored collections
func (s *Service) Collections() ([]string, error) {
	return config.ListCollections(s.configDir)
}

// CreateCollection stores a new collection inheriting from the named ones
func (s *Service) CreateCollection(name string, inherit ...string) (*domain.Collection, error) {
	if err := s.requireNewCollection(name); err != nil {
		return nil, err
	}

	c := domain.NewCollection(name)
	for _, parent := range inherit {
		p, err := config.LoadCollection(s.configDir, parent)
		if err != nil {
			return nil, err
		}
		c.Inherits = append(c.Inherits, p)
	}
	if err := c.CheckInheritance(); err != nil {
		return nil, err
	}
	if err := config.SaveCollection(s.configDir, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCollection removes a stored collection; the active one cannot be
// deleted.
func (s *Service) DeleteCollection(name string) error {
	if name == s.collection.Name {
		return fmt.Errorf("%w: cannot delete the active collection %s", domain.ErrInvalidConfig, name)
	}
	return config.DeleteCollection(s.configDir, name)
}

// ExportCollection returns the named collection with inherited settings
// flattened in, as YAML.
func (s *Service) ExportCollection(name string) ([]byte, error) {
	c := s.collection
	if name != "" && name != c.Name {
		var err error
		if c, err = config.LoadCollection(s.configDir, name); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(s.Mods()))
	for _, m := range s.Mods() {
		names = append(names, m.Name)
	}
	return config.ExportCollection(c, names)
}

// requireNewCollection fails when a collection called name is already stored
func (s *Service) requireNewCollection(name string) error {
	existing, err := s.Collections()
	if err != nil {
		return err
	}
	if i := sort.SearchStrings(existing, name); i < len(existing) && existing[i] == name {
		return fmt.Errorf("%w: collection %s already exists", domain.ErrInvalidConfig, name)
	}
	return nil
}

// ImportCollection stores an exported collection, clamped to the local mods.
// Existing collections are never overwritten.
func (s *Service) ImportCollection(data []byte) (*domain.Collection, error) {
	c, err := config.ImportCollection(data)
	if err != nil {
		return nil, err
	}
	if err := s.requireNewCollection(c.Name); err != nil {
		return nil, err
	}
	c.FixSettings(s.Mods())
	if err := config.SaveCollection(s.configDir, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Deploy materializes the active collection into targetDir, running the
// configured deploy hooks around it.
func (s *Service) Deploy(ctx context.Context, targetDir string, method domain.LinkMethod) (*DeployResult, error) {
	hooks := s.hooksFor("deploy")
	if err := s.runHook(ctx, hooks.Before, s.hookContext("deploy.before", targetDir)); err != nil {
		return nil, err
	}

	result, err := NewDeployer(s.cache, s.db, linker.New(method)).Deploy(ctx, targetDir)
	if err != nil {
		return nil, err
	}

	if err := s.runHook(ctx, hooks.After, s.hookContext("deploy.after", targetDir)); err != nil {
		s.log.Warn().Err(err).Msg("After hook failed")
		result.HookErrors = append(result.HookErrors, err.Error())
	}
	return result, nil
}

// Undeploy removes every file deployed into targetDir
func (s *Service) Undeploy(ctx context.Context, targetDir string) (int, error) {
	hooks := s.hooksFor("undeploy")
	if err := s.runHook(ctx, hooks.Before, s.hookContext("undeploy.before", targetDir)); err != nil {
		return 0, err
	}

	removed, err := Undeploy(ctx, s.db, targetDir)
	if err != nil {
		return removed, err
	}

	if err := s.runHook(ctx, hooks.After, s.hookContext("undeploy.after", targetDir)); err != nil {
		s.log.Warn().Err(err).Msg("After hook failed")
	}
	return removed, nil
}

// Cache returns the active collection's resolution cache
func (s *Service) Cache() *CollectionCache {
	return s.cache
}

// Collection returns the active collection
func (s *Service) Collection() *domain.Collection {
	return s.collection
}

// Config returns the loaded configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Library returns the mod library
func (s *Service) Library() *library.Library {
	return s.library
}

// DB returns the database
func (s *Service) DB() *db.DB {
	return s.db
}

// ConfigDir returns the configuration directory
func (s *Service) ConfigDir() string {
	return s.configDir
}

// DataDir returns the data directory
func (s *Service) DataDir() string {
	return s.dataDir
}

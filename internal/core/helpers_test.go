package core_test

import (
	"testing"

	"penumbra/internal/core"
	"penumbra/internal/domain"

	"github.com/stretchr/testify/require"
)

// fixture is a catalog, a collection and an in-memory filesystem
type fixture struct {
	fs         *core.MapFileSystem
	mods       core.ModList
	collection *domain.Collection
}

func newFixture() *fixture {
	return &fixture{
		fs:         core.NewMapFileSystem(),
		collection: domain.NewCollection("test"),
	}
}

// mod adds an enabled mod with the given priority
func (f *fixture) mod(name string, priority domain.Priority) *domain.Mod {
	m := &domain.Mod{Name: name, BasePath: "/mods/" + name}
	f.mods = append(f.mods, m)
	f.collection.Settings[name] = &domain.ModSettings{
		Enabled:  true,
		Priority: priority,
		Settings: map[string]domain.Setting{},
	}
	return m
}

// file registers a resource file in the mod's catalog and on disk
func (f *fixture) file(m *domain.Mod, rel string) domain.FullPath {
	full := domain.NewFullPath(m.BasePath, rel)
	m.SetFiles(append(m.Files, full))
	f.fs.Add(full.FullName)
	return full
}

// catalogOnly registers a resource file that is not on disk
func (f *fixture) catalogOnly(m *domain.Mod, rel string) domain.FullPath {
	full := domain.NewFullPath(m.BasePath, rel)
	m.SetFiles(append(m.Files, full))
	return full
}

// option builds an option redirecting game paths to mod files, creating
// the files as it goes.
func (f *fixture) option(m *domain.Mod, name string, files map[string]string) domain.Option {
	o := domain.Option{Name: name, Files: map[domain.GamePath]string{}}
	for game, rel := range files {
		f.file(m, rel)
		o.Files[domain.MustGamePath(game)] = rel
	}
	return o
}

func (f *fixture) settings(name string) *domain.ModSettings {
	return f.collection.Settings[name]
}

func (f *fixture) cache(t *testing.T, opts core.CacheOptions) *core.CollectionCache {
	t.Helper()
	opts.FS = f.fs
	c := core.NewCollectionCache(f.collection, f.mods, opts)
	require.NoError(t, c.Recompute())
	return c
}

func gp(s string) domain.GamePath {
	return domain.MustGamePath(s)
}

func manip(id uint16, entry uint64) domain.MetaManipulation {
	return domain.MetaManipulation{
		Key:   domain.MetaKey{Type: domain.MetaEqp, PrimaryID: id, Slot: 1},
		Entry: entry,
	}
}

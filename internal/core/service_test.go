package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"penumbra/internal/core"
	"penumbra/internal/domain"
	"penumbra/internal/storage/config"
	"penumbra/internal/storage/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorGroup = `
name: Color
type: single
options:
  - name: Red
    files:
      chara/hair.tex: red.tex
  - name: Blue
    files:
      chara/hair.tex: blue.tex
`

const fitGroup = `
name: Fit
type: multi
options:
  - name: Hide gloves
    manipulations:
      - type: eqp
        primary_id: 1
        slot: 2
        entry: 7
`

type serviceDirs struct {
	config string
	data   string
}

func newServiceDirs(t *testing.T) serviceDirs {
	t.Helper()
	d := serviceDirs{config: t.TempDir(), data: t.TempDir()}
	lib := library.New(filepath.Join(d.data, "mods"))

	require.NoError(t, lib.Store("Hair", library.GroupFileName(0, "Color"), []byte(colorGroup)))
	require.NoError(t, lib.Store("Hair", library.GroupFileName(1, "Fit"), []byte(fitGroup)))
	require.NoError(t, lib.Store("Hair", "red.tex", []byte("red")))
	require.NoError(t, lib.Store("Hair", "blue.tex", []byte("blue")))

	require.NoError(t, lib.Store("Body", "chara/body.tex", []byte("body")))
	require.NoError(t, lib.Store("Body", "chara/hair.tex", []byte("body hair")))
	return d
}

func openService(t *testing.T, d serviceDirs) *core.Service {
	t.Helper()
	svc, err := core.NewService(context.Background(), core.ServiceConfig{ConfigDir: d.config, DataDir: d.data})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewService(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)

	assert.Len(t, svc.Mods(), 2)
	assert.Equal(t, "Default", svc.Collection().Name)
	assert.Zero(t, svc.Cache().ResolvedCount(), "nothing enabled yet")

	names, err := svc.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"Default"}, names, "default collection is created")
}

func TestService_SetModEnabledPersistsAndResolves(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)

	passes, err := svc.SetModEnabled("Hair", true)
	require.NoError(t, err)
	assert.Equal(t, core.Passes{Files: true, Meta: true}, passes)

	got, ok := svc.Cache().Lookup(domain.MustGamePath("chara/hair.tex"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(d.data, "mods", "Hair", "red.tex"), got.FullName)

	stored, err := config.LoadCollection(d.config, "Default")
	require.NoError(t, err)
	assert.True(t, stored.Settings["Hair"].Enabled)

	_, err = svc.SetModEnabled("Nope", true)
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestService_PriorityDecidesOwner(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Hair", true)
	require.NoError(t, err)
	_, err = svc.SetModEnabled("Body", true)
	require.NoError(t, err)

	owner, _ := svc.Cache().Owner(domain.MustGamePath("chara/hair.tex"))
	assert.Equal(t, "Body", owner, "equal priority resolves by name")

	_, err = svc.SetModPriority("Hair", 5)
	require.NoError(t, err)
	owner, _ = svc.Cache().Owner(domain.MustGamePath("chara/hair.tex"))
	assert.Equal(t, "Hair", owner)

	conflicts := core.GroupConflicts(svc.Cache().Conflicts("Body"))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Hair", conflicts[0].Other)
	assert.True(t, conflicts[0].Solved)
}

func TestService_SetGroupSetting(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Hair", true)
	require.NoError(t, err)

	passes, err := svc.SetGroupSetting("Hair", "Color", 9)
	require.NoError(t, err)
	assert.Equal(t, core.Passes{Files: true}, passes)
	assert.Equal(t, domain.Setting(1), svc.Collection().Settings["Hair"].Settings["Color"], "clamped")

	got, ok := svc.Cache().Lookup(domain.MustGamePath("chara/hair.tex"))
	require.True(t, ok)
	assert.Equal(t, "blue.tex", filepath.Base(got.FullName))

	passes, err = svc.SetGroupSetting("Hair", "Fit", domain.SettingMulti(0))
	require.NoError(t, err)
	assert.Equal(t, core.Passes{Meta: true}, passes)
	assert.Equal(t, 1, svc.Cache().Overlay().Len())

	_, err = svc.SetGroupSetting("Hair", "Nope", 0)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestService_ClampsStaleSelectionsOnLoad(t *testing.T) {
	d := newServiceDirs(t)
	c := domain.NewCollection("Default")
	c.Settings["Hair"] = &domain.ModSettings{Enabled: true, Settings: map[string]domain.Setting{"Color": 4}}
	require.NoError(t, config.SaveCollection(d.config, c))

	svc := openService(t, d)
	assert.Equal(t, domain.Setting(1), svc.Collection().Settings["Hair"].Settings["Color"])

	stored, err := config.LoadCollection(d.config, "Default")
	require.NoError(t, err)
	assert.Equal(t, domain.Setting(1), stored.Settings["Hair"].Settings["Color"])
}

func TestService_ConvertGroup(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Hair", true)
	require.NoError(t, err)
	_, err = svc.SetGroupSetting("Hair", "Color", 1)
	require.NoError(t, err)

	_, err = svc.ConvertGroup("Hair", "Color", domain.GroupMulti)
	require.NoError(t, err)

	assert.Equal(t, domain.SettingMulti(1), svc.Collection().Settings["Hair"].Settings["Color"])
	mod, err := svc.Library().Load("Hair")
	require.NoError(t, err)
	assert.Equal(t, domain.GroupMulti, mod.Groups[0].Type)

	got, ok := svc.Cache().Lookup(domain.MustGamePath("chara/hair.tex"))
	require.True(t, ok)
	assert.Equal(t, "blue.tex", filepath.Base(got.FullName), "same option stays active")
}

func TestConvertSetting(t *testing.T) {
	assert.Equal(t, domain.SettingMulti(3), core.ConvertSetting(3, domain.GroupMulti))
	assert.Equal(t, domain.Setting(0), core.ConvertSetting(70, domain.GroupMulti))
	assert.Equal(t, domain.Setting(2), core.ConvertSetting(domain.SettingMulti(2)|domain.SettingMulti(5), domain.GroupSingle))
	assert.Equal(t, domain.Setting(0), core.ConvertSetting(0, domain.GroupSingle))
}

func TestService_Collections(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Hair", true)
	require.NoError(t, err)

	child, err := svc.CreateCollection("Raid", "Default")
	require.NoError(t, err)
	require.NotNil(t, child.ActualSettings("Hair"))

	_, err = svc.CreateCollection("Raid")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	data, err := svc.ExportCollection("Raid")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCollection("Raid"))

	imported, err := svc.ImportCollection(data)
	require.NoError(t, err)
	assert.True(t, imported.Settings["Hair"].Enabled)

	names, err := svc.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Raid"}, names)

	assert.ErrorIs(t, svc.DeleteCollection("Default"), domain.ErrInvalidConfig)
}

func TestService_ImportKeepsExistingCollections(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Hair", true)
	require.NoError(t, err)

	_, err = svc.ImportCollection([]byte("name: Default\nmods: {}\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	stored, err := config.LoadCollection(d.config, "Default")
	require.NoError(t, err)
	require.NotNil(t, stored.ActualSettings("Hair"))
	assert.True(t, stored.ActualSettings("Hair").Enabled)
	assert.True(t, svc.Collection().ActualSettings("Hair").Enabled)
}

func TestService_DeployAndUndeploy(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Body", true)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "out")
	ctx := context.Background()

	res, err := svc.Deploy(ctx, out, domain.LinkCopy)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Linked)

	content, err := os.ReadFile(filepath.Join(out, "chara", "body.tex"))
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), content)

	res, err = svc.Deploy(ctx, out, domain.LinkCopy)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Unchanged)
	assert.Zero(t, res.Linked)

	_, err = svc.SetModEnabled("Body", false)
	require.NoError(t, err)
	_, err = svc.SetModEnabled("Hair", true)
	require.NoError(t, err)

	res, err = svc.Deploy(ctx, out, domain.LinkSymlink)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed, "body.tex is no longer resolved")
	assert.Equal(t, 1, res.Linked)
	_, err = os.Stat(filepath.Join(out, "chara", "body.tex"))
	assert.True(t, os.IsNotExist(err))

	last, err := svc.DB().LastDeployment("")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, domain.LinkSymlink, last.LinkMethod)

	removed, err := svc.Undeploy(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Reload(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Body", true)
	require.NoError(t, err)

	require.NoError(t, svc.Library().Store("Body", "chara/new.tex", []byte("new")))
	_, ok := svc.Cache().Lookup(domain.MustGamePath("chara/new.tex"))
	assert.False(t, ok)

	require.NoError(t, svc.Reload(context.Background()))
	_, ok = svc.Cache().Lookup(domain.MustGamePath("chara/new.tex"))
	assert.True(t, ok)
}

func TestService_SwitchCollection(t *testing.T) {
	d := newServiceDirs(t)
	svc := openService(t, d)
	_, err := svc.SetModEnabled("Body", true)
	require.NoError(t, err)
	_, err = svc.CreateCollection("Empty")
	require.NoError(t, err)

	require.NoError(t, svc.SwitchCollection("Empty"))
	assert.Equal(t, "Empty", svc.Collection().Name)
	assert.Zero(t, svc.Cache().ResolvedCount())

	assert.ErrorIs(t, svc.SwitchCollection("Nope"), domain.ErrCollectionNotFound)
	assert.Equal(t, "Empty", svc.Collection().Name, "failed switch keeps the active collection")

	require.NoError(t, svc.SwitchCollection("Default"))
	assert.Equal(t, 2, svc.Cache().ResolvedCount())
}

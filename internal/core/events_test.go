package core_test

import (
	"testing"

	"penumbra/internal/core"
	"penumbra/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsFixture() (*fixture, *domain.Mod) {
	f := newFixture()
	m := f.mod("M", 0)
	m.Default = f.option(m, "", map[string]string{"chara/p.tex": "p.tex"})
	m.Groups = []domain.OptionGroup{
		{Name: "Files", Type: domain.GroupSingle, Options: []domain.Option{
			f.option(m, "A", map[string]string{"chara/a.tex": "a.tex"}),
			f.option(m, "B", map[string]string{"chara/b.tex": "b.tex"}),
		}},
		{Name: "Meta", Type: domain.GroupMulti, Options: []domain.Option{
			{Name: "Hide", Manipulations: []domain.MetaManipulation{manip(1, 1)}},
		}},
	}
	return f, m
}

func TestApply_EnableDisable(t *testing.T) {
	f, _ := eventsFixture()
	c := f.cache(t, core.CacheOptions{})
	gen := c.Generation()

	f.settings("M").Enabled = false
	passes, err := c.Apply(core.Change{Type: core.ChangeEnabled, Mod: "M", WasEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, core.Passes{Files: true, Meta: true}, passes)
	assert.Equal(t, gen+1, c.Generation())
	assert.Zero(t, c.ResolvedCount())
}

func TestApply_DisabledModRunsNothing(t *testing.T) {
	f, _ := eventsFixture()
	f.settings("M").Enabled = false
	c := f.cache(t, core.CacheOptions{})
	gen := c.Generation()

	f.settings("M").Priority = 5
	passes, err := c.Apply(core.Change{Type: core.ChangePriority, Mod: "M"})
	require.NoError(t, err)
	assert.Equal(t, core.Passes{}, passes)
	assert.Equal(t, gen, c.Generation())
}

func TestApply_SettingChangeRunsOnlyAffectedPass(t *testing.T) {
	tests := []struct {
		name  string
		group string
		value domain.Setting
		want  core.Passes
	}{
		{"file group", "Files", 1, core.Passes{Files: true}},
		{"meta group", "Meta", domain.SettingMulti(0), core.Passes{Meta: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := eventsFixture()
			c := f.cache(t, core.CacheOptions{})
			gen, metaGen := c.Generation(), c.MetaGeneration()

			f.settings("M").Settings[tt.group] = tt.value
			passes, err := c.Apply(core.Change{Type: core.ChangeSetting, Mod: "M", Group: tt.group, WasEnabled: true})
			require.NoError(t, err)
			assert.Equal(t, tt.want, passes)

			if tt.want.Files {
				assert.Equal(t, gen+1, c.Generation())
			} else {
				assert.Equal(t, gen, c.Generation())
			}
			if tt.want.Meta {
				assert.Equal(t, metaGen+1, c.MetaGeneration())
			} else {
				assert.Equal(t, metaGen, c.MetaGeneration())
			}
		})
	}
}

func TestApply_SettingChangeUpdatesResult(t *testing.T) {
	f, _ := eventsFixture()
	c := f.cache(t, core.CacheOptions{})
	_, ok := c.Lookup(gp("chara/a.tex"))
	require.True(t, ok)

	f.settings("M").Settings["Files"] = 1
	_, err := c.Apply(core.Change{Type: core.ChangeSetting, Mod: "M", Group: "Files", WasEnabled: true})
	require.NoError(t, err)

	_, ok = c.Lookup(gp("chara/a.tex"))
	assert.False(t, ok)
	_, ok = c.Lookup(gp("chara/b.tex"))
	assert.True(t, ok)
}

func TestApply_Errors(t *testing.T) {
	f, _ := eventsFixture()
	c := f.cache(t, core.CacheOptions{})

	_, err := c.Apply(core.Change{Type: core.ChangeEnabled, Mod: "Nope"})
	assert.ErrorIs(t, err, domain.ErrModNotFound)

	_, err = c.Apply(core.Change{Type: core.ChangeSetting, Mod: "M", Group: "Nope"})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestApply_InheritanceRunsBoth(t *testing.T) {
	f, _ := eventsFixture()
	c := f.cache(t, core.CacheOptions{})

	passes, err := c.Apply(core.Change{Type: core.ChangeInheritance})
	require.NoError(t, err)
	assert.Equal(t, core.Passes{Files: true, Meta: true}, passes)
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "setting", core.ChangeSetting.String())
	assert.Equal(t, "unknown", core.ChangeType(42).String())
}

package core_test

import (
	"testing"

	"penumbra/internal/core"
	"penumbra/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupConflicts_UnsolvedFirstThenByName(t *testing.T) {
	conflicts := []core.ModConflict{
		{Other: "zeta", Key: core.PathKey(gp("a.tex")), Won: true},
		{Other: "Alpha", Key: core.PathKey(gp("b.tex")), Won: true},
		{Other: "Alpha", Key: core.MetaConflictKey(domain.MetaKey{Type: domain.MetaGmp, PrimaryID: 1}), Won: false},
		{Other: "mid", Key: core.PathKey(gp("c.tex")), Tie: true, Won: true},
	}

	grouped := core.GroupConflicts(conflicts)
	require.Len(t, grouped, 3)

	assert.Equal(t, "mid", grouped[0].Other)
	assert.False(t, grouped[0].Solved)

	assert.Equal(t, "Alpha", grouped[1].Other)
	assert.False(t, grouped[1].HasPriority)
	assert.Len(t, grouped[1].Paths, 1)
	assert.Len(t, grouped[1].Manipulations, 1)

	assert.Equal(t, "zeta", grouped[2].Other)
	assert.True(t, grouped[2].HasPriority)
}

func TestConflictKey_Compare(t *testing.T) {
	path := core.PathKey(gp("z.tex"))
	meta := core.MetaConflictKey(domain.MetaKey{Type: domain.MetaEqp})

	assert.Equal(t, -1, path.Compare(meta))
	assert.Equal(t, 1, meta.Compare(path))
	assert.Equal(t, 0, path.Compare(core.PathKey(gp("Z.TEX"))))
	assert.Equal(t, "z.tex", path.String())
}

func TestConflictRecords_DeduplicatedAcrossOptions(t *testing.T) {
	f := newFixture()
	a := f.mod("A", 1)
	a.Groups = []domain.OptionGroup{{
		Name: "G",
		Type: domain.GroupMulti,
		Options: []domain.Option{
			f.option(a, "x", map[string]string{"chara/p.tex": "x.tex"}),
			f.option(a, "y", map[string]string{"chara/p.tex": "y.tex"}),
		},
	}}
	f.settings("A").Settings["G"] = domain.SettingMulti(0) | domain.SettingMulti(1)
	b := f.mod("B", 0)
	b.Groups = []domain.OptionGroup{{
		Name: "G",
		Type: domain.GroupMulti,
		Options: []domain.Option{
			f.option(b, "x", map[string]string{"chara/p.tex": "x.tex"}),
			f.option(b, "y", map[string]string{"chara/p.tex": "y.tex"}),
		},
	}}
	f.settings("B").Settings["G"] = domain.SettingMulti(0) | domain.SettingMulti(1)

	c := f.cache(t, core.CacheOptions{})

	assert.Len(t, c.ConflictRecords(), 1)
	got, ok := c.Lookup(gp("chara/p.tex"))
	require.True(t, ok)
	assert.Equal(t, "/mods/A/y.tex", got.FullName)
}

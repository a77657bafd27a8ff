package gamedata_test

import (
	"os"
	"path/filepath"
	"testing"

	"penumbra/internal/domain"
	"penumbra/internal/gamedata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `
equipment:
  - id: 1
    slot: top
    name: Smallclothes Shirt
weapons:
  - id: 201
    body: 1
    name: Weathered Sword
races:
  101: Midlander Male
race_aliases:
  1301: 101
  1401: 1301
`

func loadTable(t *testing.T) *gamedata.Table {
	t.Helper()
	tbl, err := gamedata.ParseTable([]byte(table))
	require.NoError(t, err)
	return tbl
}

func TestIdentify(t *testing.T) {
	id := gamedata.NewIdentifier(loadTable(t))

	tests := []struct {
		path  string
		names []string
	}{
		{"chara/equipment/e0001/material/v0001/mt_c0101e0001_top_a.mtrl", []string{"Smallclothes Shirt"}},
		{"chara/equipment/e0002/model/c0101e0002_glv.mdl", []string{"Equipment 0002 (glv)"}},
		{"chara/accessory/a0003/model/c0101a0003_rir.mdl", []string{"Accessory 0003 (rir)"}},
		{"chara/weapon/w0201/obj/body/b0001/model/w0201b0001.mdl", []string{"Weathered Sword"}},
		{"chara/monster/m0100/obj/body/b0002/model/m0100b0002.mdl", []string{"Monster 0100-0002"}},
		{"chara/human/c0101/obj/hair/h0005/model/c0101h0005_hir.mdl", []string{"Hair 0005 (Midlander Male)"}},
		{"chara/human/c0201/obj/face/f0001/model/c0201f0001_fac.mdl", []string{"Face 0001 (c0201)"}},
		{"chara/human/c0101/skeleton/base/b0001/skl_c0101b0001.sklb", nil},
		{"ui/icon/000000/000001.tex", nil},
		{"sound/bgm/title.scd", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			items, err := id.Identify(domain.MustGamePath(tt.path))
			require.NoError(t, err)
			var names []string
			for _, it := range items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestIdentify_SetWideFileAffectsEverySlot(t *testing.T) {
	id := gamedata.NewIdentifier(nil)
	items, err := id.Identify(domain.MustGamePath("chara/equipment/e0007/texture/v01_c0101e0007_n.tex"))
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestIdentify_Refs(t *testing.T) {
	id := gamedata.NewIdentifier(loadTable(t))
	items, err := id.Identify(domain.MustGamePath("chara/weapon/w0201/obj/body/b0001/texture/v01_w0201b0001_n.tex"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, gamedata.ItemRef{Kind: gamedata.KindWeapon, PrimaryID: 201, SecondaryID: 1}, items[0].Ref)
}

func TestIdentify_MalformedIDs(t *testing.T) {
	id := gamedata.NewIdentifier(nil)
	for _, p := range []string{
		"chara/equipment/eabcd/model/x.mdl",
		"chara/weapon/w12/obj/body/b0001/x.mdl",
		"chara/human/c0101/obj/hair/x0001/x.mdl",
	} {
		_, err := id.Identify(domain.MustGamePath(p))
		assert.Error(t, err, p)
	}
}

func TestRaceAliases(t *testing.T) {
	r := gamedata.NewRaceAliases(loadTable(t))

	eqdp := domain.MetaKey{Type: domain.MetaEqdp, PrimaryID: 1, GenderRace: 1401}
	assert.Equal(t, uint16(101), r.Canonical(eqdp).GenderRace, "chains are followed")

	est := domain.MetaKey{Type: domain.MetaEst, GenderRace: 1301}
	assert.Equal(t, uint16(101), r.Canonical(est).GenderRace)

	eqp := domain.MetaKey{Type: domain.MetaEqp, GenderRace: 1301}
	assert.Equal(t, eqp, r.Canonical(eqp), "non race tables are untouched")
}

func TestRaceAliases_Cycle(t *testing.T) {
	tbl, err := gamedata.ParseTable([]byte("race_aliases:\n  1: 2\n  2: 1\n"))
	require.NoError(t, err)

	key := gamedata.NewRaceAliases(tbl).Canonical(domain.MetaKey{Type: domain.MetaEqdp, GenderRace: 1})
	assert.Contains(t, []uint16{1, 2}, key.GenderRace)
}

func TestLoadTable(t *testing.T) {
	tbl, err := gamedata.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())

	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))
	tbl, err = gamedata.LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = gamedata.ParseTable([]byte("equipment: {"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

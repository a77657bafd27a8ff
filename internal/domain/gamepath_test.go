package domain

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGamePath_Normalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chara/equipment/e0001/model/c0101e0001_top.mdl", "chara/equipment/e0001/model/c0101e0001_top.mdl"},
		{"Chara\\Equipment\\E0001\\Model.MDL", "chara/equipment/e0001/model.mdl"},
		{"/ui/icon/000000.tex", "ui/icon/000000.tex"},
	}
	for _, tt := range tests {
		p, err := NewGamePath(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.String())
	}
}

func TestNewGamePath_CaseInsensitiveEquality(t *testing.T) {
	a := MustGamePath("Sound/Voice/X.SCD")
	b := MustGamePath("sound/voice/x.scd")
	assert.Equal(t, a, b)

	m := map[GamePath]int{a: 1}
	assert.Equal(t, 1, m[b])
}

func TestNewGamePath_Errors(t *testing.T) {
	_, err := NewGamePath("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = NewGamePath("///")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = NewGamePath(strings.Repeat("a", MaxGamePathLength+1))
	assert.ErrorIs(t, err, ErrPathTooLong)

	_, err = NewGamePath(strings.Repeat("a", MaxGamePathLength))
	assert.NoError(t, err)
}

func TestGamePath_Extension(t *testing.T) {
	assert.Equal(t, ".scd", MustGamePath("sound/a.SCD").Extension())
	assert.Equal(t, "", MustGamePath("sound.dir/file").Extension())
	assert.True(t, MustGamePath("chara/x.imc").HasSuffix(".IMC"))
}

func TestFullPath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "Mod")
	f := NewFullPath(base, "chara\\Equipment\\a.tex")

	assert.True(t, f.IsRooted())
	assert.Equal(t, ".tex", f.Extension())

	gp, err := f.ToGamePath(base)
	require.NoError(t, err)
	assert.Equal(t, "chara/equipment/a.tex", gp.String())

	_, err = f.ToGamePath(filepath.Join(base, "other"))
	assert.ErrorIs(t, err, ErrNotGamePath)

	swap := SwapPath(MustGamePath("chara/b.tex"))
	assert.False(t, swap.IsRooted())
	assert.True(t, NewFullPath(base, "A.TEX").Equal(NewFullPath(base, "a.tex")))
}

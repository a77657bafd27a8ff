package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"penumbra/internal/domain"
	"penumbra/internal/storage/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestModEnableAndList(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "mod", "enable", "Body")
	assert.Equal(t, "Body: recomputed files\n", out)

	out = mustRun(t, "mod", "enable", "Hair")
	assert.Equal(t, "Hair: recomputed files and manipulations\n", out)

	mods := decode[[]modJSON](t, mustRun(t, "list", "--json"))
	require.Len(t, mods, 3)
	assert.Equal(t, "Body", mods[0].Name)
	assert.True(t, mods[0].Enabled)
	assert.False(t, mods[1].Enabled, "Broken stays disabled")
	assert.Equal(t, uint64(0), mods[2].Groups["Color"])
	assert.Equal(t, 1, mods[2].Manipulations)

	enabled := decode[[]modJSON](t, mustRun(t, "list", "--enabled", "--json"))
	assert.Len(t, enabled, 2)

	out = mustRun(t, "list")
	assert.Contains(t, out, "Hair")
	assert.Contains(t, out, "yes")
}

func TestModDisabledEditRunsNothing(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "mod", "priority", "Body", "4")
	assert.Equal(t, "Body: no recomputation needed\n", out)

	mods := decode[[]modJSON](t, mustRun(t, "list", "--json"))
	assert.Equal(t, 4, mods[0].Priority)
}

func TestModUnknown(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "mod", "enable", "Nope")
	assert.ErrorIs(t, err, domain.ErrModNotFound)

	_, err = run(t, "mod", "priority", "Body", "high")
	assert.ErrorContains(t, err, "invalid priority")
}

func TestResolve(t *testing.T) {
	setupCLI(t)
	mustRun(t, "mod", "enable", "Body")

	out := mustRun(t, "resolve", "chara/Hair.tex")
	assert.Contains(t, out, "chara/hair.tex -> ")
	assert.Contains(t, out, "(Body)")

	entry := decode[resolvedJSON](t, mustRun(t, "resolve", "chara/unknown.tex", "--json"))
	assert.False(t, entry.Resolved)

	all := decode[[]resolvedJSON](t, mustRun(t, "resolve", "--json"))
	require.Len(t, all, 2)
	assert.Equal(t, "chara/body.tex", all[0].Path)
	assert.Equal(t, "Body", all[0].Mod)

	_, err := run(t, "resolve", "")
	assert.Error(t, err)
}

func TestModSelect(t *testing.T) {
	setupCLI(t)
	mustRun(t, "mod", "enable", "Hair")

	out := mustRun(t, "mod", "select", "Hair", "Color", "blue")
	assert.Equal(t, "Hair: recomputed files\n", out)

	entry := decode[resolvedJSON](t, mustRun(t, "resolve", "chara/hair.tex", "--json"))
	assert.Equal(t, "blue.tex", filepath.Base(entry.File))

	out = mustRun(t, "mod", "select", "Hair", "Fit")
	assert.Equal(t, "Hair: recomputed manipulations\n", out, "clearing the multi group")

	groups := decode[[]groupJSON](t, mustRun(t, "mod", "show", "Hair", "--json"))
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"Blue"}, groups[0].Selected)
	assert.Empty(t, groups[1].Selected)

	_, err := run(t, "mod", "select", "Hair", "Color", "Green")
	assert.ErrorContains(t, err, `no option "Green"`)
	_, err = run(t, "mod", "select", "Hair", "Shape", "0")
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestParseSelection(t *testing.T) {
	single := &domain.OptionGroup{Name: "Color", Type: domain.GroupSingle, Options: []domain.Option{{Name: "Red"}, {Name: "Blue"}}}
	multi := &domain.OptionGroup{Name: "Fit", Type: domain.GroupMulti, Options: []domain.Option{{Name: "Gloves"}, {Name: "Boots"}, {Name: "Hat"}}}

	tests := []struct {
		name    string
		group   *domain.OptionGroup
		choices []string
		want    domain.Setting
		wantErr bool
	}{
		{"single by name", single, []string{"BLUE"}, 1, false},
		{"single by index", single, []string{"0"}, 0, false},
		{"single needs one", single, nil, 0, true},
		{"single rejects two", single, []string{"Red", "Blue"}, 0, true},
		{"single index out of range", single, []string{"2"}, 0, true},
		{"multi names", multi, []string{"Hat", "gloves"}, domain.SettingMulti(0) | domain.SettingMulti(2), false},
		{"multi empty", multi, nil, 0, false},
		{"multi unknown", multi, []string{"Cape"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.group, tt.choices)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConflicts(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "conflicts")
	assert.Contains(t, out, "No conflicts found.")

	mustRun(t, "mod", "enable", "Body")
	mustRun(t, "mod", "enable", "Hair")

	records := decode[[]conflictJSON](t, mustRun(t, "conflicts", "--json"))
	require.Len(t, records, 1)
	assert.Equal(t, "chara/hair.tex", records[0].Key)
	assert.True(t, records[0].Tie)
	assert.Equal(t, "Body", records[0].Winner, "equal priorities fall back to name order")

	out = mustRun(t, "conflicts")
	assert.Contains(t, out, "unsolved")

	mustRun(t, "mod", "priority", "Hair", "1")
	out = mustRun(t, "conflicts", "Hair")
	assert.Contains(t, out, "wins over Body")
	assert.Contains(t, out, "chara/hair.tex")

	grouped := decode[[]modConflictJSON](t, mustRun(t, "conflicts", "Body", "--json"))
	require.Len(t, grouped, 1)
	assert.False(t, grouped[0].HasPriority)
	assert.True(t, grouped[0].Solved)

	_, err := run(t, "conflicts", "Nope")
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestMissing(t *testing.T) {
	setupCLI(t)

	assert.Contains(t, mustRun(t, "missing"), "No missing files.")

	mustRun(t, "mod", "enable", "Broken")
	paths := decode[[]string](t, mustRun(t, "missing", "--json"))
	require.Len(t, paths, 1)
	assert.Equal(t, "gone.tex", filepath.Base(paths[0]))
}

func TestMeta(t *testing.T) {
	setupCLI(t)
	assert.Contains(t, mustRun(t, "meta"), "No manipulations.")

	mustRun(t, "mod", "enable", "Hair")
	mustRun(t, "mod", "select", "Hair", "Fit", "Hide gloves")

	rows := decode[[]metaJSON](t, mustRun(t, "meta", "--json"))
	require.Len(t, rows, 1)
	assert.Equal(t, "eqp", rows[0].Type)
	assert.Equal(t, uint64(7), rows[0].Entry)
	assert.Equal(t, "Hair", rows[0].Mod)

	rows = decode[[]metaJSON](t, mustRun(t, "meta", "--type", "imc", "--json"))
	assert.Empty(t, rows)

	_, err := run(t, "meta", "--type", "xyz")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestChangedItems(t *testing.T) {
	setupCLI(t)
	table := `
equipment:
  - id: 1
    slot: top
    name: Smallclothes Shirt
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "items.yaml"), []byte(table), 0644))
	lib := library.New(filepath.Join(dataDir, "mods"))
	require.NoError(t, lib.Store("Shirt", "chara/equipment/e0001/model/c0101e0001_top.mdl", []byte("mdl")))

	assert.Contains(t, mustRun(t, "changed-items"), "No changed items.")

	mustRun(t, "mod", "enable", "Shirt")
	items := decode[[]changedItemJSON](t, mustRun(t, "changed-items", "--json"))
	require.Len(t, items, 1)
	assert.Equal(t, "Smallclothes Shirt", items[0].Name)
	assert.Equal(t, "Smallclothes Shirt\n", mustRun(t, "changed-items"))
}

func TestGroupConvert(t *testing.T) {
	setupCLI(t)
	mustRun(t, "mod", "enable", "Hair")
	mustRun(t, "mod", "select", "Hair", "Color", "Blue")

	out := mustRun(t, "group", "convert", "Hair", "Color", "multi")
	assert.Contains(t, out, "Hair: recomputed")

	groups := decode[[]groupJSON](t, mustRun(t, "mod", "show", "Hair", "--json"))
	assert.Equal(t, "multi", groups[0].Type)
	assert.Equal(t, []string{"Blue"}, groups[0].Selected, "index 1 became bit 1")

	_, err := run(t, "group", "convert", "Hair", "Color", "triple")
	assert.ErrorIs(t, err, domain.ErrInvalidGroupType)
}

func TestStatus(t *testing.T) {
	setupCLI(t)
	mustRun(t, "mod", "enable", "Body")
	mustRun(t, "mod", "enable", "Hair")
	mustRun(t, "mod", "select", "Hair", "Fit", "0")

	st := decode[statusJSON](t, mustRun(t, "status", "--json"))
	assert.Equal(t, "Default", st.Collection)
	assert.Equal(t, 3, st.Mods)
	assert.Equal(t, 2, st.Enabled)
	assert.Equal(t, 2, st.Files)
	assert.Equal(t, 1, st.Manipulations)
	assert.Equal(t, 1, st.Conflicts)
	assert.Equal(t, 1, st.Unsolved)
	assert.Nil(t, st.LastDeploy)

	out := mustRun(t, "status")
	assert.Contains(t, out, "2 enabled of 3")
	assert.Contains(t, out, "(1 unsolved)")
}

func TestCollectionCommands(t *testing.T) {
	setupCLI(t)
	mustRun(t, "mod", "enable", "Body")

	out := mustRun(t, "collection", "create", "Raid", "--inherit", "Default")
	assert.Contains(t, out, "Created collection: Raid")

	entries := decode[[]collectionJSON](t, mustRun(t, "collection", "list", "--json"))
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Active)
	assert.True(t, entries[0].Default)
	assert.Equal(t, []string{"Default"}, entries[1].Inherits)

	// Raid inherits Body's settings until it overrides them
	collectionArgs := []string{"--collection", "Raid"}
	mods := decode[[]modJSON](t, mustRun(t, append(collectionArgs, "list", "--json")...))
	assert.True(t, mods[0].Enabled)
	assert.True(t, mods[0].Inherited)

	exported := filepath.Join(t.TempDir(), "raid.yaml")
	mustRun(t, "collection", "export", "Raid", "-o", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Body")

	out = mustRun(t, "collection", "use", "Raid")
	assert.Contains(t, out, "Default collection: Raid (2 files)")
	st := decode[statusJSON](t, mustRun(t, "status", "--json"))
	assert.Equal(t, "Raid", st.Collection)

	_, err = run(t, "collection", "delete", "Raid")
	assert.ErrorContains(t, err, "default collection")

	mustRun(t, "collection", "use", "Default")
	mustRun(t, "collection", "delete", "Raid")
	mustRun(t, "collection", "import", exported)

	mods = decode[[]modJSON](t, mustRun(t, append(collectionArgs, "list", "--json")...))
	assert.True(t, mods[0].Enabled)
	assert.False(t, mods[0].Inherited, "imports are flattened")

	_, err = run(t, "collection", "import", exported)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "collection", "import", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestDeployAndUndeploy(t *testing.T) {
	setupCLI(t)
	mustRun(t, "mod", "enable", "Body")
	target := filepath.Join(t.TempDir(), "out")

	report := decode[deployJSON](t, mustRun(t, "deploy", target, "--method", "copy", "--json"))
	assert.Equal(t, 2, report.Linked)
	assert.Equal(t, "copy", report.Method)
	assert.Empty(t, report.HookErrors)

	content, err := os.ReadFile(filepath.Join(target, "chara", "hair.tex"))
	require.NoError(t, err)
	assert.Equal(t, "body hair", string(content))

	out := mustRun(t, "deploy", target, "--method", "copy")
	assert.Contains(t, out, "0 linked, 2 unchanged, 0 removed")

	out = mustRun(t, "mod", "show", "Body", "--target", target)
	assert.Contains(t, out, "Deployed to "+target+": 2 file(s)")
	assert.Contains(t, out, "chara/body.tex")
	assert.Contains(t, out, "Size: 13 B")

	st := decode[statusJSON](t, mustRun(t, "status", "--json"))
	require.NotNil(t, st.LastDeploy)
	assert.Equal(t, target, st.LastDeploy.TargetDir)

	out = mustRun(t, "undeploy", target)
	assert.Contains(t, out, "Removed 2 file(s)")
	assert.NoFileExists(t, filepath.Join(target, "chara", "hair.tex"))

	_, err = run(t, "deploy", target, "--method", "teleport")
	assert.ErrorContains(t, err, "invalid link method")
}

func TestParseLinkMethod(t *testing.T) {
	m, err := parseLinkMethod("", domain.LinkHardlink)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkHardlink, m)

	m, err = parseLinkMethod("copy", domain.LinkSymlink)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkCopy, m)
}

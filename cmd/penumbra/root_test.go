package main

import (
	"bytes"
	"path/filepath"
	"testing"

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
  - name: Hide boots
`

const brokenDefault = `
files:
  chara/gone.tex: gone.tex
`

// setupCLI points the global flags at fresh directories holding three
// mods: Hair with a single and a multi group, Body and Broken.
func setupCLI(t *testing.T) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)
	configDir = t.TempDir()
	dataDir = t.TempDir()
	noColor = true

	lib := library.New(filepath.Join(dataDir, "mods"))
	require.NoError(t, lib.Store("Hair", library.GroupFileName(0, "Color"), []byte(colorGroup)))
	require.NoError(t, lib.Store("Hair", library.GroupFileName(1, "Fit"), []byte(fitGroup)))
	require.NoError(t, lib.Store("Hair", "red.tex", []byte("red")))
	require.NoError(t, lib.Store("Hair", "blue.tex", []byte("blue")))
	require.NoError(t, lib.Store("Body", "chara/body.tex", []byte("body")))
	require.NoError(t, lib.Store("Body", "chara/hair.tex", []byte("body hair")))
	require.NoError(t, lib.Store("Broken", library.DefaultFile, []byte(brokenDefault)))
}

func resetFlags() {
	configDir, dataDir, collectionName = "", "", ""
	verbosity = 0
	noHooks, jsonOutput, noColor = false, false, false
	listEnabledOnly = false
	metaType = ""
	deployMethod = ""
	modShowTarget = ""
	collectionInherit = nil
	collectionExportFile = ""
}

// run executes the root command with args and returns what it printed.
// Flags bound to globals are reset first since cobra keeps their values.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cd, dd := configDir, dataDir
	resetFlags()
	configDir, dataDir, noColor = cd, dd, true

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestInitService(t *testing.T) {
	setupCLI(t)

	svc, err := initService()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, svc.Close())
	})

	assert.Equal(t, "Default", svc.Collection().Name)
	assert.Len(t, svc.Mods(), 3)
	assert.FileExists(t, filepath.Join(configDir, "collections", "Default.yaml"))
}

func TestInitService_SelectsCollection(t *testing.T) {
	setupCLI(t)
	mustRun(t, "collection", "create", "Raid")

	collectionName = "Raid"
	svc, err := initService()
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	assert.Equal(t, "Raid", svc.Collection().Name)
}

func TestGetServiceConfig_Defaults(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := getServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "penumbra"), cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "penumbra"), cfg.DataDir)

	noHooks = true
	collectionName = "Raid"
	cfg, err = getServiceConfig()
	require.NoError(t, err)
	assert.True(t, cfg.NoHooks)
	assert.Equal(t, "Raid", cfg.Collection)
}

func TestItemTablePath(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  string
	}{
		{"default", "", "/cfg/items.yaml"},
		{"relative", "tables/items.yaml", "/cfg/tables/items.yaml"},
		{"absolute", "/srv/items.yaml", "/srv/items.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, itemTablePath(&config.Config{ItemTable: tt.table}, "/cfg"))
		})
	}
}

func TestColorEnabled(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	t.Setenv("NO_COLOR", "")

	assert.True(t, colorEnabled())
	assert.Equal(t, ansiGreen+"ok"+ansiReset, colorGreen("ok"))

	noColor = true
	assert.False(t, colorEnabled())
	assert.Equal(t, "ok", colorRed("ok"))

	noColor = false
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "ok", colorYellow("ok"))
}

func TestRootCmd_Structure(t *testing.T) {
	for _, name := range []string{"status", "list", "resolve", "conflicts", "missing", "changed-items", "meta", "mod", "group", "collection", "deploy", "undeploy", "tui"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotEmpty(t, cmd.Short, name)
	}
	for _, flag := range []string{"config", "data", "collection", "verbose", "no-hooks", "json", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

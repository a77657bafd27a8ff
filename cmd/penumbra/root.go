package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"penumbra/internal/core"
	"penumbra/internal/gamedata"
	"penumbra/internal/logging"
	"penumbra/internal/storage/config"

	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user cancels an operation.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir      string
	dataDir        string
	collectionName string
	verbosity      int
	noHooks        bool
	jsonOutput     bool
	noColor        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "penumbra",
	Short: "Penumbra - mod collection resolver",
	Long: `penumbra resolves a collection of mods into the set of game files and
metadata records that replace the vanilla ones, reports conflicts between
mods, and deploys the result into a directory.

Use subcommands for operations. Run 'penumbra --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/penumbra)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/penumbra)")
	rootCmd.PersistentFlags().StringVarP(&collectionName, "collection", "c", "", "collection to operate on (default: configured default)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output (repeat for more)")
	rootCmd.PersistentFlags().BoolVar(&noHooks, "no-hooks", false, "disable deploy and undeploy hooks")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorize(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return code + s + ansiReset
}

// colorGreen returns s with green ANSI when color is enabled, otherwise s.
func colorGreen(s string) string { return colorize(ansiGreen, s) }

// colorRed returns s with red ANSI when color is enabled, otherwise s.
func colorRed(s string) string { return colorize(ansiRed, s) }

// colorYellow returns s with yellow ANSI when color is enabled, otherwise s.
func colorYellow(s string) string { return colorize(ansiYellow, s) }

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// initService sets up logging, loads the item table and creates the core
// service for the selected collection.
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	setupLogging(appConfig, cfg.DataDir)

	table, err := gamedata.LoadTable(itemTablePath(appConfig, cfg.ConfigDir))
	if err != nil {
		return nil, err
	}
	cfg.Identifier = gamedata.NewIdentifier(table)
	cfg.KeyResolver = gamedata.NewRaceAliases(table)

	return core.NewService(context.Background(), cfg)
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		Collection: collectionName,
		NoHooks:    noHooks,
	}
	if cfg.ConfigDir != "" && cfg.DataDir != "" {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "penumbra")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "penumbra")
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config, dataDir string) {
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = logging.DefaultLogFile(dataDir)
	}
	logging.Setup(logging.Options{
		Verbosity:  verbosity,
		File:       logFile,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		NoColor:    !colorEnabled(),
	})
}

// itemTablePath resolves the configured item table; relative paths are
// taken from the config directory, and items.yaml there is the default.
func itemTablePath(cfg *config.Config, dir string) string {
	switch {
	case cfg.ItemTable == "":
		return filepath.Join(dir, "items.yaml")
	case filepath.IsAbs(cfg.ItemTable):
		return cfg.ItemTable
	default:
		return filepath.Join(dir, cfg.ItemTable)
	}
}

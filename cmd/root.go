package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/recode/internal/config"
	"github.com/joescharf/recode/internal/guidelines"
	"github.com/joescharf/recode/internal/logger"
	"github.com/joescharf/recode/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "recode",
	Short: "Rewrite source code with an LLM, following your guidelines",
	Long: `recode sends source code and a set of guidelines to a code completion
model and returns the improved code together with an explanation of the
changes. Use it from the command line, through the web UI (recode serve),
or as an MCP server (recode mcp).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/recode/config.yaml)")
}

func initConfig() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RECODE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	stateDir, _ := configDirFunc()
	config.SetDefaults(viper.GetViper(), stateDir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// loadConfig returns the effective configuration. With validate set, a
// configuration that cannot reach the completion service is an error.
func loadConfig(validate bool) (*config.Config, error) {
	cfg := config.Load(viper.GetViper())
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadCatalog returns the built-in templates merged with templates.file.
func loadCatalog(cfg *config.Config) (*guidelines.Catalog, error) {
	catalog := guidelines.Default()
	if cfg.TemplatesFile == "" {
		return catalog, nil
	}
	extra, err := guidelines.LoadFile(cfg.TemplatesFile)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(extra), nil
}

// newLogger builds the slog logger for long-running commands.
func newLogger(cfg *config.Config) *slog.Logger {
	lc := cfg.Log
	if verbose {
		lc.Level = "debug"
	}
	return logger.New(lc, os.Stderr)
}

// statePath returns a file path inside state_dir.
func statePath(name string) string {
	return filepath.Join(viper.GetString("state_dir"), name)
}

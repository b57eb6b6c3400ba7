// Package cmd implements the derivans command line interface (§6): a
// "run" command that executes the derivation pipeline against a discovered
// input, and a "validate-config" command that reports configuration
// problems without running anything.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/derivans/internal/config"
	"github.com/MeKo-Tech/derivans/internal/version"
)

var (
	configLoader *config.Loader
	cfgFile      string
)

var rootCmd = &cobra.Command{
	Use:   "derivans",
	Short: "Generate image derivatives and a searchable PDF/A for a digitized holding",
	Long: `derivans reads a digitized library holding - a METS/MODS document with its
page images and, optionally, ALTO OCR files - and produces scaled image
derivatives, a logical outline and a searchable PDF/A.

Examples:
  derivans run /data/vd18-12345
  derivans run /data/vd18-12345/mets.xml --config derivans.yaml
  derivans validate-config --config derivans.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			v, commit, date := version.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "derivans %s (commit %s, built %s)\n", v, commit, date)
			return nil
		}
		return cmd.Help()
	},
}

// SetVersionInfo propagates the main package's ldflags-populated version
// strings into the version package before the root command runs.
func SetVersionInfo(v, commit, date string) {
	version.Version = v
	version.GitCommit = commit
	version.BuildDate = date
}

// Execute runs the root command, exiting the process with status 1 on
// error. Individual subcommands are responsible for a non-zero exit on a
// pipeline run failure (§6 "Exit").
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand exposes rootCmd for tests.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./derivans.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("poolsize", 0, "worker pool size (0 = auto)")
	rootCmd.Flags().Bool("version", false, "print version information")

	for _, pair := range [][2]string{{"log_level", "log-level"}, {"poolsize", "poolsize"}} {
		if err := viper.BindPFlag(pair[0], rootCmd.PersistentFlags().Lookup(pair[1])); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", pair[1], err))
		}
	}

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	configLoader = config.NewLoader()
}

// GetConfigLoader lazily initialises and returns the package's config
// loader, mirroring the root command's own lazy-init pattern.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// loadConfig loads and validates configuration from cfgFile (or the
// default search path), then wires up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := GetConfigLoader().LoadWithFile(cfgFile)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

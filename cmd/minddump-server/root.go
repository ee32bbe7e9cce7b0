package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/systemshift/minddump/internal/config"
	"github.com/systemshift/minddump/internal/logger"
)

var (
	configPath string
	logLevel   string
	pretty     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minddump-server",
	Short: "Mock backend for the MindDump note-taking app",
	Long: `minddump-server serves the MindDump REST API from an in-memory store
seeded with sample notes, folders, concepts and settings.
State lives only as long as the process.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Human readable console logs")
}

// loadConfig merges the config file, the environment and any flags set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("pretty") {
		cfg.LogPretty = pretty
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("fixtures") {
		cfg.FixturesPath, _ = flags.GetString("fixtures")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (zerolog.Logger, error) {
	return logger.New(logger.Options{
		Writer: os.Stderr,
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
}

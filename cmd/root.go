package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd defines the base command for the gogit CLI.
// All subcommands (init, cat-file, clone, etc.) register under this root.
// Uses cobra for command parsing, flag handling, and help generation.
var rootCmd = &cobra.Command{
	Use:   "gogit",
	Short: "A simplified Git implementation in GO",
	Long: `GoGit is a simplified Git Implementation developed in GO that offers the main capabilites
	expected from a Git project: a content-addressable object store, tree snapshots, commits
	and cloning over the smart HTTP protocol.`,
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().String("config", "", "config file (default: $XDG_CONFIG_HOME/gogit/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")

	viper.BindPFlag(verboseKey, rootCmd.PersistentFlags().Lookup("verbose"))
	setConfigDefaults()
}

// initLogging installs a text handler on stderr. Debug output needs --verbose.
func initLogging() {
	level := slog.LevelWarn
	if viper.GetBool(verboseKey) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

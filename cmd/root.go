package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tapodump/config"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tapodump",
	Short: "Bulk downloader for Tapo camera recordings",
	Long: `tapodump pulls every recording off a Tapo camera's SD card into a local,
date-partitioned archive (YYYY/MM/DD), skipping files that were already
downloaded so interrupted runs can simply be restarted.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(cameraInfoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mirrorCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// resolveUser prefers the --user flag, falling back to the configured default.
func resolveUser(cmd *cobra.Command) string {
	user, _ := cmd.Flags().GetString("user")
	if user != "" {
		return user
	}
	return cfg.DefaultUser
}

// resolveHistoryPath picks the run-history database location: explicit config
// wins, otherwise it lives alongside the archive.
func resolveHistoryPath(outputDir string) string {
	if cfg.HistoryPath != "" {
		return cfg.HistoryPath
	}
	return filepath.Join(outputDir, ".tapodump-history.db")
}

func defaultOutputDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

package cmd

import (
	"github.com/spf13/cobra"

	"tapodump/internal/history"
	"tapodump/pkg/utils"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past download runs",
	Long: `List the most recent download runs recorded in the local history database.

The database lives alongside the archive by default; point --output at the
archive root used for downloading, or set HISTORY_PATH.`,
	Example: `  # Show the last 10 runs for the archive in the current directory
  tapodump history

  # Show more runs for a specific archive
  tapodump history --output /srv/camera --limit 50`,
	Run: func(cmd *cobra.Command, args []string) {
		runHistory(cmd)
	},
}

func runHistory(cmd *cobra.Command) {
	output, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")

	if output == "" {
		output = defaultOutputDir()
	}

	store, err := history.Open(resolveHistoryPath(output))
	if err != nil {
		utils.PrintError(err, "history")
		return
	}
	defer store.Close()

	runs, err := store.Recent(limit)
	if err != nil {
		utils.PrintError(err, "history")
		return
	}

	if err := utils.PrintJSON(runs); err != nil {
		utils.PrintError(err, "history")
		return
	}
}

func init() {
	historyCmd.Flags().StringP("output", "o", "", "Archive root whose history to show (default: current directory)")
	historyCmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tapodump/internal/archive"
	"tapodump/internal/device"
	"tapodump/internal/history"
	"tapodump/internal/models"
	"tapodump/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download <host> <password>",
	Short: "Download all recordings from the camera",
	Long: `Download every recording from the camera's SD card into a local archive.

Recordings are stored as {output}/YYYY/MM/DD/YYYYMMDD_HHMMSS-<epoch>.mp4.
Files already present in the archive are skipped, so an interrupted run can
be restarted with the same arguments and will resume where it left off.

Deleting recordings from the camera after download is experimental: firmware
versions disagree on the delete call and failures are ignored.`,
	Example: `  # Download everything to the current directory
  tapodump download 192.168.1.100 mypassword

  # Download with a different user and output directory
  tapodump download 192.168.1.100 mypassword --user myuser --output /srv/camera

  # Download and delete from the camera afterwards (experimental)
  tapodump download 192.168.1.100 mypassword --delete`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd, args)
	},
}

func runDownload(cmd *cobra.Command, args []string) error {
	host, password := args[0], args[1]
	user := resolveUser(cmd)
	output, _ := cmd.Flags().GetString("output")
	deleteAfter, _ := cmd.Flags().GetBool("delete")

	if output == "" {
		output = defaultOutputDir()
	}

	fmt.Printf("Camera: %s\n", host)
	fmt.Printf("User: %s\n", user)
	fmt.Printf("Output: %s\n", output)
	fmt.Printf("Delete after download: %t\n", deleteAfter)

	// stop between recordings on Ctrl-C; finished files stay on disk
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := device.New(host, user, password)

	fmt.Println("Connecting to camera...")
	if err := client.Connect(ctx); err != nil {
		utils.PrintError(err, "download")
		return err
	}

	orch := archive.NewOrchestrator(client, client, client, archive.Options{
		OutputDir:           output,
		WindowSize:          cfg.WindowSize,
		DeleteAfterDownload: deleteAfter,
		Output:              os.Stdout,
	})

	summary, err := orch.Run(ctx)
	if err != nil {
		utils.PrintError(err, "download")
		return err
	}

	recordHistory(summary)

	result := models.DownloadResult{
		RunID:              summary.RunID,
		Host:               host,
		OutputDir:          summary.OutputDir,
		TotalRecordings:    summary.TotalRecordings,
		TotalDurationSecs:  int64(summary.TotalDuration / time.Second),
		TotalDurationHuman: utils.FormatDuration(summary.TotalDuration),
		Successful:         summary.Counters.Successful,
		Skipped:            summary.Counters.Skipped,
		Failed:             summary.Counters.Failed,
		Deleted:            summary.Counters.Deleted,
		Interrupted:        summary.Interrupted,
		OperationTime:      utils.FormatTime(summary.StartedAt),
		DownloadDuration:   summary.Elapsed.String(),
	}
	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "download")
		return err
	}

	if isVerbose(cmd) {
		cmd.Println("Download operation completed")
	}
	return nil
}

// recordHistory appends the run to the local ledger. History is reporting
// only, so failures just log a warning.
func recordHistory(summary *archive.Summary) {
	if summary.NothingToDo {
		return
	}

	store, err := history.Open(resolveHistoryPath(summary.OutputDir))
	if err != nil {
		slog.Warn("run history unavailable", "error", err)
		return
	}
	defer store.Close()

	err = store.Record(models.RunRecord{
		RunID:           summary.RunID,
		StartedAt:       summary.StartedAt,
		ElapsedSeconds:  int64(summary.Elapsed / time.Second),
		TotalRecordings: summary.TotalRecordings,
		Successful:      summary.Counters.Successful,
		Skipped:         summary.Counters.Skipped,
		Failed:          summary.Counters.Failed,
		Deleted:         summary.Counters.Deleted,
		OutputDir:       summary.OutputDir,
		Interrupted:     summary.Interrupted,
	})
	if err != nil {
		slog.Warn("failed to record run history", "error", err)
	}
}

func init() {
	downloadCmd.Flags().StringP("user", "u", "", "Camera username (default from CAMERA_USER, else admin)")
	downloadCmd.Flags().StringP("output", "o", "", "Output directory (default: current directory)")
	downloadCmd.Flags().BoolP("delete", "d", false, "Delete recordings from the camera after download (experimental)")
}

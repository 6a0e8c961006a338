package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tapodump/internal/archive"
	"tapodump/internal/device"
	"tapodump/internal/models"
	"tapodump/pkg/utils"
)

var cameraInfoCmd = &cobra.Command{
	Use:   "camera-info <host> <password>",
	Short: "Summarize the recordings stored on the camera",
	Long: `Scan the camera's SD card catalog and report how many recordings exist
per date, with total counts and durations. Nothing is downloaded.`,
	Example: `  # Summarize the configured camera
  tapodump camera-info 192.168.1.100 mypassword

  # With a different user
  tapodump camera-info 192.168.1.100 mypassword --user myuser`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runCameraInfo(cmd, args)
	},
}

func runCameraInfo(cmd *cobra.Command, args []string) {
	host, password := args[0], args[1]
	user := resolveUser(cmd)

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	client := device.New(host, user, password)
	if err := client.Connect(ctx); err != nil {
		utils.PrintError(err, "camera-info")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Scanning catalog on %s\n", host)
	}

	indexer := archive.NewIndexer(client)
	dates, err := indexer.ListDates(ctx)
	if err != nil {
		utils.PrintError(err, "camera-info")
		return
	}

	info := models.CameraInfo{
		Host:          host,
		OperationTime: utils.FormatTime(time.Now()),
	}

	var totalDuration time.Duration
	for _, date := range dates {
		recordings, err := indexer.ListRecordings(ctx, date)
		if err != nil {
			utils.PrintError(err, "camera-info")
			return
		}
		var dateDuration time.Duration
		for _, rec := range recordings {
			dateDuration += rec.Duration()
		}
		totalDuration += dateDuration
		info.TotalRecordings += len(recordings)
		info.Dates = append(info.Dates, models.DateSummary{
			Date:          date,
			Recordings:    len(recordings),
			DurationSecs:  int64(dateDuration / time.Second),
			DurationHuman: utils.FormatDuration(dateDuration),
		})
	}
	info.TotalDurationSecs = int64(totalDuration / time.Second)
	info.TotalDurationHuman = utils.FormatDuration(totalDuration)

	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "camera-info")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Catalog scan completed")
	}
}

func init() {
	cameraInfoCmd.Flags().StringP("user", "u", "", "Camera username (default from CAMERA_USER, else admin)")
	cameraInfoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}

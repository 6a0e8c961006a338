package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tapodump/internal/mirror"
	"tapodump/pkg/utils"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror [archive-dir]",
	Short: "Mirror the local archive to an S3 bucket",
	Long: `Upload the local archive tree to an S3-compatible bucket, preserving the
YYYY/MM/DD layout as object keys. Objects already in the bucket are skipped,
so mirroring after every download only pushes the new artifacts.

Bucket and credentials come from the environment (API_URL, ACCESS_KEY,
SECRET_KEY, BUCKET_NAME, REGION).`,
	Example: `  # Mirror the archive in the current directory
  tapodump mirror .

  # Mirror a specific archive
  tapodump mirror /srv/camera

  # Pack the whole archive into one zip object instead
  tapodump mirror /srv/camera --archive

  # Show what would be uploaded
  tapodump mirror /srv/camera --dry-run`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMirror(cmd, args)
	},
}

func runMirror(cmd *cobra.Command, args []string) {
	archiveDir := args[0]
	shouldArchive, _ := cmd.Flags().GetBool("archive")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	client, err := mirror.New(cfg)
	if err != nil {
		utils.PrintError(err, "mirror")
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Mirroring %s to bucket %s\n", archiveDir, cfg.BucketName)
		if dryRun {
			cmd.Println("DRY RUN MODE: No files will actually be uploaded")
		}
	}

	result, err := client.MirrorArchive(ctx, archiveDir, shouldArchive, dryRun)
	if err != nil {
		utils.PrintError(err, "mirror")
		return
	}

	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "mirror")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Mirror operation completed successfully")
	}
}

func init() {
	mirrorCmd.Flags().Bool("archive", false, "Upload the archive as a single zip object")
	mirrorCmd.Flags().Bool("dry-run", false, "Show what would be uploaded without actually uploading")
	mirrorCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}

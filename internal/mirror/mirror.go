// Package mirror pushes the local archive tree to an S3-compatible bucket,
// preserving the YYYY/MM/DD layout as object keys.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	appConfig "tapodump/config"
	"tapodump/internal/models"
	"tapodump/pkg/utils"
)

type Client struct {
	s3Client *s3.Client
	config   *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

// MirrorArchive uploads the artifacts under archiveDir. Keys already present
// in the bucket are skipped, so reruns only push new downloads. With
// shouldArchive the whole tree is zipped and uploaded as a single object.
// dryRun lists what would be pushed without touching the bucket.
func (c *Client) MirrorArchive(ctx context.Context, archiveDir string, shouldArchive, dryRun bool) (*models.MirrorResult, error) {
	startTime := time.Now()

	if err := utils.ValidateDir(archiveDir); err != nil {
		return nil, fmt.Errorf("archive validation failed: %w", err)
	}

	result := &models.MirrorResult{
		BucketName:    c.config.BucketName,
		ArchiveDir:    archiveDir,
		OperationTime: utils.FormatTime(startTime),
		DryRun:        dryRun,
	}

	if shouldArchive {
		if err := c.mirrorAsArchive(ctx, archiveDir, dryRun, result); err != nil {
			return nil, err
		}
	} else {
		if err := c.mirrorTree(ctx, archiveDir, dryRun, result); err != nil {
			return nil, err
		}
	}

	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	result.MirrorDuration = time.Since(startTime).String()
	return result, nil
}

func (c *Client) mirrorAsArchive(ctx context.Context, archiveDir string, dryRun bool, result *models.MirrorResult) error {
	archivePath := filepath.Join(os.TempDir(), utils.GenerateArchiveName(archiveDir))

	if dryRun {
		result.ArchiveCreated = true
		result.ArchivePath = archivePath
		result.Items = append(result.Items, models.MirrorItem{
			LocalPath: archiveDir,
			RemoteKey: filepath.Base(archivePath),
		})
		return nil
	}

	archiveInfo, err := utils.ZipDirectory(archiveDir, archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer utils.CleanupTempFile(archivePath)

	key := filepath.Base(archivePath)
	if err := c.uploadFile(ctx, archivePath, key, "application/zip"); err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	result.ArchiveCreated = true
	result.ArchivePath = archivePath
	result.UploadedCount = 1
	result.TotalSizeBytes = archiveInfo.CompressedSize
	result.Items = append(result.Items, models.MirrorItem{
		LocalPath: archiveDir,
		RemoteKey: key,
		Size:      archiveInfo.CompressedSize,
	})
	return nil
}

func (c *Client) mirrorTree(ctx context.Context, archiveDir string, dryRun bool, result *models.MirrorResult) error {
	return filepath.WalkDir(archiveDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp4") {
			return nil
		}

		relPath, err := filepath.Rel(archiveDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(relPath)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		item := models.MirrorItem{LocalPath: path, RemoteKey: key, Size: info.Size()}

		if !dryRun {
			exists, err := c.keyExists(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", key, err)
			}
			if exists {
				item.Skipped = true
				result.SkippedCount++
				result.Items = append(result.Items, item)
				return nil
			}
			if err := c.uploadFile(ctx, path, key, "video/mp4"); err != nil {
				return fmt.Errorf("failed to upload %s: %w", key, err)
			}
		}

		result.UploadedCount++
		result.TotalSizeBytes += info.Size()
		result.Items = append(result.Items, item)
		return nil
	})
}

func (c *Client) keyExists(ctx context.Context, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) uploadFile(ctx context.Context, localPath, key, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	uploader := manager.NewUploader(c.s3Client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

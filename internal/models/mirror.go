package models

type MirrorItem struct {
	LocalPath string `json:"local_path"`
	RemoteKey string `json:"remote_key"`
	Size      int64  `json:"size"`
	Skipped   bool   `json:"skipped"`
}

type MirrorResult struct {
	BucketName     string       `json:"bucket_name"`
	ArchiveDir     string       `json:"archive_dir"`
	Items          []MirrorItem `json:"items"`
	UploadedCount  int          `json:"uploaded_count"`
	SkippedCount   int          `json:"skipped_count"`
	TotalSizeBytes int64        `json:"total_size_bytes"`
	TotalSizeHuman string       `json:"total_size_human"`
	ArchiveCreated bool         `json:"archive_created"`
	ArchivePath    string       `json:"archive_path,omitempty"`
	OperationTime  string       `json:"operation_time"`
	MirrorDuration string       `json:"mirror_duration"`
	DryRun         bool         `json:"dry_run,omitempty"`
}

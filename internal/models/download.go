package models

type DownloadResult struct {
	RunID              string `json:"run_id"`
	Host               string `json:"host"`
	OutputDir          string `json:"output_dir"`
	TotalRecordings    int    `json:"total_recordings"`
	TotalDurationSecs  int64  `json:"total_duration_seconds"`
	TotalDurationHuman string `json:"total_duration_human"`
	Successful         int    `json:"successful"`
	Skipped            int    `json:"skipped"`
	Failed             int    `json:"failed"`
	Deleted            int    `json:"deleted"`
	Interrupted        bool   `json:"interrupted"`
	OperationTime      string `json:"operation_time"`
	DownloadDuration   string `json:"download_duration"`
}

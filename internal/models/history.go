package models

import "time"

type RunRecord struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	ElapsedSeconds  int64     `json:"elapsed_seconds"`
	TotalRecordings int       `json:"total_recordings"`
	Successful      int       `json:"successful"`
	Skipped         int       `json:"skipped"`
	Failed          int       `json:"failed"`
	Deleted         int       `json:"deleted"`
	OutputDir       string    `json:"output_dir"`
	Interrupted     bool      `json:"interrupted"`
}

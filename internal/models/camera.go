package models

type DateSummary struct {
	Date          string `json:"date"`
	Recordings    int    `json:"recordings"`
	DurationSecs  int64  `json:"duration_seconds"`
	DurationHuman string `json:"duration_human"`
}

type CameraInfo struct {
	Host               string        `json:"host"`
	Dates              []DateSummary `json:"dates"`
	TotalRecordings    int           `json:"total_recordings"`
	TotalDurationSecs  int64         `json:"total_duration_seconds"`
	TotalDurationHuman string        `json:"total_duration_human"`
	OperationTime      string        `json:"operation_time"`
}

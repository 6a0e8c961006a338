package device

import "context"

// ProgressEvent is one status update emitted during a streaming transfer.
// Total is 0 while the stream is still negotiating; once the device reports
// a length, Progress/Total can be turned into a percentage.
type ProgressEvent struct {
	CurrentAction string
	Progress      int64
	Total         int64
}

// StreamRequest describes one recording transfer. TimeCorrection aligns the
// requested byte range with the device clock. WindowSize is the chunk
// granularity; smaller windows mean more frequent progress events.
type StreamRequest struct {
	StartTime      int64
	EndTime        int64
	TimeCorrection int64
	OutputDir      string
	Filename       string
	WindowSize     int
}

// Querier exposes the camera's recording catalog. Responses come back as
// weakly-typed pages because the catalog format varies between firmware
// versions; callers extract what they recognize and ignore the rest.
type Querier interface {
	RecordingDates(ctx context.Context) ([]map[string]any, error)
	Recordings(ctx context.Context, date string) ([]map[string]any, error)
	TimeCorrection(ctx context.Context) (int64, error)
}

// Streamer retrieves a recording's bytes into OutputDir/Filename, invoking
// onProgress for every status update until the transfer completes or fails.
type Streamer interface {
	Stream(ctx context.Context, req StreamRequest, onProgress func(ProgressEvent)) error
}

// FunctionCaller executes an arbitrary control method on the device.
type FunctionCaller interface {
	ExecuteFunction(ctx context.Context, method string, params any) error
}

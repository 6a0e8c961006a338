package archive

import (
	"context"
	"os"
	"path/filepath"

	"tapodump/internal/device"
)

type fakeQuerier struct {
	datePages      []map[string]any
	recordingPages map[string][]map[string]any
	timeCorrection int64

	datesErr error
	recsErr  error
	tcErr    error

	recordingCalls []string
	tcCalls        int
}

func (f *fakeQuerier) RecordingDates(ctx context.Context) ([]map[string]any, error) {
	if f.datesErr != nil {
		return nil, f.datesErr
	}
	return f.datePages, nil
}

func (f *fakeQuerier) Recordings(ctx context.Context, date string) ([]map[string]any, error) {
	f.recordingCalls = append(f.recordingCalls, date)
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return f.recordingPages[date], nil
}

func (f *fakeQuerier) TimeCorrection(ctx context.Context) (int64, error) {
	f.tcCalls++
	if f.tcErr != nil {
		return 0, f.tcErr
	}
	return f.timeCorrection, nil
}

type fakeStreamer struct {
	events   []device.ProgressEvent
	data     []byte
	failFor  map[int64]error // keyed by request start time
	requests []device.StreamRequest
}

func (f *fakeStreamer) Stream(ctx context.Context, req device.StreamRequest, onProgress func(device.ProgressEvent)) error {
	f.requests = append(f.requests, req)
	for _, ev := range f.events {
		onProgress(ev)
	}
	if err := f.failFor[req.StartTime]; err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data := f.data
	if data == nil {
		data = []byte("mp4")
	}
	return os.WriteFile(filepath.Join(req.OutputDir, req.Filename), data, 0o644)
}

type fakeCaller struct {
	methods []string
	errs    map[string]error
}

func (f *fakeCaller) ExecuteFunction(ctx context.Context, method string, params any) error {
	f.methods = append(f.methods, method)
	return f.errs[method]
}

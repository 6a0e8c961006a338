package archive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapodump/internal/device"
)

func catalogQuerier(recordings ...Recording) *fakeQuerier {
	pages := map[string]any{}
	for i, rec := range recordings {
		pages["search_video_results_"+string(rune('1'+i))] = map[string]any{
			"startTime":  float64(rec.StartTime),
			"endTime":    float64(rec.EndTime),
			"vedio_type": rec.Type,
		}
	}
	return &fakeQuerier{
		datePages: []map[string]any{
			{"search_results_1": map[string]any{"date": "20240724"}},
		},
		recordingPages: map[string][]map[string]any{"20240724": {pages}},
		timeCorrection: 3600,
	}
}

func newTestOrchestrator(q device.Querier, s device.Streamer, caller device.FunctionCaller, opts Options) (*Orchestrator, *bytes.Buffer) {
	out := &bytes.Buffer{}
	opts.Output = out
	return NewOrchestrator(q, s, caller, opts), out
}

func TestRunDownloadsAllRecordings(t *testing.T) {
	recs := []Recording{
		{StartTime: 1721829154, EndTime: 1721829184, Type: "motion"},
		{StartTime: 1721829200, EndTime: 1721829230, Type: "motion"},
	}
	q := catalogQuerier(recs...)
	streamer := &fakeStreamer{data: []byte("clip")}
	caller := &fakeCaller{}
	outputDir := t.TempDir()

	orch, _ := newTestOrchestrator(q, streamer, caller, Options{OutputDir: outputDir})
	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Counters.Successful)
	assert.Equal(t, 0, summary.Counters.Skipped)
	assert.Equal(t, 0, summary.Counters.Failed)
	assert.Equal(t, 2, summary.TotalRecordings)
	assert.False(t, summary.Interrupted)
	assert.Equal(t, PhaseDone, orch.Phase())

	for _, rec := range recs {
		path := filepath.Join(outputDir, expectedArtifact(rec.StartTime).Dir, expectedArtifact(rec.StartTime).Filename)
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, "artifact for %d must exist", rec.StartTime)
	}

	// time correction fetched once for the whole run and passed to every transfer
	assert.Equal(t, 1, q.tcCalls)
	require.Len(t, streamer.requests, 2)
	for _, req := range streamer.requests {
		assert.Equal(t, int64(3600), req.TimeCorrection)
	}
}

func TestRunSecondRunSkipsEverything(t *testing.T) {
	recs := []Recording{
		{StartTime: 1721829154, EndTime: 1721829184},
		{StartTime: 1721829200, EndTime: 1721829230},
	}
	outputDir := t.TempDir()

	orch1, _ := newTestOrchestrator(catalogQuerier(recs...), &fakeStreamer{}, &fakeCaller{}, Options{OutputDir: outputDir})
	first, err := orch1.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Counters.Successful)

	streamer := &fakeStreamer{}
	orch2, _ := newTestOrchestrator(catalogQuerier(recs...), streamer, &fakeCaller{}, Options{OutputDir: outputDir})
	second, err := orch2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Counters.Successful)
	assert.Equal(t, 2, second.Counters.Skipped)
	assert.Empty(t, streamer.requests, "no transfers on a fully archived catalog")
}

func TestRunContinuesAfterTransferFailure(t *testing.T) {
	recs := []Recording{
		{StartTime: 1721829154, EndTime: 1721829184},
		{StartTime: 1721829200, EndTime: 1721829230},
		{StartTime: 1721829300, EndTime: 1721829330},
	}
	streamer := &fakeStreamer{
		failFor: map[int64]error{1721829200: errors.New("camera dropped the stream")},
	}
	outputDir := t.TempDir()

	orch, out := newTestOrchestrator(catalogQuerier(recs...), streamer, &fakeCaller{}, Options{OutputDir: outputDir})
	summary, err := orch.Run(context.Background())
	require.NoError(t, err, "a failed transfer must not abort the batch")

	assert.Equal(t, 2, summary.Counters.Successful)
	assert.Equal(t, 1, summary.Counters.Failed)
	assert.Equal(t, 0, summary.Counters.Skipped)
	assert.Len(t, streamer.requests, 3, "recordings after the failure are still attempted")
	assert.Contains(t, out.String(), "camera dropped the stream")

	counters := summary.Counters
	assert.Equal(t, summary.TotalRecordings, counters.Successful+counters.Skipped+counters.Failed)
}

func TestRunDeleteDisabledNeverCallsDevice(t *testing.T) {
	recs := []Recording{{StartTime: 1721829154, EndTime: 1721829184}}
	caller := &fakeCaller{}

	orch, _ := newTestOrchestrator(catalogQuerier(recs...), &fakeStreamer{}, caller, Options{OutputDir: t.TempDir()})
	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Counters.Successful)
	assert.Equal(t, 0, summary.Counters.Deleted)
	assert.Empty(t, caller.methods)
}

func TestRunDeleteEnabledCountsDeletions(t *testing.T) {
	recs := []Recording{{StartTime: 1721829154, EndTime: 1721829184}}
	caller := &fakeCaller{}

	orch, _ := newTestOrchestrator(catalogQuerier(recs...), &fakeStreamer{}, caller, Options{
		OutputDir:           t.TempDir(),
		DeleteAfterDownload: true,
	})
	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Counters.Deleted)
	assert.Equal(t, []string{"deleteRecording"}, caller.methods)
}

func TestRunDeleteSkippedForFailedTransfers(t *testing.T) {
	recs := []Recording{{StartTime: 1721829154, EndTime: 1721829184}}
	streamer := &fakeStreamer{failFor: map[int64]error{1721829154: errors.New("boom")}}
	caller := &fakeCaller{}

	orch, _ := newTestOrchestrator(catalogQuerier(recs...), streamer, caller, Options{
		OutputDir:           t.TempDir(),
		DeleteAfterDownload: true,
	})
	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Counters.Deleted)
	assert.Empty(t, caller.methods, "only successfully downloaded recordings may be deleted")
}

func TestRunEmptyCatalog(t *testing.T) {
	q := &fakeQuerier{
		datePages: []map[string]any{
			{"search_results_1": map[string]any{"date": "20240724"}},
		},
		recordingPages: map[string][]map[string]any{"20240724": nil},
	}

	orch, out := newTestOrchestrator(q, &fakeStreamer{}, &fakeCaller{}, Options{OutputDir: t.TempDir()})
	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.NothingToDo)
	assert.Equal(t, 0, summary.TotalRecordings)
	assert.Equal(t, PhaseDone, orch.Phase())
	assert.Contains(t, out.String(), "No recordings to download")
	assert.Equal(t, 0, q.tcCalls, "time correction is not fetched when there is nothing to do")
}

func TestRunScanFailureIsFatal(t *testing.T) {
	q := &fakeQuerier{datesErr: errors.New("connection reset")}

	orch, _ := newTestOrchestrator(q, &fakeStreamer{}, &fakeCaller{}, Options{OutputDir: t.TempDir()})
	_, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRunCancellationStopsBetweenRecordings(t *testing.T) {
	recs := []Recording{
		{StartTime: 1721829154, EndTime: 1721829184},
		{StartTime: 1721829200, EndTime: 1721829230},
	}
	outputDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	streamer := &cancellingStreamer{inner: &fakeStreamer{}, cancel: cancel}

	orch, _ := newTestOrchestrator(catalogQuerier(recs...), streamer, &fakeCaller{}, Options{OutputDir: outputDir})
	summary, err := orch.Run(ctx)
	require.NoError(t, err)

	assert.True(t, summary.Interrupted)
	assert.Equal(t, 1, summary.Counters.Successful, "the in-flight recording completes, the next never starts")
	assert.Len(t, streamer.inner.requests, 1)

	// completed artifact survives for the next run to skip
	artifact := expectedArtifact(recs[0].StartTime)
	_, statErr := os.Stat(filepath.Join(outputDir, artifact.Dir, artifact.Filename))
	assert.NoError(t, statErr)
}

// cancellingStreamer cancels the run after the first successful transfer,
// simulating a Ctrl-C between recordings.
type cancellingStreamer struct {
	inner  *fakeStreamer
	cancel context.CancelFunc
}

func (c *cancellingStreamer) Stream(ctx context.Context, req device.StreamRequest, onProgress func(device.ProgressEvent)) error {
	err := c.inner.Stream(ctx, req, onProgress)
	c.cancel()
	return err
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "scanning", PhaseScanning.String())
	assert.Equal(t, "counting", PhaseCounting.String())
	assert.Equal(t, "downloading", PhaseDownloading.String())
	assert.Equal(t, "summarizing", PhaseSummarizing.String())
	assert.Equal(t, "done", PhaseDone.String())
}
